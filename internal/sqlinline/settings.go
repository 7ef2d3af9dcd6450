package sqlinline

const QUpsertSetting = `--sql a1aa2a77-86da-4e00-8773-65b8bae1670a
insert into app_settings (name, value, properties, updated_at)
values ($1, $2, coalesce($3::jsonb, '{}'::jsonb), now())
on conflict (name)
do update set value = excluded.value,
              properties = excluded.properties,
              updated_at = now();
`

const QSelectSetting = `--sql 2f6f58d7-b780-4d08-b7c5-dc6c55e048f2
select value
from app_settings
where name = $1;
`

const QDeleteSetting = `--sql 2c0ea841-a574-4f8f-ad40-738b781b1468
delete from app_settings
where name = $1;
`
