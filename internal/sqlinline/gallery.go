package sqlinline

const QInsertGalleryImage = `--sql 51171003-9b1e-42b4-8be8-871ac5fa79a2
insert into gallery_images (id, title, mime_type, data, properties)
values (gen_random_uuid(), $1, $2, $3, coalesce($4::jsonb, '{}'::jsonb))
returning id, created_at;
`

const QListGalleryImages = `--sql a8ea9e87-c485-4f42-a0f0-43af1d44071d
select id, title, mime_type, octet_length(data), created_at
from gallery_images
order by created_at desc
limit $1;
`

const QSelectGalleryImage = `--sql b7fefbcc-7d35-471b-a6a1-bd9da94119aa
select id, title, mime_type, data, created_at
from gallery_images
where id = $1;
`
