package handlers

import (
	"net/http"

	"github.com/woodchen-ink/aice-ps/internal/middleware"
)

// User-facing error messages, keyed by message id then locale. Error codes
// stay stable and machine-readable; only the message text is localized.
var messages = map[string]map[string]string{
	"invalid_payload": {
		"en": "the request body could not be parsed",
		"zh": "请求内容无法解析",
	},
	"session_not_found": {
		"en": "the editing session does not exist or has expired",
		"zh": "编辑会话不存在或已过期",
	},
	"image_too_large": {
		"en": "the image exceeds the upload size limit",
		"zh": "图片超出上传大小限制",
	},
	"unsupported_image": {
		"en": "the uploaded file is not a supported image",
		"zh": "上传的文件不是支持的图片格式",
	},
	"empty_history": {
		"en": "upload an image before editing",
		"zh": "请先上传图片再进行编辑",
	},
	"nothing_to_undo": {
		"en": "there is nothing to undo",
		"zh": "没有可撤销的操作",
	},
	"nothing_to_redo": {
		"en": "there is nothing to redo",
		"zh": "没有可重做的操作",
	},
	"no_last_action": {
		"en": "there is no previous edit to regenerate",
		"zh": "没有可重新生成的上一次编辑",
	},
	"invalid_crop": {
		"en": "the crop selection is empty",
		"zh": "裁剪区域无效",
	},
	"generation_failed": {
		"en": "the image provider could not complete the request",
		"zh": "图像服务未能完成本次请求",
	},
	"all_failed": {
		"en": "every image in the batch failed to generate",
		"zh": "批量生成的所有图片均失败",
	},
	"batch_not_found": {
		"en": "the batch does not exist",
		"zh": "批量任务不存在",
	},
	"batch_running": {
		"en": "the batch is still running",
		"zh": "批量任务仍在进行中",
	},
	"persistence_unavailable": {
		"en": "no database is configured for this deployment",
		"zh": "当前部署未配置数据库",
	},
	"not_found": {
		"en": "resource not found",
		"zh": "资源不存在",
	},
	"internal": {
		"en": "internal error",
		"zh": "内部错误",
	},
}

func localize(r *http.Request, key string) string {
	locale := middleware.LocaleFromContext(r.Context())
	if byLocale, ok := messages[key]; ok {
		if msg, ok := byLocale[locale]; ok {
			return msg
		}
		if msg, ok := byLocale["en"]; ok {
			return msg
		}
	}
	return key
}
