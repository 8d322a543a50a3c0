package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

// buildAvatarKey 生成头像对象 key：avatars/u<id>/<纳秒时间戳>.<ext>。
// 时间戳后缀保证重复上传不会互相覆盖，旧头像留作历史版本。
func buildAvatarKey(userID uint, ext string) string {
	return path.Join(
		"avatars",
		fmt.Sprintf("u%d", userID),
		fmt.Sprintf("%d.%s", time.Now().UTC().UnixNano(), normalizeExtension(ext)),
	)
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
	sanitized := sanitizeSegment(trimmed)
	if sanitized == "" {
		return "png"
	}
	return sanitized
}

func detectContentType(ext string) string {
	typeName := mime.TypeByExtension("." + normalizeExtension(ext))
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func sanitizeSegment(value string) string {
	value = strings.TrimSpace(value)
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}
