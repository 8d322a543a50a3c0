package storage

import (
	"context"
	"fmt"
	"strings"

	"memberhub/internal/config"
)

const (
	// TypeLocal 表示本地文件系统存储。
	TypeLocal = "local"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
)

// Store 持久化会员上传的头像并返回对象 key（本地存储时为相对路径）。
type Store interface {
	PutAvatar(ctx context.Context, userID uint, data []byte, ext string) (string, error)
}

// LocalBaseDirProvider 由暴露可通过 HTTP 直接提供服务的本地目录的存储驱动实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStore 根据配置实例化存储后端。
func NewStore(cfg config.Config) (Store, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStore(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Store(cfg)
	case TypeOSS:
		return NewOSSStore(cfg)
	case TypeCOS:
		return NewCOSStore(cfg)
	case TypeR2:
		return NewR2Store(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
