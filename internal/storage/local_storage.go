package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore 把头像写到本地文件系统，返回相对路径供 HTTP 直接服务。
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a LocalStore instance. The directory is created if it
// does not exist.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		baseDir = "datas/avatars"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// LocalBaseDir returns the root directory used for storing files.
func (s *LocalStore) LocalBaseDir() string {
	return s.baseDir
}

// PutAvatar writes the avatar bytes to disk and returns a relative path that
// can later be used to build a public URL.
func (s *LocalStore) PutAvatar(ctx context.Context, userID uint, data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	key := buildAvatarKey(userID, ext)

	absPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return key, nil
}

var _ Store = (*LocalStore)(nil)
var _ LocalBaseDirProvider = (*LocalStore)(nil)
