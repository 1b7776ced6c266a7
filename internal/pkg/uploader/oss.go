package uploader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"thywilluche/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// Uploader 对象存储
type Uploader interface {
	// Put 写入对象并返回可公开访问的 URL
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type AliyunOSSUploader struct {
	client *oss.Client
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("oss config is missing")
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		client: client,
		bucket: bucket,
		config: cfg,
	}, nil
}

func (u *AliyunOSSUploader) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	// key 带内容哈希，可以长期缓存
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := u.bucket.PutObject(key, body, opts...); err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return u.publicURL(key), nil
}

// publicURL bucket 为公共读，或配置了 CDN 域名
func (u *AliyunOSSUploader) publicURL(key string) string {
	return publicURL(u.config, key)
}

func publicURL(cfg config.OSSConfig, key string) string {
	key = strings.TrimPrefix(key, "/")
	if cfg.PublicHost != "" {
		return fmt.Sprintf("https://%s/%s", hostOnly(cfg.PublicHost), key)
	}
	return fmt.Sprintf("https://%s.%s/%s", cfg.BucketName, hostOnly(cfg.Endpoint), key)
}

// endpoint 允许写成 https://oss-cn-hangzhou.aliyuncs.com
func hostOnly(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimSuffix(s, "/")
}
