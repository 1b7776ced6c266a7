package uploader

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Kind 上传用途
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindReceipt  Kind = "receipt"
)

const (
	MaxFiles       = 5
	MaxFileSize    = 10 << 20 // 10 MiB
	maxConcurrency = 5
)

var (
	ErrUnknownKind   = errors.New("unknown upload kind")
	ErrFileCount     = fmt.Errorf("between 1 and %d files are required", MaxFiles)
	ErrFileTooLarge  = errors.New("file exceeds 10 MiB")
	ErrFileExtension = errors.New("file type is not allowed")
)

var allowedExt = map[Kind]map[string]string{
	KindImage: {
		".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
		".webp": "image/webp", ".gif": "image/gif",
	},
	KindDocument: {
		".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
		".webp": "image/webp", ".gif": "image/gif", ".pdf": "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
	KindReceipt: {
		".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
		".webp": "image/webp", ".gif": "image/gif", ".pdf": "application/pdf",
	},
}

// ParseKind 解析上传用途，空值视为图片
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindImage, nil
	}
	k := Kind(strings.ToLower(s))
	if _, ok := allowedExt[k]; !ok {
		return "", ErrUnknownKind
	}
	return k, nil
}

// Validate 校验文件数量、大小与扩展名
func Validate(kind Kind, files []*multipart.FileHeader) error {
	allowed, ok := allowedExt[kind]
	if !ok {
		return ErrUnknownKind
	}
	if len(files) == 0 || len(files) > MaxFiles {
		return ErrFileCount
	}
	for _, f := range files {
		if f.Size > MaxFileSize {
			return fmt.Errorf("%s: %w", f.Filename, ErrFileTooLarge)
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(f.Filename))]; !ok {
			return fmt.Errorf("%s: %w", f.Filename, ErrFileExtension)
		}
	}
	return nil
}

// ObjectKey <kind>s/YYYYMMDD/<uuid><ext>
func ObjectKey(kind Kind, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(string(kind)+"s", now.Format("20060102"), uuid.New().String()+ext)
}

// UploadFiles 并发上传 (最多 5 个同时进行)，返回的 URL 与 files 顺序一致
func UploadFiles(ctx context.Context, u Uploader, kind Kind, files []*multipart.FileHeader) ([]string, error) {
	if err := Validate(kind, files); err != nil {
		return nil, err
	}

	urls := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	now := time.Now()

	for i, f := range files {
		g.Go(func() error {
			src, err := f.Open()
			if err != nil {
				return err
			}
			defer src.Close()

			contentType := allowedExt[kind][strings.ToLower(filepath.Ext(f.Filename))]
			url, err := u.Put(ctx, ObjectKey(kind, f.Filename, now), src, contentType)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Filename, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
