package uploader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (m *memoryUploader) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.fail {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

// fileHeaders 通过 multipart 表单构造真实的 FileHeader
func fileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, name := range names {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("content of " + name))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files"]
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(KindImage, fileHeaders(t, "a.png", "b.JPG")))
	assert.ErrorIs(t, Validate(KindImage, fileHeaders(t, "a.pdf")), ErrFileExtension)
	assert.NoError(t, Validate(KindReceipt, fileHeaders(t, "receipt.pdf")))
	assert.ErrorIs(t, Validate(KindReceipt, fileHeaders(t, "receipt.docx")), ErrFileExtension)
	assert.NoError(t, Validate(KindDocument, fileHeaders(t, "review.docx")))
	assert.ErrorIs(t, Validate(KindImage, nil), ErrFileCount)
	assert.ErrorIs(t, Validate(KindImage, fileHeaders(t, "1.png", "2.png", "3.png", "4.png", "5.png", "6.png")), ErrFileCount)

	big := fileHeaders(t, "big.png")
	big[0].Size = MaxFileSize + 1
	assert.ErrorIs(t, Validate(KindImage, big), ErrFileTooLarge)

	assert.ErrorIs(t, Validate(Kind("video"), fileHeaders(t, "a.png")), ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindImage, k)

	k, err = ParseKind("Receipt")
	require.NoError(t, err)
	assert.Equal(t, KindReceipt, k)

	_, err = ParseKind("video")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(KindReceipt, "Scan.PDF", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "receipts/20240309/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
}

func TestUploadFiles_PreservesOrder(t *testing.T) {
	u := &memoryUploader{objects: map[string][]byte{}}
	urls, err := UploadFiles(context.Background(), u, KindImage, fileHeaders(t, "1.png", "2.png", "3.png"))
	require.NoError(t, err)
	require.Len(t, urls, 3)
	assert.Len(t, u.objects, 3)

	for i, url := range urls {
		key := strings.TrimPrefix(url, "https://cdn.example.com/")
		assert.Equal(t, "content of "+[]string{"1.png", "2.png", "3.png"}[i], string(u.objects[key]))
	}
}

func TestUploadFiles_Failure(t *testing.T) {
	u := &memoryUploader{objects: map[string][]byte{}, fail: true}
	_, err := UploadFiles(context.Background(), u, KindImage, fileHeaders(t, "1.png"))
	assert.Error(t, err)
}
