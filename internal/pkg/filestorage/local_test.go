package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("proof", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["proof"][0]
}

func TestSaveResolveDelete(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	stored, err := ls.SaveFileWithPath(fileHeader(t, "Receipt.PDF", "hello"), "offline-payments")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "offline-payments/"))
	assert.True(t, strings.HasSuffix(stored, ".pdf"))

	full, err := ls.GetFullPath(stored)
	require.NoError(t, err)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, ls.DeleteFile(stored))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.DeleteFile(stored))
}

func TestGetFullPathStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root)
	require.NoError(t, err)

	full, err := ls.GetFullPath("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, root))

	_, err = ls.GetFullPath("")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
