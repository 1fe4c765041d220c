package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T, baseURL string) (*localStorage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocal(dir, baseURL, nil)
	require.NoError(t, err)
	return s.(*localStorage), dir
}

func TestLocal_PutStatDelete(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestLocal(t, "http://localhost:8080")

	info, err := s.Put(ctx, "users/u1/documents/a.txt", strings.NewReader("hello"), PutObjectOptions{Size: 5, ContentType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)

	data, err := os.ReadFile(filepath.Join(dir, "users", "u1", "documents", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	st, err := s.Stat(ctx, "users/u1/documents/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.Size)

	require.NoError(t, s.Delete(ctx, "users/u1/documents/a.txt"))
	_, err = s.Stat(ctx, "users/u1/documents/a.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// empty parents are cleaned up, base stays
	_, err = os.Stat(filepath.Join(dir, "users"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dir)
	assert.NoError(t, err)

	// deleting again is a no-op
	assert.NoError(t, s.Delete(ctx, "users/u1/documents/a.txt"))
}

func TestLocal_DeleteKeepsNonEmptyDirs(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestLocal(t, "http://localhost:8080")

	_, err := s.Put(ctx, "users/u1/documents/a.txt", strings.NewReader("a"), PutObjectOptions{Size: 1})
	require.NoError(t, err)
	_, err = s.Put(ctx, "users/u1/documents/b.txt", strings.NewReader("b"), PutObjectOptions{Size: 1})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "users/u1/documents/a.txt"))
	_, err = os.Stat(filepath.Join(dir, "users", "u1", "documents", "b.txt"))
	assert.NoError(t, err)
}

func TestLocal_RejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestLocal(t, "http://localhost:8080")

	for _, key := range []string{"", ".", "../escape.txt", "users/../../escape.txt", "/etc/passwd"} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{Size: 1})
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		_, err = s.Stat(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.ErrorIs(t, s.Delete(ctx, key), ErrInvalidKey, key)
	}
}

func TestLocal_PresignGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestLocal(t, "http://files.example.com/")

	_, err := s.PresignGet(ctx, "users/u1/documents/missing.pdf", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put(ctx, "users/u1/documents/x.pdf", strings.NewReader("pdf"), PutObjectOptions{Size: 3})
	require.NoError(t, err)

	u, err := s.PresignGet(ctx, "users/u1/documents/x.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://files.example.com/uploads/users/u1/documents/x.pdf", u)
	assert.Equal(t, u, s.Location("users/u1/documents/x.pdf"))
}

func TestLocal_UploadSignFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	mux := http.NewServeMux()
	mux.Handle(UploadsPrefix+"/", http.StripPrefix(UploadsPrefix+"/", http.FileServer(http.Dir(dir))))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store, err := NewLocal(dir, srv.URL, nil)
	require.NoError(t, err)
	backend := NewBackend(store)

	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff, 0x10, 'd', 'o', 'c'}
	res, err := backend.Upload(ctx, content, "scan.pdf", "application/pdf", "u1")
	require.NoError(t, err)

	u, err := backend.SignAccessURL(ctx, res.Reference, time.Hour)
	require.NoError(t, err)

	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(content, got))

	require.NoError(t, backend.Delete(ctx, res.Reference))
	_, err = backend.SignAccessURL(ctx, res.Reference, time.Hour)
	assert.ErrorIs(t, err, ErrSign)
}

func TestNewLocal_Validation(t *testing.T) {
	_, err := NewLocal("", "http://localhost", nil)
	assert.Error(t, err)

	_, err = NewLocal(t.TempDir(), "://bad", nil)
	assert.Error(t, err)
}
