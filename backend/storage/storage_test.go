package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/backend/utils"
)

func TestThumbnailKey(t *testing.T) {
	key := ThumbnailKey("course-1", "Cover.PNG")
	assert.True(t, strings.HasPrefix(key, "thumbnails/course-1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	assert.NotEqual(t, key, ThumbnailKey("course-1", "Cover.PNG"))
	assert.False(t, strings.HasSuffix(ThumbnailKey("c", "evil.exe"), ".exe"))
}

func TestContentTypeForKey(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForKey("a/b.JPG"))
	assert.Equal(t, "image/webp", ContentTypeForKey("x.webp"))
	assert.Equal(t, "", ContentTypeForKey("x.bin"))
}

func TestLocalStoreUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://api.test/")
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "thumbnails/c1/a.png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/media/thumbnails/c1/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "thumbnails", "c1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, store.Delete(context.Background(), "thumbnails/c1/a.png"))
	require.NoError(t, store.Delete(context.Background(), "thumbnails/c1/a.png"))
	_, err = os.Stat(filepath.Join(dir, "thumbnails", "c1", "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://api.test")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "../outside.png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestGCSPublicURL(t *testing.T) {
	s := &GCSStore{bucket: "lms-assets", log: utils.NopLogger()}
	assert.Equal(t, "https://storage.googleapis.com/lms-assets/thumbnails/a.png", s.PublicURL("thumbnails/a.png"))

	s.cdnDomain = "cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/thumbnails/a.png", s.PublicURL("thumbnails/a.png"))
}
