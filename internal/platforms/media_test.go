package platforms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png; charset=binary")
		w.Write([]byte("fake-png-bytes"))
	}))
	defer server.Close()

	media, err := FetchMedia(context.Background(), server.URL+"/photos/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-png-bytes"), media.Data)
	assert.Equal(t, "image/png", media.ContentType)
	assert.Equal(t, "avatar.png", media.Filename)
	assert.True(t, media.IsImage())
}

func TestFetchMediaNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := FetchMedia(context.Background(), server.URL+"/missing.png")
	assert.Error(t, err)
}

func TestIsImage(t *testing.T) {
	assert.True(t, (&Media{ContentType: "image/jpeg"}).IsImage())
	assert.False(t, (&Media{ContentType: "video/mp4"}).IsImage())
	assert.False(t, (&Media{ContentType: "application/pdf"}).IsImage())
}

func TestKnownPlatform(t *testing.T) {
	name := "test-platform-" + t.Name()
	assert.False(t, KnownPlatform(name))

	_, err := RegistryAdapters.Register(name, nil)
	require.NoError(t, err)
	defer RegistryAdapters.Clear(name, nil)

	assert.True(t, KnownPlatform(name))
}

func TestFetchMediaDetectsContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		// Header PNG thật để DetectContentType nhận ra
		w.Write(append([]byte("\x89PNG\r\n\x1a\n"), []byte(strings.Repeat("x", 16))...))
	}))
	defer server.Close()

	media, err := FetchMedia(context.Background(), server.URL+"/blob")
	require.NoError(t, err)
	assert.Equal(t, "image/png", media.ContentType)
}
