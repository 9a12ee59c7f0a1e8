package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLikelyImage(t *testing.T) {
	for _, ext := range []string{"jpg", "jpeg", "png", "webp", "gif"} {
		assert.True(t, IsLikelyImage("x."+ext), ext)
		assert.True(t, IsLikelyImage("photo.JPG.00123."+ext), "embedded dots with "+ext)
	}
	for _, ext := range []string{"JPG", "JPEG", "PNG", "WEBP", "GIF"} {
		assert.True(t, IsLikelyImage("x."+ext), "uppercase "+ext)
	}
	for _, bad := range []string{"x.mp4", "x.pdf", "x.doc", "x.", "x", ""} {
		assert.False(t, IsLikelyImage(bad), bad)
	}
}

func TestResolve_Absolute(t *testing.T) {
	// already-absolute URLs pass through for any base, valid or not
	for _, base := range []string{"https://api.example.com", "http://localhost:8000/v1", "://broken", ""} {
		assert.Equal(t, "https://x/a.jpg", Resolve("https://x/a.jpg", base))
		assert.Equal(t, "http://x/a.jpg", Resolve("http://x/a.jpg", base))
	}
}

func TestResolve_MediaPrefix(t *testing.T) {
	// /media/ paths stick to the origin, dropping any base path prefix
	assert.Equal(t, "https://api.example.com/media/foo.png",
		Resolve("/media/foo.png", "https://api.example.com"))
	assert.Equal(t, "https://api.example.com/media/foo.png",
		Resolve("/media/foo.png", "https://api.example.com/v1/api"))
}

func TestResolve_RelativeJoin(t *testing.T) {
	tests := []struct {
		media, base, want string
	}{
		{"pic.jpg", "http://localhost:8000", "http://localhost:8000/pic.jpg"},
		{"/pic.jpg", "http://localhost:8000", "http://localhost:8000/pic.jpg"},
		{"pic.jpg", "http://localhost:8000/", "http://localhost:8000/pic.jpg"},
		{"/pic.jpg", "http://localhost:8000/", "http://localhost:8000/pic.jpg"},
		{"a/b/pic.jpg", "https://api.example.com/base", "https://api.example.com/base/a/b/pic.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.media, tt.base), "%s + %s", tt.base, tt.media)
	}
}

func TestResolve_Degraded(t *testing.T) {
	assert.Equal(t, "", Resolve("", "https://api.example.com"))
	// unparseable base returns the raw media reference, not an error
	assert.Equal(t, "pic.jpg", Resolve("pic.jpg", "not a url"))
	assert.Equal(t, "/media/foo.png", Resolve("/media/foo.png", ""))
}
