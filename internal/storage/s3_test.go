package storage

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "aws virtual host",
			cfg:  S3Config{Region: "sa-east-1", Bucket: "briefing-files"},
			want: "https://briefing-files.s3.sa-east-1.amazonaws.com",
		},
		{
			name: "custom endpoint path style",
			cfg:  S3Config{Region: "us-east-1", Bucket: "briefing-files", Endpoint: "http://localhost:9000/"},
			want: "http://localhost:9000/briefing-files",
		},
		{
			name: "explicit public url wins",
			cfg: S3Config{
				Bucket:    "briefing-files",
				Endpoint:  "https://xyz.supabase.co/storage/v1/s3",
				PublicURL: "https://xyz.supabase.co/storage/v1/object/public/briefing-files/",
			},
			want: "https://xyz.supabase.co/storage/v1/object/public/briefing-files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(tt.cfg))
		})
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey("Logo Final.PNG")
	assert.True(t, strings.HasSuffix(key, ".PNG"))

	_, err := uuid.Parse(strings.TrimSuffix(key, ".PNG"))
	assert.NoError(t, err)

	assert.NotEqual(t, NewKey("a.pdf"), NewKey("a.pdf"))

	noExt := NewKey("README")
	_, err = uuid.Parse(noExt)
	assert.NoError(t, err)
}

func TestPublicURLRoundTrip(t *testing.T) {
	s := &S3Storage{publicURL: "http://localhost:9000/briefing-files"}

	url := s.PublicURL("abc.png")
	assert.Equal(t, "http://localhost:9000/briefing-files/abc.png", url)

	key, ok := s.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "abc.png", key)

	_, ok = s.KeyFromURL("https://elsewhere.example.com/abc.png")
	assert.False(t, ok)
}
