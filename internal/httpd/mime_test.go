package httpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	testCases := []struct {
		name    string
		path    string
		content []byte
		want    string
	}{
		{
			name: "table extension",
			path: "page.html",
			want: "text/html; charset=utf-8",
		},
		{
			name: "table extension is case-insensitive",
			path: "logo.PNG",
			want: "image/png",
		},
		{
			name: "stylesheet",
			path: "style.css",
			want: "text/css; charset=utf-8",
		},
		{
			name:    "unknown extension sniffs content",
			path:    "notes.zzz",
			content: []byte("just some plain text\n"),
			want:    "text/plain; charset=utf-8",
		},
		{
			name: "unknown extension with no content",
			path: "blob.zzz",
			want: "application/octet-stream",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, contentTypeFor(tc.path, tc.content))
		})
	}
}
