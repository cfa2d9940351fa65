package httpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		wantStatus int // 0 means parse succeeds
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   string
	}{
		{
			name:       "valid GET request",
			input:      "GET /index.html HTTP/1.1\r\nHost: localhost\r\n\r\n",
			wantMethod: "GET",
			wantPath:   "/index.html",
		},
		{
			name:       "lowercase method is normalized",
			input:      "get / HTTP/1.1\r\n\r\n",
			wantMethod: "GET",
			wantPath:   "/",
		},
		{
			name:       "HEAD request",
			input:      "HEAD /about.html HTTP/1.1\r\n\r\n",
			wantMethod: "HEAD",
			wantPath:   "/about.html",
		},
		{
			name:       "query string retained separately",
			input:      "GET /search?q=go&n=10 HTTP/1.1\r\n\r\n",
			wantMethod: "GET",
			wantPath:   "/search",
			wantQuery:  "q=go&n=10",
		},
		{
			name:       "percent-decoded path",
			input:      "GET /test%20file.html HTTP/1.1\r\n\r\n",
			wantMethod: "GET",
			wantPath:   "/test file.html",
		},
		{
			name:       "POST with body",
			input:      "POST /api/test-results HTTP/1.1\r\nContent-Length: 7\r\n\r\n{\"a\":1}",
			wantMethod: "POST",
			wantPath:   "/api/test-results",
			wantBody:   `{"a":1}`,
		},
		{
			name:       "body sliced to Content-Length",
			input:      "POST /x HTTP/1.1\r\nContent-Length: 3\r\n\r\nabcdef",
			wantMethod: "POST",
			wantPath:   "/x",
			wantBody:   "abc",
		},
		{
			name:       "malformed Content-Length treated as zero",
			input:      "POST /x HTTP/1.1\r\nContent-Length: banana\r\n\r\npayload",
			wantMethod: "POST",
			wantPath:   "/x",
			wantBody:   "",
		},
		{
			name:       "request line with too few tokens",
			input:      "GET /index.html\r\n\r\n",
			wantStatus: 400,
		},
		{
			name:       "empty input",
			input:      "",
			wantStatus: 400,
		},
		{
			name:       "unsupported method",
			input:      "TRACE / HTTP/1.1\r\n\r\n",
			wantStatus: 405,
		},
		{
			name:       "bad percent encoding",
			input:      "GET /%zz HTTP/1.1\r\n\r\n",
			wantStatus: 400,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, perr := parseRequest([]byte(tc.input))

			if tc.wantStatus != 0 {
				require.NotNil(t, perr)
				assert.Equal(t, tc.wantStatus, perr.Status)
				return
			}

			require.Nil(t, perr)
			assert.Equal(t, tc.wantMethod, req.Method)
			assert.Equal(t, tc.wantPath, req.Path)
			assert.Equal(t, tc.wantQuery, req.Query)
			assert.Equal(t, tc.wantBody, string(req.Body))
		})
	}
}

func TestParseRequestMethodInErrorMessage(t *testing.T) {
	_, perr := parseRequest([]byte("TRACE / HTTP/1.1\r\n\r\n"))
	require.NotNil(t, perr)
	assert.Equal(t, 405, perr.Status)
	assert.Contains(t, perr.Message, "TRACE")
}

func TestParseRequestHeaderKeysCaseInsensitive(t *testing.T) {
	req, perr := parseRequest([]byte("POST /x HTTP/1.1\r\ncOnTeNt-LeNgTh: 2\r\nHost: h\r\n\r\nhi"))
	require.Nil(t, perr)
	assert.Equal(t, 2, req.ContentLength)
	assert.Equal(t, "hi", string(req.Body))
	assert.Equal(t, "h", req.Headers["host"])
}
