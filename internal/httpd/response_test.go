package httpd

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Mock net.Conn implementation for testing
type mockConn struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
}

func newMockConn(input string) *mockConn {
	return &mockConn{
		readBuf:  bytes.NewBufferString(input),
		writeBuf: &bytes.Buffer{},
	}
}

func (m *mockConn) Read(b []byte) (n int, err error)   { return m.readBuf.Read(b) }
func (m *mockConn) Write(b []byte) (n int, err error)  { return m.writeBuf.Write(b) }
func (m *mockConn) Close() error                       { return nil }
func (m *mockConn) LocalAddr() net.Addr                { return nil }
func (m *mockConn) RemoteAddr() net.Addr               { return nil }
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }
func (m *mockConn) GetWrittenData() string             { return m.writeBuf.String() }

func TestWriteResponseFraming(t *testing.T) {
	conn := newMockConn("")
	err := writeResponse(conn, 200, "text/html; charset=utf-8", []byte("<h1>hi</h1>"), false)
	assert.NoError(t, err)

	expected := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Content-Length: 11\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		"<h1>hi</h1>"
	assert.Equal(t, expected, conn.GetWrittenData())
}

func TestWriteResponseSuppressedBody(t *testing.T) {
	get := newMockConn("")
	head := newMockConn("")
	body := []byte("twelve bytes")

	assert.NoError(t, writeResponse(get, 200, "text/plain; charset=utf-8", body, false))
	assert.NoError(t, writeResponse(head, 200, "text/plain; charset=utf-8", body, true))

	getResp := get.GetWrittenData()
	headResp := head.GetWrittenData()

	// HEAD keeps the header GET would have sent, minus the body bytes.
	headerEnd := bytes.Index([]byte(getResp), []byte("\r\n\r\n")) + 4
	assert.Equal(t, getResp[:headerEnd], headResp)
	assert.Contains(t, headResp, "Content-Length: 12\r\n")
	assert.False(t, bytes.HasSuffix([]byte(headResp), body))
}

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		message  string
		expected string
	}{
		{
			name:    "404",
			status:  404,
			message: "file not found",
			expected: "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain; charset=utf-8\r\n" +
				"Content-Length: 15\r\nConnection: close\r\n\r\nfile not found\n",
		},
		{
			name:    "405 names the method",
			status:  405,
			message: "method TRACE not allowed",
			expected: "HTTP/1.1 405 Method Not Allowed\r\nContent-Type: text/plain; charset=utf-8\r\n" +
				"Content-Length: 25\r\nConnection: close\r\n\r\nmethod TRACE not allowed\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn := newMockConn("")
			assert.NoError(t, writeError(conn, tc.status, tc.message, false))
			assert.Equal(t, tc.expected, conn.GetWrittenData())
		})
	}
}

func TestWriteRawCustomReason(t *testing.T) {
	conn := newMockConn("")
	assert.NoError(t, writeRaw(conn, 503, "Simulated Failure", "text/plain; charset=utf-8", []byte("Simulated Failure\n"), false))

	assert.Contains(t, conn.GetWrittenData(), "HTTP/1.1 503 Simulated Failure\r\n")
}
