package httpd

import (
	"fmt"
	"net"
)

var statusText = map[int]string{
	200: "OK",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
	503: "Service Unavailable",
	504: "Gateway Timeout",
}

func reasonPhrase(status int) string {
	if text, ok := statusText[status]; ok {
		return text
	}
	return "Unknown"
}

// writeRaw frames one complete response onto conn. Content-Length
// always matches len(body); suppressBody (HEAD requests) keeps the
// header but skips the body bytes. The connection is torn down either
// way, so callers log and swallow the returned error.
func writeRaw(conn net.Conn, status int, reason, contentType string, body []byte, suppressBody bool) error {
	header := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: %s\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		status, reason, contentType, len(body))

	if _, err := conn.Write([]byte(header)); err != nil {
		return err
	}
	if suppressBody || len(body) == 0 {
		return nil
	}
	_, err := conn.Write(body)
	return err
}

func writeResponse(conn net.Conn, status int, contentType string, body []byte, suppressBody bool) error {
	return writeRaw(conn, status, reasonPhrase(status), contentType, body, suppressBody)
}

// writeError sends a plain-text error response.
func writeError(conn net.Conn, status int, message string, suppressBody bool) error {
	return writeResponse(conn, status, "text/plain; charset=utf-8", []byte(message+"\n"), suppressBody)
}
