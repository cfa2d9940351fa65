package httpd

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Request is one parsed request, alive for a single connection.
type Request struct {
	Method  string
	RawPath string
	Path    string // percent-decoded, query stripped
	Query   string
	Version string
	Headers map[string]string // keys lowercased
	Body    []byte

	// ContentLength is the declared body length. A malformed header
	// value is tolerated as zero.
	ContentLength int
}

// RequestError maps a protocol violation onto the status that reports
// it. It is a value handed back to the connection handler, not control
// flow: the handler converts it to a response at a single boundary.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// parseRequest turns an already-buffered request (the double-CRLF
// terminator must be present) into a Request. It performs no I/O.
func parseRequest(raw []byte) (*Request, *RequestError) {
	text := string(raw)

	head, bodyPart, found := strings.Cut(text, "\r\n\r\n")
	if !found {
		return nil, &RequestError{Status: 400, Message: "Bad Request"}
	}

	lines := strings.Split(head, "\r\n")
	fields := strings.Split(lines[0], " ")
	if len(fields) < 3 {
		return nil, &RequestError{Status: 400, Message: "Bad Request"}
	}

	method := strings.ToUpper(fields[0])
	rawPath := fields[1]
	version := fields[2]

	switch method {
	case "GET", "HEAD", "POST":
	default:
		return nil, &RequestError{Status: 405, Message: fmt.Sprintf("method %s not allowed", method)}
	}

	pathPart, query, _ := strings.Cut(rawPath, "?")
	decoded, err := url.PathUnescape(pathPart)
	if err != nil {
		return nil, &RequestError{Status: 400, Message: "invalid URL encoding"}
	}

	headers := make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	// A malformed Content-Length is treated as zero rather than
	// rejected; the request proceeds with an empty body.
	contentLength := 0
	if cl, ok := headers["content-length"]; ok {
		if n, err := strconv.Atoi(cl); err == nil && n > 0 {
			contentLength = n
		}
	}

	body := []byte(bodyPart)
	if len(body) > contentLength {
		body = body[:contentLength]
	}

	return &Request{
		Method:        method,
		RawPath:       rawPath,
		Path:          decoded,
		Query:         query,
		Version:       version,
		Headers:       headers,
		Body:          body,
		ContentLength: contentLength,
	}, nil
}
