package httpd

import (
	"os"
	"path/filepath"
	"strings"
)

type targetKind int

const (
	targetStatic targetKind = iota
	targetAPI
	targetRejected
)

// apiEndpoint enumerates the closed set of API operations. Adding an
// endpoint means adding a variant here and a case in serveAPI.
type apiEndpoint int

const (
	apiPostResults apiEndpoint = iota
	apiGetResults
	apiGetLogs
)

// resolvedTarget is the routing decision for one request, consumed
// exactly once by the connection handler.
type resolvedTarget struct {
	kind targetKind

	// static
	filePath string
	status   int // 200, or 404 when serving the fallback page

	// api
	endpoint apiEndpoint

	// rejected
	reason string
}

func rejected(status int, reason string) resolvedTarget {
	return resolvedTarget{kind: targetRejected, status: status, reason: reason}
}

// route decides among static file, API endpoint, and rejection. API
// paths bypass the path guard entirely; everything else resolves
// against the sandbox root.
func (s *Server) route(req *Request) resolvedTarget {
	if strings.HasPrefix(req.Path, "/api/") {
		return routeAPI(req)
	}

	path := req.Path
	if path == "/" {
		path = "/index.html"
	}

	// A trailing slash on a concrete file is forgiven: retry with the
	// slash stripped before giving up on the path.
	if strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}

	full, err := resolvePath(path, s.cfg.PublicDir)
	if err != nil {
		return rejected(403, "access denied")
	}

	fi, err := os.Stat(full)
	if os.IsNotExist(err) {
		return s.notFound()
	}
	if err != nil {
		return rejected(500, "Internal Server Error")
	}
	if !fi.Mode().IsRegular() {
		return rejected(403, "not a file")
	}

	return resolvedTarget{kind: targetStatic, filePath: full, status: 200}
}

func routeAPI(req *Request) resolvedTarget {
	switch {
	case req.Method == "POST" && req.Path == "/api/test-results":
		return resolvedTarget{kind: targetAPI, endpoint: apiPostResults}
	case req.Method == "GET" && req.Path == "/api/test-results":
		return resolvedTarget{kind: targetAPI, endpoint: apiGetResults}
	case req.Method == "GET" && req.Path == "/api/logs":
		return resolvedTarget{kind: targetAPI, endpoint: apiGetLogs}
	default:
		return rejected(404, "no such API endpoint")
	}
}

// notFound serves the configured 404 page as content when present; the
// status stays 404 either way.
func (s *Server) notFound() resolvedTarget {
	fallback := filepath.Join(s.cfg.PublicDir, "404.html")
	if fi, err := os.Stat(fallback); err == nil && fi.Mode().IsRegular() {
		return resolvedTarget{kind: targetStatic, filePath: fallback, status: 404}
	}
	return rejected(404, "file not found")
}
