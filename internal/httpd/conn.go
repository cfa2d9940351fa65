package httpd

import (
	"bytes"
	"io"
	"math/rand/v2"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"staticd/internal/logbuf"
)

var headerTerminator = []byte("\r\n\r\n")

// maxBodyBytes bounds how much declared body the server will buffer
// for one request.
const maxBodyBytes = 10 << 20

// handleConnection runs one accepted connection end to end: read until
// the request is framed, parse, route, respond, close. Every exit path
// releases the socket, and nothing raised past parsing escapes to the
// dispatcher.
func (s *Server) handleConnection(conn net.Conn, logger *logbuf.Logger) {
	defer conn.Close()

	connID := uuid.NewString()[:8]
	remote := "unknown"
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("%s [%s] - panic handling request: %v", remote, connID, r)
			s.swallow(logger, writeError(conn, 500, "Internal Server Error", false))
		}
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout()))

	raw, err := s.readRequestHead(conn)
	if len(raw) == 0 {
		// Pre-request abort: the peer gets nothing back.
		logger.Warnf("%s [%s] - no request received (%v)", remote, connID, err)
		return
	}

	req, perr := parseRequest(raw)
	if perr != nil {
		logger.Warnf("%s [%s] - %s", remote, connID, perr.Message)
		s.swallow(logger, writeError(conn, perr.Status, perr.Message, false))
		return
	}

	logger.Infof("%s [%s] - %s %s %s", remote, connID, req.Method, req.RawPath, req.Version)

	if req.ContentLength > maxBodyBytes {
		logger.Warnf("%s [%s] - declared body of %d bytes refused", remote, connID, req.ContentLength)
		s.swallow(logger, writeError(conn, 400, "request body too large", req.Method == "HEAD"))
		return
	}

	s.readRemainingBody(conn, req, logger, remote, connID)

	if status, ok := s.drawFailure(); ok {
		logger.Warnf("%s [%s] - injected failure %d for %s %s", remote, connID, status, req.Method, req.Path)
		body := []byte("Simulated Failure\n")
		s.swallow(logger, writeRaw(conn, status, "Simulated Failure", "text/plain; charset=utf-8", body, req.Method == "HEAD"))
		return
	}

	s.respond(conn, req, logger, remote, connID)
}

func (s *Server) respond(conn net.Conn, req *Request, logger *logbuf.Logger, remote, connID string) {
	suppress := req.Method == "HEAD"
	target := s.route(req)

	switch target.kind {
	case targetRejected:
		logger.Infof("%s [%s] - %d: %s", remote, connID, target.status, req.Path)
		s.swallow(logger, writeError(conn, target.status, target.reason, suppress))

	case targetAPI:
		status := s.serveAPI(conn, req, target.endpoint, logger)
		logger.Infof("%s [%s] - %d: %s %s", remote, connID, status, req.Method, req.Path)

	case targetStatic:
		content, err := os.ReadFile(target.filePath)
		if err != nil {
			logger.Errorf("%s [%s] - reading %s: %v", remote, connID, target.filePath, err)
			s.swallow(logger, writeError(conn, 500, "Internal Server Error", suppress))
			return
		}
		contentType := contentTypeFor(target.filePath, content)
		s.swallow(logger, writeResponse(conn, target.status, contentType, content, suppress))
		logger.Infof("%s [%s] - %d: %s (%d bytes)", remote, connID, target.status, req.Path, len(content))
	}
}

// readRequestHead reads in fixed-size chunks until the double-CRLF
// header terminator shows up, the peer closes, or the read deadline
// fires. Whatever arrived is returned; the parser decides whether it
// amounts to a request.
func (s *Server) readRequestHead(conn net.Conn) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, s.cfg.ChunkSize)

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if bytes.Contains(buf, headerTerminator) {
				return buf, nil
			}
		}
		if err != nil {
			return buf, err
		}
	}
}

// readRemainingBody pulls in the rest of a declared body that did not
// arrive in the same chunks as the headers. A short read leaves the
// body truncated, which the API layer reports as invalid JSON.
func (s *Server) readRemainingBody(conn net.Conn, req *Request, logger *logbuf.Logger, remote, connID string) {
	missing := req.ContentLength - len(req.Body)
	if missing <= 0 {
		return
	}
	rest := make([]byte, missing)
	n, err := io.ReadFull(conn, rest)
	req.Body = append(req.Body, rest[:n]...)
	if err != nil {
		logger.Warnf("%s [%s] - short body read: %v", remote, connID, err)
	}
}

var injectedStatuses = [...]int{500, 503, 504}

// drawFailure rolls the failure-injection dice for one request.
func (s *Server) drawFailure() (int, bool) {
	fi := s.cfg.FailureInjection
	if !fi.Enabled || rand.Float64() >= fi.Rate {
		return 0, false
	}
	return injectedStatuses[rand.IntN(len(injectedStatuses))], true
}
