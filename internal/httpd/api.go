package httpd

import (
	"net"
	"time"

	"github.com/goccy/go-json"

	"staticd/internal/logbuf"
)

const jsonContentType = "application/json; charset=utf-8"

type postResultsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type logsResponse struct {
	Timestamp string   `json:"timestamp"`
	Logs      []string `json:"logs"`
}

// serveAPI handles the routed API endpoint for one request. The
// returned status is what went on the wire, for the access log line.
func (s *Server) serveAPI(conn net.Conn, req *Request, endpoint apiEndpoint, logger *logbuf.Logger) int {
	suppress := req.Method == "HEAD"

	switch endpoint {
	case apiPostResults:
		var payload testResultsPayload
		if err := json.Unmarshal(req.Body, &payload); err != nil {
			s.swallow(logger, writeError(conn, 400, "Invalid JSON", suppress))
			return 400
		}
		s.results.put(json.RawMessage(append([]byte(nil), req.Body...)))

		body, _ := json.Marshal(postResultsResponse{
			Success: true,
			Message: "test results stored",
			Count:   len(payload.Results),
		})
		s.swallow(logger, writeResponse(conn, 200, jsonContentType, body, suppress))
		return 200

	case apiGetResults:
		s.swallow(logger, writeResponse(conn, 200, jsonContentType, s.results.get(), suppress))
		return 200

	case apiGetLogs:
		body, err := json.Marshal(logsResponse{
			Timestamp: time.Now().Format(time.RFC3339),
			Logs:      logger.Buffer().Snapshot(),
		})
		if err != nil {
			s.swallow(logger, writeError(conn, 500, "Internal Server Error", suppress))
			return 500
		}
		s.swallow(logger, writeResponse(conn, 200, jsonContentType, body, suppress))
		return 200
	}

	s.swallow(logger, writeError(conn, 404, "no such API endpoint", suppress))
	return 404
}

// swallow logs a response-write failure and drops it: the connection is
// closing regardless, there is nobody left to report to.
func (s *Server) swallow(logger *logbuf.Logger, err error) {
	if err != nil {
		logger.Errorf("failed to write response: %v", err)
	}
}
