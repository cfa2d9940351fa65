package httpd

import (
	"sync"

	"github.com/goccy/go-json"
)

// resultsStore keeps the most recent test-results payload posted by the
// load client. A single lock guards the swap so readers always see a
// complete payload, never a partial write.
type resultsStore struct {
	mu      sync.RWMutex
	payload json.RawMessage
}

// testResultsPayload is the shape the load client posts. Results stay
// raw: the payload is served back verbatim, only the count matters here.
type testResultsPayload struct {
	Timestamp     string            `json:"timestamp"`
	TotalRequests int               `json:"total_requests"`
	Results       []json.RawMessage `json:"results"`
}

func (s *resultsStore) put(p json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = p
}

// get returns the stored payload, or an empty JSON object before the
// first POST.
func (s *resultsStore) get() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.payload == nil {
		return json.RawMessage("{}")
	}
	return s.payload
}
