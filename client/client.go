// Load-generating client: fires concurrent requests at the server,
// records per-request outcomes, and posts the run to the
// /api/test-results endpoint.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

var (
	host     string
	port     string
	requests int
	workers  int
	pathList string
)

type result struct {
	RequestID     int     `json:"request_id"`
	Path          string  `json:"path"`
	Method        string  `json:"method"`
	StatusCode    int     `json:"status_code"`
	ResponseTime  float64 `json:"response_time"` // milliseconds
	ContentLength int     `json:"content_length"`
	Error         string  `json:"error,omitempty"`
	Success       bool    `json:"success"`
}

type runPayload struct {
	Timestamp     string   `json:"timestamp"`
	TotalRequests int      `json:"total_requests"`
	Results       []result `json:"results"`
}

func main() {

	flag.StringVar(&host, "host", "127.0.0.1", "Server host")
	flag.StringVar(&port, "p", "8000", "Server port")
	flag.IntVar(&requests, "n", 20, "Number of requests")
	flag.IntVar(&workers, "c", 10, "Concurrent workers")
	flag.StringVar(&pathList, "paths", "/,/index.html,/about.html,/style.css,/notfound.html", "Comma-separated paths to request")
	flag.Parse()

	addr := net.JoinHostPort(host, port)
	paths := strings.Split(pathList, ",")

	// Probe before loading.
	if probe := sendRequest(addr, "GET", "/", 0); !probe.Success {
		log.Fatalf("Error: server not reachable at %s: %s", addr, probe.Error)
	}
	log.Printf("Server online at http://%s", addr)

	results := make([]result, requests)
	jobs := make(chan int)
	var wg sync.WaitGroup

	start := time.Now()
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = sendRequest(addr, "GET", paths[i%len(paths)], i+1)
			}
		}()
	}
	for i := range requests {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	total := time.Since(start)

	printSummary(results, total)

	if err := postResults(addr, results); err != nil {
		log.Fatalf("Error posting results: %v", err)
	}
}

// sendRequest issues one request over a fresh connection and records
// the outcome. The response is read to EOF; the server always closes.
func sendRequest(addr, method, path string, id int) result {
	res := result{RequestID: id, Path: path, Method: method}
	start := time.Now()
	defer func() {
		res.ResponseTime = float64(time.Since(start).Microseconds()) / 1000.0
	}()

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	request := fmt.Sprintf("%s %s HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n", method, path, addr)
	if _, err := conn.Write([]byte(request)); err != nil {
		res.Error = err.Error()
		return res
	}

	raw, err := io.ReadAll(bufio.NewReader(conn))
	if err != nil && len(raw) == 0 {
		res.Error = err.Error()
		return res
	}

	status, length, err := parseResponseHead(string(raw))
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.StatusCode = status
	res.ContentLength = length
	res.Success = true
	return res
}

func parseResponseHead(response string) (status, contentLength int, err error) {
	lines := strings.Split(response, "\r\n")
	if len(lines) == 0 || lines[0] == "" {
		return 0, 0, fmt.Errorf("empty response")
	}

	fields := strings.Split(lines[0], " ")
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("malformed status line %q", lines[0])
	}
	status, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed status code %q", fields[1])
	}

	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			contentLength, _ = strconv.Atoi(strings.TrimSpace(value))
			break
		}
	}
	return status, contentLength, nil
}

func printSummary(results []result, total time.Duration) {
	var ok int
	var minMs, maxMs, sumMs float64
	for _, r := range results {
		if !r.Success {
			continue
		}
		if ok == 0 || r.ResponseTime < minMs {
			minMs = r.ResponseTime
		}
		if r.ResponseTime > maxMs {
			maxMs = r.ResponseTime
		}
		sumMs += r.ResponseTime
		ok++
	}

	log.Printf("requests: %d, succeeded: %d, failed: %d", len(results), ok, len(results)-ok)
	if ok > 0 {
		log.Printf("latency ms: min %.2f, max %.2f, avg %.2f", minMs, maxMs, sumMs/float64(ok))
		log.Printf("throughput: %.2f req/s", float64(ok)/total.Seconds())
	}
}

// postResults uploads the run so the server's API consumers can fetch
// it back.
func postResults(addr string, results []result) error {
	body, err := json.Marshal(runPayload{
		Timestamp:     time.Now().Format(time.RFC3339),
		TotalRequests: len(results),
		Results:       results,
	})
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	request := fmt.Sprintf(
		"POST /api/test-results HTTP/1.1\r\nHost: %s\r\nContent-Type: application/json\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		addr, len(body))
	if _, err := conn.Write(append([]byte(request), body...)); err != nil {
		return err
	}

	raw, _ := io.ReadAll(bufio.NewReader(conn))
	status, _, err := parseResponseHead(string(raw))
	if err != nil {
		return err
	}
	if status != 200 {
		return fmt.Errorf("server answered %d", status)
	}
	log.Printf("posted %d results to /api/test-results", len(results))
	return nil
}
