package httpd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"staticd/internal/config"
	"staticd/internal/logbuf"
)

// State is the server lifecycle phase.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// acceptInterval bounds how long the accept loop can miss a shutdown
// request.
const acceptInterval = time.Second

// Server owns the listening socket, the worker pool, and the shared
// state the API serves. Construct one per process or per test; nothing
// here is a package-level singleton.
type Server struct {
	cfg     *config.Config
	logger  *logbuf.Logger
	results *resultsStore

	listener   net.Listener
	conns      chan net.Conn
	wg         sync.WaitGroup
	acceptDone chan struct{}

	state        atomic.Int32
	shutdownOnce sync.Once
}

func New(cfg *config.Config, logger *logbuf.Logger) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		results:    &resultsStore{},
		conns:      make(chan net.Conn),
		acceptDone: make(chan struct{}),
	}
}

func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
}

// Addr returns the bound listen address, nil before Start succeeds.
// Useful when the configured port is 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the listening socket, launches the worker pool and the
// accept loop, and returns. A bind failure is fatal to startup; after
// that every error is per-connection. Cancelling ctx makes the accept
// loop exit, but in-flight connections are only waited out by Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Address(), err)
	}
	s.listener = ln
	s.setState(StateRunning)
	s.logger.Infof("listening on http://%s", ln.Addr())

	for i := range s.cfg.MaxWorkers {
		s.wg.Add(1)
		go s.worker(i)
	}

	go s.acceptLoop(ctx)
	return nil
}

func (s *Server) worker(id int) {
	defer s.wg.Done()
	logger := s.logger.WithTag(fmt.Sprintf("worker-%d", id))
	for conn := range s.conns {
		s.handleConnection(conn, logger)
	}
}

// acceptLoop accepts with a short deadline so a shutdown request is
// observed within acceptInterval even when no client connects.
func (s *Server) acceptLoop(ctx context.Context) {
	defer close(s.acceptDone)

	for {
		if ctx.Err() != nil || s.State() != StateRunning {
			return
		}
		if tl, ok := s.listener.(*net.TCPListener); ok {
			tl.SetDeadline(time.Now().Add(acceptInterval))
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Errorf("accept: %v", err)
			continue
		}

		// Blocks while every worker is busy; pending connections queue
		// in the listen backlog rather than being dropped.
		s.conns <- conn
	}
}

// Shutdown closes the listener first, so no new connections are
// accepted, then waits for dispatched work to finish. In-flight
// connections complete, they are not aborted.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.setState(StateShuttingDown)
		s.logger.Infof("shutting down...")

		if s.listener != nil {
			s.listener.Close()
			<-s.acceptDone
		}

		close(s.conns)
		s.wg.Wait()

		s.setState(StateStopped)
		s.logger.Infof("server stopped")
	})
}
