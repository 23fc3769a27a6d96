// Package service owns the relay's listener socket and exposes the
// start/stop/status surface a host process drives.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/userorionik-source/aaravpos-agent/internal/server"
	"github.com/userorionik-source/aaravpos-agent/internal/spool"
)

// Config carries what the host process supplies at construction time.
type Config struct {
	Host         string
	Port         int
	LogPath      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Status is a point-in-time snapshot computed from live listener state.
type Status struct {
	IsRunning   bool   `json:"isRunning"`
	Port        int    `json:"port"`
	Connections int    `json:"connections"`
	LogPath     string `json:"logPath"`
}

// Service is an explicitly owned value: it holds the listener and, through
// the WebSocket server, the connection set. The host keeps one instance and
// passes it to its lifecycle callers; there is no package-level singleton.
type Service struct {
	cfg Config
	ws  *server.Server

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	running    bool
}

// New creates a stopped Service.
func New(cfg Config, ws *server.Server) *Service {
	return &Service{cfg: cfg, ws: ws}
}

// Start binds the loopback listener and begins serving. The bind happens
// synchronously: a claimed port surfaces here as an error and the service
// stays stopped. The host retries on its own schedule.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("service already running")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.ws.HandleWebSocket)

	// New listen cycle: re-arm the WebSocket server so connections
	// accepted after a previous Stop are served, not dropped.
	s.ws.Resume()

	httpServer := &http.Server{
		Handler:      mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	s.httpServer = httpServer
	s.listener = ln
	s.running = true

	// The goroutine uses its own captures: Stop may clear the struct
	// fields before Serve ever runs.
	go func() {
		err := httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			log.Printf("[HTTP] ❌ Serve error: %v", err)
		}
	}()

	log.Printf("[HTTP] 🔌 Listening on ws://%s/", addr)
	return nil
}

// Stop closes the listener and every open connection before returning.
// Stopping a never-started (or already stopped) service is a no-op.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	// WebSocket connections are hijacked from the HTTP server, so close
	// them first; Shutdown then takes care of the listener.
	s.ws.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("[STOP] ⚠️ HTTP shutdown error: %v", err)
		_ = s.httpServer.Close()
	}

	// Shutdown only closes listeners Serve has registered. If Stop won the
	// race against the Serve goroutine, the listener is still untracked;
	// close it directly so the port is free once Stop returns.
	_ = s.listener.Close()

	s.httpServer = nil
	s.listener = nil
	s.running = false
	return nil
}

// Status reports live state. Never blocks on I/O.
func (s *Service) Status() Status {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	connections := 0
	if running {
		connections = s.ws.ConnectionCount()
	}

	return Status{
		IsRunning:   running,
		Port:        s.cfg.Port,
		Connections: connections,
		LogPath:     s.cfg.LogPath,
	}
}

// Discover surfaces printer discovery to the host shell ("get printers").
func (s *Service) Discover(ctx context.Context) []spool.PrinterInfo {
	return s.ws.Platform().Discover(ctx)
}
