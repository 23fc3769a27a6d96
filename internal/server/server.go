package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/userorionik-source/aaravpos-agent/internal/auth"
	"github.com/userorionik-source/aaravpos-agent/internal/escpos"
	"github.com/userorionik-source/aaravpos-agent/internal/spool"
)

// Server authenticates WebSocket connections and dispatches client commands
// to the platform printer. Each connection gets one goroutine that handles
// its frames in arrival order; nothing is serialized across connections.
type Server struct {
	clients    *ClientRegistry
	tokens     *auth.Validator
	platform   spool.PlatformPrinter
	startTime  time.Time
	jobsOK     atomic.Int64
	jobsFailed atomic.Int64

	// shutdownChan marks the current listen cycle; Shutdown closes it and
	// Resume replaces it, so the server survives a stop/start cycle.
	shutdownMu   sync.Mutex
	shutdownChan chan struct{}
}

// NewServer creates a WebSocket server backed by the given token validator
// and platform printer.
func NewServer(tokens *auth.Validator, platform spool.PlatformPrinter) *Server {
	return &Server{
		clients:      NewClientRegistry(),
		tokens:       tokens,
		platform:     platform,
		startTime:    time.Now(),
		shutdownChan: make(chan struct{}),
	}
}

// ConnectionCount returns the number of live client connections.
func (s *Server) ConnectionCount() int {
	return s.clients.Count()
}

// Platform exposes the printer capability for host-process discovery calls.
func (s *Server) Platform() spool.PlatformPrinter {
	return s.platform
}

// HandleWebSocket is the connection gate plus message loop. The token query
// parameter is checked before the upgrade completes: a mismatch rejects the
// handshake with no payload, so an unauthenticated client never sees a
// single WebSocket message.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if !s.tokens.Validate(token) {
		log.Printf("[AUTH] 🚫 Rejected connection from %s (bad token)", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// The listener is loopback-only; the POS app may connect from a
	// file:// or app:// origin, so origin checking stays open.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("[WS] ❌ Error accepting client: %v", err)
		return
	}

	s.clients.Add(conn)
	log.Printf("[WS] ➕ Client connected (total: %d) from %s", s.clients.Count(), r.RemoteAddr)

	ctx := r.Context()
	welcome := Message{
		Type: MsgConnected,
		Payload: ConnectedPayload{
			Message:  "Print relay ready",
			Platform: s.platform.Platform(),
		},
	}
	_ = wsjson.Write(ctx, conn, welcome)

	s.readLoop(ctx, conn)

	s.clients.Remove(conn)
	_ = conn.Close(websocket.StatusNormalClosure, "disconnected")
	log.Printf("[WS] ➖ Client disconnected (remaining: %d)", s.clients.Count())
}

// readLoop handles a client's frames one at a time, in arrival order.
// A frame that fails to parse gets an error response and the connection
// lives on; only disconnect (or shutdown) ends the loop.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn) {
	// The connection belongs to the listen cycle it was accepted in.
	done := s.shutdownSignal()

	for {
		select {
		case <-done:
			return
		default:
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || ctx.Err() != nil {
				return
			}
			log.Printf("[WS] ⚠️ Error reading message: %v", err)
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("[WS] ⚠️ Unparseable frame: %v", err)
			s.sendError(ctx, conn, nil, "Invalid JSON: "+err.Error())
			continue
		}

		s.dispatch(ctx, conn, &cmd)
	}
}

// dispatch routes one command to its handler.
func (s *Server) dispatch(ctx context.Context, conn *websocket.Conn, cmd *Command) {
	switch cmd.Type {
	case CmdHealth:
		s.handleHealth(ctx, conn, cmd)
	case CmdPrintText:
		s.handlePrintText(ctx, conn, cmd)
	case CmdTestPrint:
		s.handleTestPrint(ctx, conn, cmd)
	case CmdOpenCashDrawer:
		s.handleOpenCashDrawer(ctx, conn, cmd)
	default:
		log.Printf("[WS] ⚠️ Unknown command type: %s", cmd.Type)
		s.sendError(ctx, conn, cmd.RequestID, "Unknown command type: "+cmd.Type)
	}
}

// handleHealth answers with the live printer snapshot plus job counters.
func (s *Server) handleHealth(ctx context.Context, conn *websocket.Conn, cmd *Command) {
	printers := s.platform.Discover(ctx)
	if printers == nil {
		printers = []spool.PrinterInfo{}
	}

	var defaultPrinter *string
	for i := range printers {
		if printers[i].IsDefault {
			defaultPrinter = &printers[i].Name
			break
		}
	}

	s.send(ctx, conn, Message{
		Type:      MsgHealth,
		RequestID: cmd.RequestID,
		Payload: HealthPayload{
			OK:             true,
			Printers:       printers,
			TotalPrinters:  len(printers),
			DefaultPrinter: defaultPrinter,
			UptimeSeconds:  int(time.Since(s.startTime).Seconds()),
			JobsProcessed:  s.jobsOK.Load(),
			JobsFailed:     s.jobsFailed.Load(),
		},
	})
}

func (s *Server) handlePrintText(ctx context.Context, conn *websocket.Conn, cmd *Command) {
	var p PrintPayload
	if msg, ok := decodePrintPayload(cmd.Payload, &p); !ok {
		s.sendResult(ctx, conn, MsgPrint, cmd.RequestID, false, msg)
		return
	}

	buf := escpos.Build(p.Text, false)
	s.print(ctx, conn, MsgPrint, cmd.RequestID, p.PrinterName, buf)
}

func (s *Server) handleTestPrint(ctx context.Context, conn *websocket.Conn, cmd *Command) {
	var p PrintPayload
	if msg, ok := decodePrintPayload(cmd.Payload, &p); !ok {
		s.sendResult(ctx, conn, MsgTestPrint, cmd.RequestID, false, msg)
		return
	}

	buf := escpos.Build(s.testReceipt(), false)
	s.print(ctx, conn, MsgTestPrint, cmd.RequestID, p.PrinterName, buf)
}

func (s *Server) handleOpenCashDrawer(ctx context.Context, conn *websocket.Conn, cmd *Command) {
	var p PrintPayload
	if msg, ok := decodePrintPayload(cmd.Payload, &p); !ok {
		s.sendResult(ctx, conn, MsgCashDrawer, cmd.RequestID, false, msg)
		return
	}

	buf := escpos.Build("Opening cash drawer", true)
	s.print(ctx, conn, MsgCashDrawer, cmd.RequestID, p.PrinterName, buf)
}

// decodePrintPayload validates the shared print-class payload shape.
func decodePrintPayload(raw json.RawMessage, p *PrintPayload) (string, bool) {
	if len(raw) == 0 {
		return "Field 'payload' is required", false
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return "Invalid payload: " + err.Error(), false
	}
	if p.PrinterName == "" {
		return "Field 'payload.printerName' is required", false
	}
	return "", true
}

// print routes a buffer and reports the outcome on respType. Routing failure
// becomes a success:false response; it never tears the connection down.
func (s *Server) print(ctx context.Context, conn *websocket.Conn, respType string, reqID *string, printerName string, buf []byte) {
	jobID := correlationID(reqID)
	log.Printf("[WS] 🖨️ Job %s -> printer %q (%d bytes)", jobID, printerName, len(buf))

	start := time.Now()
	err := s.platform.Route(ctx, printerName, buf)
	duration := time.Since(start).Round(time.Millisecond)

	if err != nil {
		s.jobsFailed.Add(1)
		log.Printf("[WS] ❌ Job %s FAILED after %v: %v", jobID, duration, err)
		s.sendResult(ctx, conn, respType, reqID, false, humanizeSpoolError(err))
		return
	}

	s.jobsOK.Add(1)
	log.Printf("[WS] ✅ Job %s completed in %v", jobID, duration)
	s.sendResult(ctx, conn, respType, reqID, true, fmt.Sprintf("Sent to printer %q", printerName))
}

// testReceipt builds the fixed diagnostic receipt.
func (s *Server) testReceipt() string {
	return fmt.Sprintf(
		"================================\n"+
			"       PRINT RELAY TEST\n"+
			"================================\n"+
			"Time:     %s\n"+
			"Platform: %s\n"+
			"--------------------------------\n"+
			"If you can read this, raw\n"+
			"printing works.",
		time.Now().Format("2006-01-02 15:04:05"),
		s.platform.Platform(),
	)
}

// correlationID returns the client requestId for logging, or a generated
// uuid when the client sent none.
func correlationID(reqID *string) string {
	if reqID != nil && *reqID != "" {
		return *reqID
	}
	return uuid.New().String()
}

func (s *Server) sendResult(ctx context.Context, conn *websocket.Conn, respType string, reqID *string, success bool, msg string) {
	s.send(ctx, conn, Message{
		Type:      respType,
		RequestID: reqID,
		Payload:   ResultPayload{Success: success, Message: msg},
	})
}

func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, reqID *string, msg string) {
	s.send(ctx, conn, Message{
		Type:      MsgError,
		RequestID: reqID,
		Payload:   ErrorPayload{Message: msg},
	})
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, msg Message) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Printf("[WS] ⚠️ Error writing %s response: %v", msg.Type, err)
	}
}

// Shutdown disconnects all clients and ends the current listen cycle.
// Safe to call more than once per cycle.
func (s *Server) Shutdown() {
	s.shutdownMu.Lock()
	select {
	case <-s.shutdownChan:
		s.shutdownMu.Unlock()
		return
	default:
		close(s.shutdownChan)
	}
	s.shutdownMu.Unlock()

	clientCount := s.clients.Count()
	log.Printf("[WS] 🛑 Shutting down, disconnecting %d clients", clientCount)

	s.clients.ForEach(func(conn *websocket.Conn) {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
	})
}

// Resume re-arms the server for a new listen cycle after a Shutdown, so a
// restarted service serves new connections instead of dropping them.
func (s *Server) Resume() {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()

	select {
	case <-s.shutdownChan:
		s.shutdownChan = make(chan struct{})
	default:
	}
}

// shutdownSignal returns the channel marking the current listen cycle.
func (s *Server) shutdownSignal() <-chan struct{} {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shutdownChan
}
