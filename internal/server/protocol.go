package server

import (
	"encoding/json"

	"github.com/userorionik-source/aaravpos-agent/internal/spool"
)

// Inbound command types.
const (
	CmdHealth         = "health"
	CmdPrintText      = "print_text"
	CmdTestPrint      = "test_print"
	CmdOpenCashDrawer = "open_cash_drawer"
)

// Outbound message types.
const (
	MsgConnected  = "connected"
	MsgHealth     = "health_response"
	MsgPrint      = "print_response"
	MsgTestPrint  = "test_print_response"
	MsgCashDrawer = "cash_drawer_response"
	MsgError      = "error"
)

// Command is an inbound client frame. RequestID is an opaque client-supplied
// correlation string echoed back verbatim; a pointer keeps null distinct from
// the empty string.
type Command struct {
	Type      string          `json:"type"`
	RequestID *string         `json:"requestId"`
	Payload   json.RawMessage `json:"payload"`
}

// PrintPayload is the payload shape shared by print_text, test_print and
// open_cash_drawer; only print_text carries Text.
type PrintPayload struct {
	PrinterName string `json:"printerName"`
	Text        string `json:"text"`
}

// Message is an outbound server frame.
type Message struct {
	Type      string  `json:"type"`
	RequestID *string `json:"requestId"`
	Payload   any     `json:"payload"`
}

// ConnectedPayload greets an authenticated client.
type ConnectedPayload struct {
	Message  string `json:"message"`
	Platform string `json:"platform"`
}

// HealthPayload answers a health command.
type HealthPayload struct {
	OK             bool                `json:"ok"`
	Printers       []spool.PrinterInfo `json:"printers"`
	TotalPrinters  int                 `json:"totalPrinters"`
	DefaultPrinter *string             `json:"defaultPrinter"`
	UptimeSeconds  int                 `json:"uptimeSeconds"`
	JobsProcessed  int64               `json:"jobsProcessed"`
	JobsFailed     int64               `json:"jobsFailed"`
}

// ResultPayload reports a print-class operation outcome.
type ResultPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorPayload reports a protocol-level error.
type ErrorPayload struct {
	Message string `json:"message"`
}
