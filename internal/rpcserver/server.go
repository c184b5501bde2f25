// Package rpcserver implements MiniC's optional compile server (component
// C11): an HTTP endpoint that upgrades to a WebSocket connection, accepts
// MiniC source text, and streams back the requested pipeline artifacts as
// newline-delimited JSON messages.
//
// The upgrade-and-serve shape is grounded on the teacher's
// internal/network/websocket.go WebSocketListen/Handler pattern — a
// gorilla/websocket Upgrader with an open CheckOrigin, one goroutine per
// connection reading a request and writing a response. This package wraps
// C1-C9 unmodified; it introduces no new compiler semantics.
package rpcserver

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"minicc/internal/codegen"
	"minicc/internal/errors"
	"minicc/internal/ir"
	"minicc/internal/lexer"
	"minicc/internal/optimize"
	"minicc/internal/parser"
	"minicc/internal/sema"
	"minicc/internal/tacprint"
)

// Request is one compile-and-report job sent by a client.
type Request struct {
	Source  string   `json:"source"`
	Want    []string `json:"want"` // subset of "tokens","tac","optimized","asm"; there is no AST artifact
	Dialect string   `json:"dialect,omitempty"`
}

// Response carries the requested artifacts, or an error, for one Request.
type Response struct {
	RequestID string `json:"request_id"`
	Tokens    string `json:"tokens,omitempty"`
	TAC       string `json:"tac,omitempty"`
	Optimized string `json:"optimized,omitempty"`
	Assembly  string `json:"assembly,omitempty"`
	Error     string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server serves compile requests over WebSocket connections.
type Server struct {
	Addr string
}

// New prepares a Server listening on addr (e.g. ":8089").
func New(addr string) *Server {
	return &Server{Addr: addr}
}

// ListenAndServe blocks, handling compile connections at "/compile" until
// the process exits or the listener errors.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/compile", s.handleCompile)
	return http.ListenAndServe(s.Addr, mux)
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		resp := compile(req)
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("rpcserver: write to client: %v", err)
			return
		}
	}
}

// compile runs C1-C9 (selectively, per req.Want) over one request, tagging
// the result with a fresh request ID the way the teacher tags each
// WebSocket connection — but with a real UUID instead of a timestamp string.
func compile(req Request) Response {
	resp := Response{RequestID: uuid.NewString()}

	tokens := lexer.Tokenize(req.Source)
	if wants(req.Want, "tokens") {
		resp.Tokens = formatTokens(tokens)
	}

	prog, err := parser.New(tokens).Parse()
	if err != nil {
		resp.Error = errors.Wrap("parse", err).Error()
		return resp
	}

	if _, err := sema.Analyze(prog); err != nil {
		resp.Error = errors.Wrap("semantic analysis", err).Error()
		return resp
	}

	tacProgram := ir.Generate(prog)
	dialect := tacprint.Standard
	if req.Dialect != "" {
		dialect = tacprint.Dialect(req.Dialect)
	}
	if wants(req.Want, "tac") {
		resp.TAC = tacprint.Print(tacProgram, dialect)
	}

	optimized := optimize.Optimize(tacProgram)
	if wants(req.Want, "optimized") {
		resp.Optimized = tacprint.Print(optimized, dialect)
	}

	if wants(req.Want, "asm") {
		resp.Assembly = codegen.Generate(optimized)
	}
	return resp
}

func wants(want []string, key string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if w == key {
			return true
		}
	}
	return false
}

func formatTokens(tokens []lexer.Token) string {
	b, _ := json.Marshal(tokens)
	return string(b)
}
