package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/blob-tools-mcp/internal/config"
	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// ServerName and ServerVersion are reported in the initialize handshake.
const (
	ServerName    = "blob-tools-mcp"
	ServerVersion = "0.1.0"

	protocolVersion = "2024-11-05"
)

// JSON-RPC error codes used by the server. codeToolFailed is the
// implementation-defined code for a tool that ran and returned an error.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// methodHandler answers one JSON-RPC method. A nil response means the request
// was a notification and nothing is written back.
type methodHandler func(s *Server, req *MCPRequest) *MCPResponse

// methods maps the MCP methods the server understands to their handlers.
var methods = map[string]methodHandler{
	"initialize":                (*Server).handleInitialize,
	"notifications/initialized": func(*Server, *MCPRequest) *MCPResponse { return nil },
	"tools/list":                (*Server).handleToolsList,
	"tools/call":                (*Server).handleToolsCall,
	"ping":                      (*Server).handlePing,
}

// Server answers MCP requests for the blob tools. Decoded rasters are cached
// by path for the lifetime of the Server.
type Server struct {
	cache  *raster.Cache
	cfg    *config.Config
	logger *slog.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the defaults applied to tool arguments the client omits.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets the logger for protocol diagnostics. Without it the server
// logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:  raster.NewCache(),
		cfg:    config.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes one
// response line per request to w until r is exhausted. Blank lines are
// skipped; a line that is not JSON is answered with a parse error and
// serving continues.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Tool arguments are small, but leave room for long paths and regions.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			resp = s.errorResponse(nil, codeParseError, "Parse error", err.Error())
		} else {
			resp = s.handleRequest(&req)
		}

		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// handleRequest routes a request through the method table.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	handle, ok := methods[req.Method]
	if !ok {
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
	return handle(s, req)
}

func (s *Server) handlePing(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{},
	}
}

// handleInitialize responds to the initialize request. The server only
// offers tools.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": ServerVersion,
			},
		},
	}
}
