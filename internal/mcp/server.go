// Package mcp exposes the analysis engine as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/store"
	"github.com/blackwell-systems/repolens/internal/suggest"
)

const serverName = "repolens"

// toolHandler computes a tool result from the call arguments. The result is
// returned to the client as indented JSON text.
type toolHandler func(ctx context.Context, args map[string]interface{}) (any, error)

// Options configures a Server.
type Options struct {
	Version string
	Logger  *slog.Logger
	// DB, when set, records every analysis and enables the history tool.
	DB *store.DB
}

// Server wraps an MCP server whose tools run the analysis engine.
type Server struct {
	mcp     *server.MCPServer
	engine  *engine.Engine
	suggest *suggest.Engine
	db      *store.DB
	version string
	log     *slog.Logger
	tools   []string
}

// NewServer builds a Server with every tool registered.
func NewServer(eng *engine.Engine, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	s := &Server{
		mcp: server.NewMCPServer(serverName, version,
			server.WithToolCapabilities(true),
			server.WithLogging(),
		),
		engine:  eng,
		suggest: suggest.NewEngine(),
		db:      opts.DB,
		version: version,
		log:     log,
	}
	addTools(s)
	return s
}

// Run serves MCP requests read from stdin until ctx is cancelled or stdin
// closes. Protocol errors go to the logger, never to stdout.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError))
	s.log.Info("mcp server listening", "tools", s.tools)
	return stdio.Listen(ctx, stdin, stdout)
}

// Tools returns the names of the registered tools in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// registerTool adds tool to the MCP server with h as its handler.
func (s *Server) registerTool(tool mcp.Tool, h toolHandler) {
	s.tools = append(s.tools, tool.Name)
	s.mcp.AddTool(tool, s.wrap(tool.Name, h))
}

// wrap adapts a toolHandler to the MCP handler signature. Handler failures
// become error results so the client sees the message.
func (s *Server) wrap(name string, h toolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, request.Params.Arguments)
		if err != nil {
			s.log.Warn("tool failed", "tool", name, "err", err)
			return textResult(err.Error(), true), nil
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s result: %w", name, err)
		}
		s.log.Debug("tool served", "tool", name, "bytes", len(data))
		return textResult(string(data), false), nil
	}
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
		IsError: isError,
	}
}
