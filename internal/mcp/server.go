// Package mcp exposes the operation catalog over the Model Context
// Protocol on stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"azdo-cli/internal/tools"
)

// NewServer builds an MCP server advertising every operation of the
// dispatcher's registry as a tool.
func NewServer(dispatcher *tools.Dispatcher, name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	for _, info := range dispatcher.ListOperations() {
		registerOperation(s, dispatcher, info)
	}
	return s
}

// Serve runs the MCP server on stdio and blocks until stdin closes.
func Serve(dispatcher *tools.Dispatcher, name, version string) error {
	return server.ServeStdio(NewServer(dispatcher, name, version))
}

func registerOperation(s *server.MCPServer, dispatcher *tools.Dispatcher, info tools.OperationInfo) {
	schemaJSON, err := json.Marshal(info.InputSchema)
	if err != nil {
		schemaJSON = []byte(`{"type":"object"}`)
	}
	tool := mcp.NewToolWithRawSchema(info.Name, info.Description, schemaJSON)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := dispatcher.Call(ctx, info.Name, req.GetArguments())
		return toolResult(env)
	})
}

// toolResult maps a dispatch envelope onto the protocol result shape:
// payloads render as indented JSON text, failures travel on the protocol
// error channel with the envelope message.
func toolResult(env tools.Envelope) (*mcp.CallToolResult, error) {
	if !env.OK {
		return mcp.NewToolResultError(env.ErrorMessage), nil
	}
	data, err := json.MarshalIndent(env.Payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
