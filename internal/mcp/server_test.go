package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"azdo-cli/internal/azdo"
	"azdo-cli/internal/tools"
)

func testDispatcher(t *testing.T) *tools.Dispatcher {
	t.Helper()
	reg, err := tools.BuildRegistry(tools.Table{
		Domain: "testing",
		Operations: []tools.Operation{
			{
				Name:        "echo",
				Description: "Echo the value back.",
				Params: &tools.Param{Kind: tools.KindObject, Fields: map[string]*tools.Param{
					"value": {Kind: tools.KindString},
				}},
				Handler: func(ctx context.Context, client *azdo.Client, args tools.Args) (any, error) {
					return map[string]any{"value": args.String("value")}, nil
				},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tools.NewDispatcher(reg, nil)
}

func TestNewServer(t *testing.T) {
	s := NewServer(testDispatcher(t), "azdo-cli", "1.0.0")
	if s == nil {
		t.Fatal("expected a server")
	}
}

func TestToolResult_Success(t *testing.T) {
	res, err := toolResult(tools.Envelope{OK: true, Payload: map[string]any{"count": 2}})
	if err != nil {
		t.Fatalf("toolResult failed: %v", err)
	}
	if res.IsError {
		t.Error("success envelope should not be a protocol error")
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	if text.Text != "{\n  \"count\": 2\n}" {
		t.Errorf("payload text = %q", text.Text)
	}
}

func TestToolResult_Failure(t *testing.T) {
	res, err := toolResult(tools.Envelope{ErrorMessage: "Unknown tool: nope"})
	if err != nil {
		t.Fatalf("toolResult failed: %v", err)
	}
	if !res.IsError {
		t.Error("failure envelope should set the error flag")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	if text.Text != "Unknown tool: nope" {
		t.Errorf("error text = %q", text.Text)
	}
}
