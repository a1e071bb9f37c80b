package editor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "editbridge-test", Version: "0.1.0"}

func mcpSession(t *testing.T) (*mcp.ClientSession, *fakeSurface) {
	t.Helper()
	ctrl, f := newTestController(t, Config{})
	ctrl.SetReady()

	srv := mcp.NewServer(testMCPImpl, nil)
	ctrl.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session, f
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_GetHTML(t *testing.T) {
	session, f := mcpSession(t)
	f.html = "<p>doc</p>"

	text := mcpCallTool(t, session, "editbridge_get_html", map[string]any{})

	var resp struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.HTML != "<p>doc</p>" {
		t.Errorf("html: got %q", resp.HTML)
	}
}

func TestMCP_SetHTML(t *testing.T) {
	session, f := mcpSession(t)

	mcpCallTool(t, session, "editbridge_set_html", map[string]any{"html": "<p>replaced</p>"})

	names := f.names()
	if len(names) != 1 || names[0] != "setHtml" {
		t.Fatalf("commands: got %v, want [setHtml]", names)
	}
}

func TestMCP_InsertMention(t *testing.T) {
	session, f := mcpSession(t)

	mcpCallTool(t, session, "editbridge_insert_mention", map[string]any{
		"user_id":  "u1",
		"username": "alice",
	})

	names := f.names()
	if len(names) != 1 || names[0] != "insertMention" {
		t.Fatalf("commands: got %v, want [insertMention]", names)
	}
}

func TestMCP_ListMentions(t *testing.T) {
	session, _ := mcpSession(t)

	text := mcpCallTool(t, session, "editbridge_list_mentions", map[string]any{})

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("count: got %d, want 0", resp.Count)
	}
}
