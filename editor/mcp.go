package editor

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"editbridge/entity"
	"editbridge/kit"
)

// RegisterMCP registers editor tools on an MCP server. Tools go through the
// same controller surface as the CLI, ready gate and retries included.
func (c *Controller) RegisterMCP(srv *mcp.Server) {
	c.registerGetHTMLTool(srv)
	c.registerSetHTMLTool(srv)
	c.registerInsertHTMLTool(srv)
	c.registerInsertMentionTool(srv)
	c.registerListMentionsTool(srv)
	c.registerMarkdownTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type emptyReq struct{}

func decodeEmpty(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return &kit.MCPDecodeResult{Request: &emptyReq{}}, nil
}

// --- get html ---

func (c *Controller) registerGetHTMLTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "editbridge_get_html",
		Description: "Read the current document content as HTML.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		html, err := c.GetHTML(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]string{"html": html}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeEmpty)
}

// --- set html ---

type setHTMLReq struct {
	HTML string `json:"html"`
}

func (c *Controller) registerSetHTMLTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "editbridge_set_html",
		Description: "Replace the document content. Markup is sanitised first.",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "Replacement HTML"},
		}, []string{"html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*setHTMLReq)
		if err := c.SetHTML(ctx, r.HTML); err != nil {
			return nil, err
		}
		return map[string]bool{"ok": true}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r setHTMLReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- insert html ---

type insertHTMLReq struct {
	HTML string `json:"html"`
}

func (c *Controller) registerInsertHTMLTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "editbridge_insert_html",
		Description: "Insert sanitised HTML at the cursor position.",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "HTML to insert"},
		}, []string{"html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*insertHTMLReq)
		if err := c.InsertHTML(ctx, r.HTML); err != nil {
			return nil, err
		}
		return map[string]bool{"ok": true}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r insertHTMLReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- insert mention ---

type insertMentionReq struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Trigger     string `json:"trigger,omitempty"`
}

func (c *Controller) registerInsertMentionTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "editbridge_insert_mention",
		Description: "Insert a user mention, replacing the active trigger span when one exists.",
		InputSchema: inputSchema(map[string]any{
			"user_id":      map[string]any{"type": "string", "description": "Stable user identifier"},
			"username":     map[string]any{"type": "string", "description": "Handle shown in the mention"},
			"display_name": map[string]any{"type": "string", "description": "Optional display name"},
			"trigger":      map[string]any{"type": "string", "description": "Trigger character, default @"},
		}, []string{"user_id", "username"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*insertMentionReq)
		trigger := r.Trigger
		if trigger == "" {
			trigger = "@"
		}
		m := entity.Mention{
			User: entity.User{
				ID:          r.UserID,
				Username:    r.Username,
				DisplayName: r.DisplayName,
			},
			Trigger: trigger,
			Format:  entity.FormatLink,
		}
		if err := c.InsertMention(ctx, m); err != nil {
			return nil, err
		}
		return map[string]bool{"ok": true}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r insertMentionReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- list mentions ---

func (c *Controller) registerListMentionsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "editbridge_list_mentions",
		Description: "List every mention in the document, in document order.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		mentions, err := c.GetAllMentions(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mentions": mentions, "count": len(mentions)}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeEmpty)
}

// --- markdown export ---

func (c *Controller) registerMarkdownTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "editbridge_markdown",
		Description: "Export the current document as CommonMark.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		md, err := c.Markdown(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]string{"markdown": md}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeEmpty)
}
