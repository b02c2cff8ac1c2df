package formfill

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hiremate/formfill/kit"
)

// RegisterMCP registers the engine's tools on an MCP server.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerDiscoverTool(srv)
	e.registerFillTool(srv)
	e.registerStatusTool(srv)
}

// endpoint wraps a tool operation with the shared middleware chain, so every
// MCP call is logged with its transport and request ID like the HTTP surface.
func (e *Engine) endpoint(op string, ep kit.Endpoint) kit.Endpoint {
	return kit.Chain(kit.Logging(e.logger, op))(ep)
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

// --- discover ---

type discoverReq struct {
	URL string `json:"url"`
}

func (e *Engine) registerDiscoverTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "formfill_discover",
		Description: "Open a job application page and discover its fillable form fields.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Application page URL"},
		}, []string{"url"}),
	}

	endpoint := e.endpoint("discover", func(ctx context.Context, req any) (any, error) {
		r := req.(*discoverReq)
		return e.Discover(ctx, r.URL)
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r discoverReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- fill ---

type fillToolReq struct {
	SessionID string           `json:"session_id"`
	Values    map[string]Value `json:"values,omitempty"`
	Profile   json.RawMessage  `json:"profile,omitempty"`
}

func (e *Engine) registerFillTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "formfill_fill",
		Description: "Fill a previously discovered application form. Values may be given per field index, or resolved from the profile via the mapping service.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID from formfill_discover"},
			"values":     map[string]any{"type": "object", "description": "Explicit field-index to value assignments"},
			"profile":    map[string]any{"type": "object", "description": "Applicant profile JSON for automatic mapping"},
		}, []string{"session_id"}),
	}

	endpoint := e.endpoint("fill", func(ctx context.Context, req any) (any, error) {
		r := req.(*fillToolReq)
		return e.Fill(ctx, r.SessionID, FillRequest{Values: r.Values, Profile: r.Profile})
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r fillToolReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{
			Request:   &r,
			EnrichCtx: func(ctx context.Context) context.Context { return kit.WithSessionID(ctx, r.SessionID) },
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- status ---

type statusReq struct {
	SessionID string `json:"session_id"`
}

func (e *Engine) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "formfill_status",
		Description: "Report the fill state and result of a session.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID from formfill_discover"},
		}, []string{"session_id"}),
	}

	endpoint := e.endpoint("status", func(_ context.Context, req any) (any, error) {
		r := req.(*statusReq)
		state, res, err := e.Status(r.SessionID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"state": state.String(), "result": res}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r statusReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
