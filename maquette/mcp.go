package maquette

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers all maquette tools on an MCP server.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	svc.registerClone(srv)
	svc.registerFrameworks(srv)
	svc.registerRuns(srv)
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

// addTool wires a decode-then-call handler onto the server, reporting
// failures through the tool result rather than the protocol.
func addTool[T any](srv *mcp.Server, tool *mcp.Tool, call func(ctx context.Context, p *T) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var p T
		if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}

		resp, err := call(ctx, &p)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func (svc *Service) registerClone(srv *mcp.Server) {
	type req struct {
		URL       string `json:"url"`
		Framework string `json:"framework"`
	}

	tool := &mcp.Tool{
		Name:        "maquette_clone",
		Description: "Clone a website: capture, analyze and generate a runnable front-end scaffold",
		InputSchema: inputSchema(map[string]any{
			"url":       map[string]any{"type": "string", "description": "URL of the page to clone"},
			"framework": map[string]any{"type": "string", "description": "Target framework: vanilla, react, next, vue, angular"},
		}, []string{"url"}),
	}

	addTool(srv, tool, func(ctx context.Context, p *req) (any, error) {
		return svc.Clone(ctx, &CloneRequest{URL: p.URL, Framework: p.Framework})
	})
}

func (svc *Service) registerFrameworks(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "maquette_frameworks",
		Description: "List the supported target frameworks",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	addTool(srv, tool, func(ctx context.Context, _ *req) (any, error) {
		return map[string]any{"frameworks": svc.Frameworks()}, nil
	})
}

func (svc *Service) registerRuns(srv *mcp.Server) {
	type req struct {
		Limit int `json:"limit"`
	}

	tool := &mcp.Tool{
		Name:        "maquette_runs",
		Description: "List recent clone runs, newest first",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max runs to return"},
		}, nil),
	}

	addTool(srv, tool, func(ctx context.Context, p *req) (any, error) {
		return svc.Runs(ctx, p.Limit)
	})
}
