// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Raido board tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bergsten/raido/internal/attrs"
	"github.com/bergsten/raido/internal/reconcile"
)

// Server wraps the MCP server with the board tools.
type Server struct {
	mcp    *server.MCPServer
	engine *reconcile.Engine
	store  reconcile.AttributeStore
}

// New creates a new MCP server with all board tools registered.
func New(engine *reconcile.Engine, store reconcile.AttributeStore) *Server {
	s := &Server{engine: engine, store: store}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Return the current priorities board as JSON: sections, "+
			"priority groups, entries and the list of tracked projects missing from the board."),
	), s.getBoard)

	s.mcp.AddTool(mcp.NewTool("set_status",
		mcp.WithDescription("Set a project's status and move its board entry to the "+
			"matching section. Valid statuses: active, coming-soon, deferred, on-hold, "+
			"complete (complete removes the entry)."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name (note filename stem)")),
		mcp.WithString("status", mcp.Required(), mcp.Description("New status value")),
	), s.setStatus)

	s.mcp.AddTool(mcp.NewTool("set_group",
		mcp.WithDescription("Set or clear a project's priority group within its current "+
			"board section. Pass an empty group to ungroup the entry."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("group", mcp.Description("Priority group name (empty to ungroup)")),
	), s.setGroup)

	s.mcp.AddTool(mcp.NewTool("move_project",
		mcp.WithDescription("Move a project's board entry to a specific section and "+
			"optional group, writing the matching status back to the project note. "+
			"Read the contract first via get_board_contract or the raido://board-format resource."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("section", mcp.Required(), mcp.Description("Target section heading")),
		mcp.WithString("group", mcp.Description("Optional target group within the section")),
	), s.moveProject)

	s.mcp.AddTool(mcp.NewTool("list_unlisted",
		mcp.WithDescription("List tracked projects that have no entry on the board."),
	), s.listUnlisted)

	s.mcp.AddTool(mcp.NewTool("resync_board",
		mcp.WithDescription("Re-place every tracked project according to its status. "+
			"Use after bulk edits to project notes."),
	), s.resyncBoard)

	s.mcp.AddTool(mcp.NewTool("get_board_contract",
		mcp.WithDescription("Returns the canonical priorities board format contract. "+
			"Call this before editing the board or project statuses."),
	), s.getBoardContract)

	// Resource: board format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://board-format", "Board Format Contract",
			mcp.WithResourceDescription("Canonical priorities board format that the sync engine maintains."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBoardFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.engine.Board(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if doc == nil {
		return mcp.NewToolResultError("priorities document not found"), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) setStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !reconcile.KnownStatus(status) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown status: %s", status)), nil
	}

	if err := s.store.Update(project, map[string]any{attrs.KeyStatus: status}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update %s: %v", project, err)), nil
	}
	if err := <-s.engine.OnStatusChanged(ctx, project, status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s → %s", project, status)), nil
}

func (s *Server) setGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	group := ""
	if g, err := req.RequireString("group"); err == nil {
		group = g
	}

	var change any
	if group != "" {
		change = group
	}
	if err := s.store.Update(project, map[string]any{attrs.KeyGroup: change}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update %s: %v", project, err)), nil
	}
	if err := <-s.engine.OnGroupChanged(ctx, project, group); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if group == "" {
		return mcp.NewToolResultText(fmt.Sprintf("%s ungrouped", project)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s → group %s", project, group)), nil
}

func (s *Server) moveProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	group := ""
	if g, err := req.RequireString("group"); err == nil {
		group = g
	}

	if err := <-s.engine.OnManualMove(ctx, project, section, group); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s → %s", project, section)), nil
}

func (s *Server) listUnlisted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.engine.Board(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if doc == nil || len(doc.Unlisted) == 0 {
		return mcp.NewToolResultText("every tracked project is on the board"), nil
	}
	return mcp.NewToolResultText(strings.Join(doc.Unlisted, "\n")), nil
}

func (s *Server) resyncBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, done := s.engine.BulkResync(ctx)
	if err := <-done; err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("resynced %d projects", n)), nil
}

func (s *Server) getBoardContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BoardFormatContract), nil
}

func (s *Server) readBoardFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://board-format",
			MIMEType: "text/markdown",
			Text:     BoardFormatContract,
		},
	}, nil
}
