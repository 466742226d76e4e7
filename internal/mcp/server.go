// Package mcp exposes the running daemon to MCP clients as tools. Every tool
// is a thin call over the IPC socket.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/ipc"
)

const ServerName = "zonetile"

// Client is the subset of the IPC client the tools use.
type Client interface {
	Status() (*ipc.StatusData, error)
	Zones(screen string) (*ipc.ZonesData, error)
	Windows() (*ipc.WindowsData, error)
	Cycle(window uint32, zone, direction string) (*ipc.CycleData, error)
	FocusNext(zone string) (*ipc.FocusData, error)
	Match(window uint32) (*ipc.MatchData, error)
	Remember(window uint32) (*ipc.RememberData, error)
	Unassign(window uint32) error
	Reload() error
}

var _ Client = (*ipc.Client)(nil)

// Server is the MCP server for zonetile.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
	logger    *slog.Logger
}

// NewServer creates a server whose tools talk to the daemon through client.
func NewServer(client Client, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		client: client,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "status",
		Description: "Report the zonetile daemon instance, screens and counts of zones and tracked windows.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_zones",
		Description: "List zone instances with their tiles and assigned windows, optionally for one screen.",
	}, s.handleListZones)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows with application, screen and zone assignment.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cycle_window",
		Description: "Move a window into a zone or to another tile of it. Without a direction the window advances to the next tile.",
	}, s.handleCycleWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_next",
		Description: "Focus the next window held by a zone.",
	}, s.handleFocusNext)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "match_window",
		Description: "Report which zone tile best fits a window's current frame, without moving it.",
	}, s.handleMatchWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remember_window",
		Description: "Persist a window's current position for its application.",
	}, s.handleRememberWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unassign_window",
		Description: "Remove a window from its zone.",
	}, s.handleUnassignWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Reload the daemon configuration file and rebuild zones.",
	}, s.handleReloadConfig)
}
