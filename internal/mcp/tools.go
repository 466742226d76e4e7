package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/ipc"
)

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	status, err := s.client.Status()
	if err != nil {
		return nil, ipc.StatusData{}, err
	}
	return nil, *status, nil
}

func (s *Server) handleListZones(_ context.Context, _ *mcpsdk.CallToolRequest, args ListZonesInput) (*mcpsdk.CallToolResult, ipc.ZonesData, error) {
	zones, err := s.client.Zones(strings.TrimSpace(args.Screen))
	if err != nil {
		return nil, ipc.ZonesData{}, err
	}
	return nil, *zones, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ipc.WindowsData, error) {
	windows, err := s.client.Windows()
	if err != nil {
		return nil, ipc.WindowsData{}, err
	}
	return nil, *windows, nil
}

func (s *Server) handleCycleWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CycleWindowInput) (*mcpsdk.CallToolResult, ipc.CycleData, error) {
	zone := strings.TrimSpace(args.Zone)
	if zone == "" {
		return nil, ipc.CycleData{}, fmt.Errorf("zone is required")
	}
	res, err := s.client.Cycle(args.Window, zone, strings.TrimSpace(args.Direction))
	if err != nil {
		return nil, ipc.CycleData{}, err
	}
	s.logger.Debug("mcp cycle", "window", res.Window, "zone", res.ZoneID, "tile", res.TileIdx)
	return nil, *res, nil
}

func (s *Server) handleFocusNext(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusNextInput) (*mcpsdk.CallToolResult, ipc.FocusData, error) {
	zone := strings.TrimSpace(args.Zone)
	if zone == "" {
		return nil, ipc.FocusData{}, fmt.Errorf("zone is required")
	}
	res, err := s.client.FocusNext(zone)
	if err != nil {
		return nil, ipc.FocusData{}, err
	}
	return nil, *res, nil
}

func (s *Server) handleMatchWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, ipc.MatchData, error) {
	res, err := s.client.Match(args.Window)
	if err != nil {
		return nil, ipc.MatchData{}, err
	}
	return nil, *res, nil
}

func (s *Server) handleRememberWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, ipc.RememberData, error) {
	res, err := s.client.Remember(args.Window)
	if err != nil {
		return nil, ipc.RememberData{}, err
	}
	return nil, *res, nil
}

func (s *Server) handleUnassignWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.client.Unassign(args.Window); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.client.Reload(); err != nil {
		return nil, AckOutput{}, err
	}
	s.logger.Info("mcp reload requested")
	return nil, AckOutput{OK: true}, nil
}
