package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/zonetile/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandStatus      CommandType = "STATUS"
	CommandListZones   CommandType = "LIST_ZONES"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandCycle       CommandType = "CYCLE"
	CommandFocusNext   CommandType = "FOCUS_NEXT"
	CommandMatch       CommandType = "MATCH"
	CommandRemember    CommandType = "REMEMBER"
	CommandUnassign    CommandType = "UNASSIGN"
	CommandReload      CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ScreenInfo describes an attached screen.
type ScreenInfo struct {
	ID     int           `json:"id"`
	Key    string        `json:"key"`
	Bounds platform.Rect `json:"bounds"`
	Usable platform.Rect `json:"usable"`
}

// StatusData represents the data returned by STATUS
type StatusData struct {
	InstanceID     string       `json:"instance_id"`
	Version        string       `json:"version"`
	UptimeSeconds  int64        `json:"uptime_seconds"`
	ConfigPath     string       `json:"config_path"`
	StoreBackend   string       `json:"store_backend"`
	Screens        []ScreenInfo `json:"screens"`
	Zones          int          `json:"zones"`
	TrackedWindows int          `json:"tracked_windows"`
}

// TileInfo is one tile of a zone.
type TileInfo struct {
	Index       int           `json:"index"`
	Description string        `json:"description,omitempty"`
	Frame       platform.Rect `json:"frame"`
}

// ZoneInfo describes one zone instance and its windows.
type ZoneInfo struct {
	ID          string           `json:"id"`
	QualifiedID string           `json:"qualified_id"`
	Screen      string           `json:"screen"`
	Description string           `json:"description,omitempty"`
	TriggerKey  string           `json:"trigger_key"`
	Tiles       []TileInfo       `json:"tiles"`
	Windows     []ZoneWindowInfo `json:"windows,omitempty"`
}

// ZoneWindowInfo is a window assigned to a zone.
type ZoneWindowInfo struct {
	Window  uint32 `json:"window"`
	TileIdx int    `json:"tile_idx"`
}

// ZonesPayload filters LIST_ZONES by screen key.
type ZonesPayload struct {
	Screen string `json:"screen,omitempty"`
}

// ZonesData represents the data returned by LIST_ZONES
type ZonesData struct {
	Zones []ZoneInfo `json:"zones"`
}

// WindowInfo describes a window and its assignment.
type WindowInfo struct {
	Window  uint32        `json:"window"`
	App     string        `json:"app,omitempty"`
	Title   string        `json:"title,omitempty"`
	Screen  string        `json:"screen,omitempty"`
	Frame   platform.Rect `json:"frame"`
	ZoneID  string        `json:"zone_id,omitempty"`
	TileIdx int           `json:"tile_idx,omitempty"`
	Active  bool          `json:"active,omitempty"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowPayload targets one window; zero means the focused window.
type WindowPayload struct {
	Window uint32 `json:"window,omitempty"`
}

// CyclePayload represents the payload for CYCLE
type CyclePayload struct {
	Window    uint32 `json:"window,omitempty"`
	Zone      string `json:"zone"`
	Direction string `json:"direction,omitempty"` // forward, backward, first, last or a tile number
}

// CycleData represents the data returned by CYCLE
type CycleData struct {
	Window  uint32        `json:"window"`
	Zone    string        `json:"zone"`
	ZoneID  string        `json:"zone_id"`
	TileIdx int           `json:"tile_idx"`
	Frame   platform.Rect `json:"frame"`
}

// FocusPayload represents the payload for FOCUS_NEXT
type FocusPayload struct {
	Zone string `json:"zone"`
}

// FocusData represents the data returned by FOCUS_NEXT
type FocusData struct {
	Window uint32 `json:"window"`
}

// MatchData represents the data returned by MATCH
type MatchData struct {
	Window  uint32  `json:"window"`
	Matched bool    `json:"matched"`
	ZoneID  string  `json:"zone_id,omitempty"`
	TileIdx int     `json:"tile_idx,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// RememberData represents the data returned by REMEMBER
type RememberData struct {
	Window uint32 `json:"window"`
	Kind   string `json:"kind"` // "zone" or "frame"
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
