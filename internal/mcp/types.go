package mcp

// StatusInput is the input for the status tool.
type StatusInput struct{}

// ListZonesInput is the input for the list_zones tool.
type ListZonesInput struct {
	Screen string `json:"screen,omitempty" jsonschema:"Screen key such as DP-1; all screens when empty"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// CycleWindowInput is the input for the cycle_window tool.
type CycleWindowInput struct {
	Zone      string `json:"zone" jsonschema:"Logical zone id, e.g. 1 or center"`
	Window    uint32 `json:"window,omitempty" jsonschema:"Window id; the focused window when omitted"`
	Direction string `json:"direction,omitempty" jsonschema:"forward, backward, first, last or a 1-based tile number (default: forward)"`
}

// FocusNextInput is the input for the focus_next tool.
type FocusNextInput struct {
	Zone string `json:"zone" jsonschema:"Logical zone id, or a qualified id such as 1_DP-1"`
}

// WindowInput targets one window.
type WindowInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"Window id; the focused window when omitted"`
}

// AckOutput is returned by tools without a payload.
type AckOutput struct {
	OK bool `json:"ok"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}
