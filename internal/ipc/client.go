package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/zonetile/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends cmd with payload and decodes the response data into out.
func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Status retrieves daemon status
func (c *Client) Status() (*StatusData, error) {
	var data StatusData
	if err := c.call(CommandStatus, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Zones lists zone instances, optionally limited to one screen key.
func (c *Client) Zones(screen string) (*ZonesData, error) {
	var data ZonesData
	if err := c.call(CommandListZones, ZonesPayload{Screen: screen}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Windows lists managed windows.
func (c *Client) Windows() (*WindowsData, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Cycle assigns or cycles a window within a zone. Window 0 targets the
// focused window.
func (c *Client) Cycle(window uint32, zone, direction string) (*CycleData, error) {
	var data CycleData
	payload := CyclePayload{Window: window, Zone: zone, Direction: direction}
	if err := c.call(CommandCycle, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// FocusNext focuses the next window held by zone.
func (c *Client) FocusNext(zone string) (*FocusData, error) {
	var data FocusData
	if err := c.call(CommandFocusNext, FocusPayload{Zone: zone}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Match reports the best zone tile for a window's current frame.
func (c *Client) Match(window uint32) (*MatchData, error) {
	var data MatchData
	if err := c.call(CommandMatch, WindowPayload{Window: window}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Remember persists a window's current position.
func (c *Client) Remember(window uint32) (*RememberData, error) {
	var data RememberData
	if err := c.call(CommandRemember, WindowPayload{Window: window}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Unassign removes a window from its zone.
func (c *Client) Unassign(window uint32) error {
	return c.call(CommandUnassign, WindowPayload{Window: window}, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}
