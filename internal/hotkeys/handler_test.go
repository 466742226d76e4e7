package hotkeys

import (
	"testing"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/stretchr/testify/require"
)

func TestBindings_FromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Layouts = map[string]config.Layout{
		config.DefaultLayoutName: {Zones: []config.ZoneSpec{
			{Key: "1"},
			{Key: "web", Hotkey: "w"},
		}},
	}

	got := Bindings(cfg)
	require.Equal(t, []Binding{
		{Keys: "Mod4-Mod1-1", Action: ActionCycle, Zone: "1"},
		{Keys: "Mod4-Mod1-Shift-1", Action: ActionFocus, Zone: "1"},
		{Keys: "Mod4-Mod1-Shift-w", Action: ActionFocus, Zone: "web"},
		{Keys: "Mod4-Mod1-m", Action: ActionRemember},
		{Keys: "Mod4-Mod1-u", Action: ActionUnassign},
		{Keys: "Mod4-Mod1-w", Action: ActionCycle, Zone: "web"},
	}, got)
}

func TestBindings_OptionalHotkeys(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RememberHotkey = ""
	cfg.UnassignHotkey = ""
	cfg.CycleModifier = "Mod4-"
	cfg.Layouts = map[string]config.Layout{
		config.DefaultLayoutName: {Zones: []config.ZoneSpec{{Key: "3"}}},
	}
	got := Bindings(cfg)
	require.Len(t, got, 2)
	require.Equal(t, "Mod4-3", got[0].Keys)
}

type recordingActions struct {
	calls []string
}

func (r *recordingActions) CycleOrAssign(z string) { r.calls = append(r.calls, "cycle:"+z) }
func (r *recordingActions) FocusNext(z string) { r.calls = append(r.calls, "focus:"+z) }
func (r *recordingActions) RememberActive() { r.calls = append(r.calls, "remember") }
func (r *recordingActions) UnassignActive() { r.calls = append(r.calls, "unassign") }

func TestHandler_CallbackRouting(t *testing.T) {
	actions := &recordingActions{}
	h := &Handler{actions: actions}
	for _, b := range []Binding{
		{Action: ActionCycle, Zone: "1"},
		{Action: ActionFocus, Zone: "2"},
		{Action: ActionRemember},
		{Action: ActionUnassign},
	} {
		h.callback(b)()
	}
	require.Equal(t, []string{"cycle:1", "focus:2", "remember", "unassign"}, actions.calls)
}
