package apps

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/stretchr/testify/require"
)

func TestProcessResolver_PrefersAppID(t *testing.T) {
	calls := 0
	r := NewProcessResolver(func(ctx context.Context, pid int) (string, error) {
		calls++
		return "/usr/bin/foo", nil
	})

	require.Equal(t, "Firefox", r.AppName(platform.Window{AppID: "Firefox", PID: 10}))
	require.Equal(t, 0, calls)

	require.Equal(t, "foo", r.AppName(platform.Window{PID: 10}))
	require.Equal(t, 1, calls)
}

func TestProcessResolver_Unknown(t *testing.T) {
	r := NewProcessResolver(func(ctx context.Context, pid int) (string, error) {
		return "", errors.New("gone")
	})
	require.Equal(t, "", r.AppName(platform.Window{}))
	require.Equal(t, "", r.AppName(platform.Window{PID: 99}))
}

func TestProcessResolver_OwnProcess(t *testing.T) {
	r := NewProcessResolver(nil)
	require.NotEmpty(t, r.AppName(platform.Window{PID: os.Getpid()}))
}
