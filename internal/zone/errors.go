package zone

import "errors"

var (
	// ErrConfigurationMissing means no layout resolves for a screen.
	ErrConfigurationMissing = errors.New("no layout configured")
	ErrUnknownZone          = errors.New("unknown zone")
	ErrInvalidTile          = errors.New("invalid tile index")
	ErrWindowNotAssigned    = errors.New("window not assigned to zone")
	ErrNoTiles              = errors.New("zone has no tiles")
	// ErrStaleWindow means the window disappeared between lookup and action.
	ErrStaleWindow = errors.New("window no longer exists")
)
