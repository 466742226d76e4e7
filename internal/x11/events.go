package x11

import (
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ClientCallbacks receives lifecycle notifications for managed windows.
// Callbacks run on the X event loop goroutine.
type ClientCallbacks struct {
	Created        func(xproto.Window)
	Configured     func(xproto.Window)
	Destroyed      func(xproto.Window)
	ScreensChanged func()
}

// ClientWatcher tracks _NET_CLIENT_LIST and per-client ConfigureNotify.
type ClientWatcher struct {
	conn  *Connection
	cb    ClientCallbacks
	mu    sync.Mutex
	known map[xproto.Window]struct{}
}

// WatchClients starts delivering client events. Windows that already exist
// are watched for geometry changes but not reported as created.
func (c *Connection) WatchClients(cb ClientCallbacks) (*ClientWatcher, error) {
	w := &ClientWatcher{
		conn:  c,
		cb:    cb,
		known: make(map[xproto.Window]struct{}),
	}

	clients, err := c.GetClientList()
	if err != nil {
		clients = nil
	}
	for _, win := range clients {
		w.attach(win)
	}

	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return nil, err
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil || name != "_NET_CLIENT_LIST" {
			return
		}
		w.syncClientList()
	}).Connect(c.XUtil, c.Root)

	if cb.ScreensChanged != nil {
		if err := c.SelectScreenChanges(); err == nil {
			xevent.HookFun(func(xu *xgbutil.XUtil, event interface{}) bool {
				switch event.(type) {
				case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
					cb.ScreensChanged()
				}
				return true
			}).Connect(c.XUtil)
		}
	}

	return w, nil
}

func (w *ClientWatcher) syncClientList() {
	clients, err := w.conn.GetClientList()
	if err != nil {
		return
	}

	current := make(map[xproto.Window]struct{}, len(clients))
	var created []xproto.Window
	for _, win := range clients {
		current[win] = struct{}{}
		if w.attach(win) {
			created = append(created, win)
		}
	}

	var destroyed []xproto.Window
	w.mu.Lock()
	for win := range w.known {
		if _, ok := current[win]; !ok {
			delete(w.known, win)
			destroyed = append(destroyed, win)
		}
	}
	w.mu.Unlock()

	for _, win := range destroyed {
		xevent.Detach(w.conn.XUtil, win)
		if w.cb.Destroyed != nil {
			w.cb.Destroyed(win)
		}
	}
	for _, win := range created {
		if w.cb.Created != nil {
			w.cb.Created(win)
		}
	}
}

// attach starts watching win and reports whether it was new.
func (w *ClientWatcher) attach(win xproto.Window) bool {
	w.mu.Lock()
	if _, ok := w.known[win]; ok {
		w.mu.Unlock()
		return false
	}
	w.known[win] = struct{}{}
	w.mu.Unlock()

	if err := xwindow.New(w.conn.XUtil, win).Listen(xproto.EventMaskStructureNotify); err != nil {
		return true
	}
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if w.cb.Configured != nil {
			w.cb.Configured(ev.Window)
		}
	}).Connect(w.conn.XUtil, win)
	return true
}
