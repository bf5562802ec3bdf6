// Package inhibit keeps the desktop session from suspending while music
// plays, through the GNOME SessionManager D-Bus API.
package inhibit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	sessionManagerDest = "org.gnome.SessionManager"
	sessionManagerPath = dbus.ObjectPath("/org/gnome/SessionManager")
	inhibitMethod      = sessionManagerDest + ".Inhibit"
	uninhibitMethod    = sessionManagerDest + ".Uninhibit"

	appID  = "segue"
	reason = "Playing music"

	// flagSuspend inhibits suspending the session or computer.
	flagSuspend uint32 = 4
)

// caller is the subset of dbus.BusObject used here.
type caller interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Inhibitor holds at most one suspend inhibition at a time.
type Inhibitor struct {
	obj    caller
	conn   *dbus.Conn
	logger *zap.Logger

	mu     sync.Mutex
	cookie uint32
	held   bool
}

// New connects to the session bus. It fails when no session bus is
// available; callers are expected to carry on without inhibiting.
func New(logger *zap.Logger) (*Inhibitor, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	inh := newInhibitor(conn.Object(sessionManagerDest, sessionManagerPath), logger)
	inh.conn = conn
	return inh, nil
}

func newInhibitor(obj caller, logger *zap.Logger) *Inhibitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inhibitor{obj: obj, logger: logger}
}

// Acquire inhibits suspend. It is a no-op while an inhibition is held.
func (i *Inhibitor) Acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.held {
		return nil
	}

	var cookie uint32
	err := i.obj.Call(inhibitMethod, 0, appID, uint32(0), reason, flagSuspend).Store(&cookie)
	if err != nil {
		return fmt.Errorf("inhibit suspend: %w", err)
	}
	i.cookie = cookie
	i.held = true
	i.logger.Debug("suspend inhibited", zap.Uint32("cookie", cookie))
	return nil
}

// Release lifts the inhibition. It is a no-op when none is held.
func (i *Inhibitor) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.held {
		return nil
	}

	i.held = false
	if err := i.obj.Call(uninhibitMethod, 0, i.cookie).Err; err != nil {
		return fmt.Errorf("uninhibit suspend: %w", err)
	}
	i.logger.Debug("suspend released", zap.Uint32("cookie", i.cookie))
	return nil
}

// Held reports whether an inhibition is active.
func (i *Inhibitor) Held() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.held
}

// Close releases any inhibition and closes the bus connection.
func (i *Inhibitor) Close() error {
	err := i.Release()
	if i.conn != nil {
		err = errors.Join(err, i.conn.Close())
	}
	return err
}
