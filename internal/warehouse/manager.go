package warehouse

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoActiveConnection is returned when a warehouse operation is
// attempted before any connection has been initialized.
var ErrNoActiveConnection = errors.New("no warehouse connection initialized")

// Manager holds named open warehouse connections and tracks which one
// is active. Initializing a connection that is already open just makes
// it active again instead of reopening it.
type Manager struct {
	mu     sync.Mutex
	conns  map[string]Warehouse
	active string
}

// NewManager creates an empty connection manager.
func NewManager() *Manager {
	return &Manager{conns: make(map[string]Warehouse)}
}

// Connect opens (or reuses) the named connection and makes it active.
func (m *Manager) Connect(name, engineType, dsn string) (Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if wh, ok := m.conns[name]; ok {
		m.active = name
		return wh, nil
	}

	wh, err := Open(engineType, dsn)
	if err != nil {
		return nil, fmt.Errorf("initializing connection %q: %w", name, err)
	}
	m.conns[name] = wh
	m.active = name
	return wh, nil
}

// Active returns the currently active warehouse connection.
func (m *Manager) Active() (Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" {
		return nil, ErrNoActiveConnection
	}
	return m.conns[m.active], nil
}

// ActiveName returns the name of the active connection, if any.
func (m *Manager) ActiveName() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != ""
}

// CloseAll closes every open connection. The first error is returned
// but all connections are attempted.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, wh := range m.conns {
		if err := wh.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %q: %w", name, err)
		}
		delete(m.conns, name)
	}
	m.active = ""
	return firstErr
}
