package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"taskpilot/internal/config"
	"taskpilot/internal/logging"
	"taskpilot/internal/tools"
)

// Manager owns the configured servers of one session. Tool discovery reads
// the static catalog; connectivity is a single TCP probe at connect time.
type Manager struct {
	catalog *tools.Catalog
	prober  Prober
	servers map[string]*ServerConnection
	mu      sync.RWMutex
}

// NewManager creates a manager with the given servers added, all disconnected.
func NewManager(catalog *tools.Catalog, prober Prober, servers []config.MCPServerConfig) *Manager {
	m := &Manager{
		catalog: catalog,
		prober:  prober,
		servers: make(map[string]*ServerConnection),
	}
	for _, cfg := range servers {
		m.Add(cfg)
	}
	return m
}

// Add registers a server in the disconnected state. An existing server with
// the same name is replaced, dropping its tools.
func (m *Manager) Add(cfg config.MCPServerConfig) {
	provider := cfg.Provider
	if provider == "" {
		provider = normalizeProvider(cfg.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.servers[cfg.Name] = &ServerConnection{
		Name:        cfg.Name,
		Provider:    tools.ProviderID(provider),
		Host:        cfg.Host,
		Port:        cfg.Port,
		Description: cfg.Description,
		Category:    cfg.Category,
		Status:      StatusDisconnected,
	}
	logging.Debug("MCP server added", "name", cfg.Name, "host", cfg.Host, "port", cfg.Port)
}

// Remove deletes a server and its tools. It reports whether the server existed.
func (m *Manager) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.servers[name]; !ok {
		return false
	}
	delete(m.servers, name)
	logging.Info("MCP server removed", "name", name)
	return true
}

// Connect probes the server and, when reachable, attaches the provider's tools.
// Connecting an already connected server re-probes and replaces its tool list.
func (m *Manager) Connect(ctx context.Context, name string) (string, error) {
	m.mu.RLock()
	srv, ok := m.servers[name]
	var host string
	var port int
	if ok {
		host, port = srv.Host, srv.Port
	}
	m.mu.RUnlock()

	if !ok {
		return "", ErrServerNotFound
	}

	// Probe without holding the lock; it can block for the full timeout.
	if !m.prober.Probe(ctx, host, port) {
		logging.Warn("MCP server unreachable", "name", name, "host", host, "port", port)
		return "", ErrConnectionFailed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	srv, ok = m.servers[name]
	if !ok {
		return "", ErrServerNotFound
	}
	srv.Tools = m.catalog.Descriptors(srv.Provider)
	srv.Status = StatusConnected

	logging.Info("MCP server connected", "name", name, "provider", srv.Provider, "tools", len(srv.Tools))
	return fmt.Sprintf("Connected successfully. Found %d tools.", len(srv.Tools)), nil
}

// Disconnect marks the server disconnected and drops its tools.
func (m *Manager) Disconnect(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	srv, ok := m.servers[name]
	if !ok {
		return "", ErrServerNotFound
	}
	srv.Status = StatusDisconnected
	srv.Tools = nil

	logging.Info("MCP server disconnected", "name", name)
	return "Disconnected successfully", nil
}

// ConnectAll connects every server in name order and joins the failures.
func (m *Manager) ConnectAll(ctx context.Context) error {
	var errs []error
	for _, name := range m.Names() {
		if _, err := m.Connect(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Names returns the configured server names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a copy of the named server.
func (m *Manager) Get(name string) (ServerConnection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	srv, ok := m.servers[name]
	if !ok {
		return ServerConnection{}, false
	}
	return srv.clone(), true
}

// List returns copies of all servers in name order.
func (m *Manager) List() []ServerConnection {
	names := m.Names()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ServerConnection, 0, len(names))
	for _, name := range names {
		if srv, ok := m.servers[name]; ok {
			out = append(out, srv.clone())
		}
	}
	return out
}

// AvailableTools returns the tools of connected servers, in server name order.
func (m *Manager) AvailableTools() []ToolSet {
	var sets []ToolSet
	for _, srv := range m.List() {
		if !srv.Connected() {
			continue
		}
		sets = append(sets, ToolSet{Server: srv.Name, Provider: srv.Provider, Tools: srv.Tools})
	}
	return sets
}

// Status returns the summary view of every server keyed by name.
func (m *Manager) Status() map[string]ServerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]ServerStatus, len(m.servers))
	for name, srv := range m.servers {
		status[name] = ServerStatus{
			Connected:  srv.Connected(),
			Host:       srv.Host,
			Port:       srv.Port,
			ToolsCount: len(srv.Tools),
		}
	}
	return status
}

// normalizeProvider derives a provider id from a server name,
// e.g. "Web Search" becomes "web_search".
func normalizeProvider(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
