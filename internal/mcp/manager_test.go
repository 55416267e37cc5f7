package mcp

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"taskpilot/internal/config"
	"taskpilot/internal/tools"
)

// fakeProber treats every port in up as reachable.
type fakeProber struct {
	mu sync.Mutex
	up map[int]bool
}

func (p *fakeProber) Probe(_ context.Context, _ string, port int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.up[port]
}

func allUp() *fakeProber {
	up := map[int]bool{}
	for _, s := range config.DefaultServers() {
		up[s.Port] = true
	}
	return &fakeProber{up: up}
}

func newTestManager(t testing.TB, prober Prober) *Manager {
	t.Helper()
	catalog, err := tools.LoadCatalog()
	require.NoError(t, err)
	return NewManager(catalog, prober, config.DefaultServers())
}

func toolCount(sets []ToolSet) int {
	n := 0
	for _, s := range sets {
		n += len(s.Tools)
	}
	return n
}

func TestManagerStartsDisconnected(t *testing.T) {
	m := newTestManager(t, allUp())

	assert.Equal(t, []string{"fetch", "filesystem", "git", "memory", "sqlite", "web_search"}, m.Names())
	assert.Empty(t, m.AvailableTools())
	for name, st := range m.Status() {
		assert.False(t, st.Connected, name)
		assert.Zero(t, st.ToolsCount, name)
	}
}

func TestManagerConnect(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, allUp())

	msg, err := m.Connect(ctx, "filesystem")
	require.NoError(t, err)
	assert.Equal(t, "Connected successfully. Found 3 tools.", msg)

	srv, ok := m.Get("filesystem")
	require.True(t, ok)
	assert.True(t, srv.Connected())
	assert.Equal(t, 3, m.Status()["filesystem"].ToolsCount)

	_, err = m.Connect(ctx, "nope")
	assert.ErrorIs(t, err, ErrServerNotFound)
	assert.Equal(t, "Server not found", err.Error())
}

func TestManagerConnectFailureLeavesStateUnchanged(t *testing.T) {
	prober := &fakeProber{up: map[int]bool{}}
	m := newTestManager(t, prober)

	_, err := m.Connect(context.Background(), "git")
	assert.ErrorIs(t, err, ErrConnectionFailed)

	srv, _ := m.Get("git")
	assert.False(t, srv.Connected())
	assert.Empty(t, srv.Tools)
}

func TestManagerDisconnectDropsOnlyThatServer(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, allUp())

	_, err := m.Connect(ctx, "filesystem")
	require.NoError(t, err)
	_, err = m.Connect(ctx, "git")
	require.NoError(t, err)
	assert.Equal(t, 6, toolCount(m.AvailableTools()))

	msg, err := m.Disconnect("git")
	require.NoError(t, err)
	assert.Equal(t, "Disconnected successfully", msg)

	sets := m.AvailableTools()
	require.Len(t, sets, 1)
	assert.Equal(t, "filesystem", sets[0].Server)
	assert.Len(t, sets[0].Tools, 3)

	_, err = m.Disconnect("nope")
	assert.ErrorIs(t, err, ErrServerNotFound)
}

func TestManagerReconnectDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, allUp())

	for i := 0; i < 3; i++ {
		_, err := m.Connect(ctx, "sqlite")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, toolCount(m.AvailableTools()))
}

func TestManagerAddAndRemove(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeProber{up: map[int]bool{9000: true, 9001: true}})

	m.Add(config.MCPServerConfig{Name: "Web Search", Host: "localhost", Port: 9000})
	msg, err := m.Connect(ctx, "Web Search")
	require.NoError(t, err)
	assert.Equal(t, "Connected successfully. Found 2 tools.", msg)

	// Unknown providers connect with no tools.
	m.Add(config.MCPServerConfig{Name: "custom", Host: "localhost", Port: 9001})
	msg, err = m.Connect(ctx, "custom")
	require.NoError(t, err)
	assert.Equal(t, "Connected successfully. Found 0 tools.", msg)

	// Re-adding replaces the entry and drops its tools.
	m.Add(config.MCPServerConfig{Name: "Web Search", Host: "localhost", Port: 9000})
	srv, _ := m.Get("Web Search")
	assert.False(t, srv.Connected())

	assert.True(t, m.Remove("custom"))
	assert.False(t, m.Remove("custom"))
	_, ok := m.Get("custom")
	assert.False(t, ok)
}

func TestManagerConnectAll(t *testing.T) {
	prober := allUp()
	prober.up[3002] = false
	m := newTestManager(t, prober)

	err := m.ConnectAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Contains(t, err.Error(), "git")

	// 13 catalog tools minus git's three.
	assert.Equal(t, 10, toolCount(m.AvailableTools()))
}

func TestManagerToolsMatchConnectedServers(t *testing.T) {
	catalog, err := tools.LoadCatalog()
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		m := NewManager(catalog, allUp(), config.DefaultServers())
		names := m.Names()

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			name := rapid.SampledFrom(names).Draw(t, "server")
			if rapid.Bool().Draw(t, "connect") {
				if _, err := m.Connect(context.Background(), name); err != nil {
					t.Fatalf("connect %s: %v", name, err)
				}
			} else if _, err := m.Disconnect(name); err != nil {
				t.Fatalf("disconnect %s: %v", name, err)
			}
		}

		want := 0
		for _, srv := range m.List() {
			if srv.Connected() {
				want += len(catalog.Descriptors(srv.Provider))
			} else if len(srv.Tools) != 0 {
				t.Fatalf("disconnected server %s still has %d tools", srv.Name, len(srv.Tools))
			}
		}
		if got := toolCount(m.AvailableTools()); got != want {
			t.Fatalf("available tools = %d, want %d", got, want)
		}
	})
}

func TestTCPProber(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p := TCPProber{Timeout: time.Second}
	assert.True(t, p.Probe(context.Background(), "127.0.0.1", port))

	require.NoError(t, ln.Close())
	assert.False(t, p.Probe(context.Background(), "127.0.0.1", port),
		"closed port "+strconv.Itoa(port)+" should be unreachable")
}
