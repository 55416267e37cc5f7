package mcp

import (
	"errors"

	"taskpilot/internal/tools"
)

// Status is the connection state of a configured server.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Connection errors. Their text is what the user sees.
var (
	ErrServerNotFound   = errors.New("Server not found")
	ErrConnectionFailed = errors.New("Connection failed")
)

// ServerConnection is one configured MCP server. Tools is only populated
// while Status is connected.
type ServerConnection struct {
	Name        string
	Provider    tools.ProviderID
	Host        string
	Port        int
	Description string
	Category    string
	Status      Status
	Tools       []*tools.Descriptor
}

// Connected reports whether the server is connected.
func (s ServerConnection) Connected() bool {
	return s.Status == StatusConnected
}

func (s *ServerConnection) clone() ServerConnection {
	c := *s
	c.Tools = append([]*tools.Descriptor(nil), s.Tools...)
	return c
}

// ToolSet is the tools advertised by one connected server.
type ToolSet struct {
	Server   string
	Provider tools.ProviderID
	Tools    []*tools.Descriptor
}

// ServerStatus is the summary view of one server.
type ServerStatus struct {
	Connected  bool   `json:"connected"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	ToolsCount int    `json:"tools_count"`
}
