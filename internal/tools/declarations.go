package tools

import (
	"fmt"
	"sort"
)

// ProviderID names a tool provider. Each MCP server maps to one provider.
type ProviderID string

const (
	ProviderBuiltin    ProviderID = "builtin"
	ProviderFilesystem ProviderID = "filesystem"
	ProviderGit        ProviderID = "git"
	ProviderWebSearch  ProviderID = "web_search"
	ProviderSQLite     ProviderID = "sqlite"
	ProviderMemory     ProviderID = "memory"
	ProviderFetch      ProviderID = "fetch"
)

// ShowTicketTool is the single built-in, UI-only tool.
const ShowTicketTool = "show_linear_ticket"

// Catalog is the resolved, immutable set of tool declarations per provider.
type Catalog struct {
	providers map[ProviderID][]*Descriptor
}

func catalogDeclarations() map[ProviderID][]*Descriptor {
	return map[ProviderID][]*Descriptor{
		ProviderBuiltin: {
			{Name: ShowTicketTool, Description: "Displays a Linear ticket in the UI with its details", Params: []Param{
				{Name: "title", Type: TypeString, Description: "The title of the ticket", Required: true},
				{Name: "status", Type: TypeString, Description: "The status of the ticket", Required: true},
				{Name: "assignee", Type: TypeString, Description: "The person assigned to the ticket", Required: true},
				{Name: "deadline", Type: TypeString, Description: "The deadline for the ticket", Required: true},
				{Name: "tags", Type: TypeArray, Items: TypeString, Description: "Tags associated with the ticket", Required: true},
			}},
		},
		ProviderFilesystem: {
			{Name: "read_file", Description: "Read contents of a file", Params: []Param{
				{Name: "path", Type: TypeString, Description: "Path to the file", Required: true},
			}},
			{Name: "write_file", Description: "Write content to a file", Params: []Param{
				{Name: "path", Type: TypeString, Description: "Path to the file", Required: true},
				{Name: "content", Type: TypeString, Description: "Content to write", Required: true},
			}},
			{Name: "list_directory", Description: "List contents of a directory", Params: []Param{
				{Name: "path", Type: TypeString, Description: "Path to the directory", Required: true},
				{Name: "pattern", Type: TypeString, Description: "Optional glob filter, e.g. *.go"},
			}},
		},
		ProviderGit: {
			{Name: "git_status", Description: "Get git repository status", Params: []Param{
				{Name: "path", Type: TypeString, Description: "Repository path"},
			}},
			{Name: "git_log", Description: "Get git commit history", Params: []Param{
				{Name: "path", Type: TypeString, Description: "Repository path", Required: true},
				{Name: "limit", Type: TypeInteger, Description: "Number of commits to show"},
			}},
			{Name: "git_branch", Description: "List git branches", Params: []Param{
				{Name: "path", Type: TypeString, Description: "Repository path"},
			}},
		},
		ProviderWebSearch: {
			{Name: "search_web", Description: "Search the web for information", Params: []Param{
				{Name: "query", Type: TypeString, Description: "Search query", Required: true},
				{Name: "max_results", Type: TypeInteger, Description: "Maximum number of results"},
			}},
			{Name: "get_webpage_content", Description: "Get content from a webpage", Params: []Param{
				{Name: "url", Type: TypeString, Description: "URL to fetch", Required: true},
			}},
		},
		ProviderSQLite: {
			{Name: "execute_query", Description: "Execute SQL query", Params: []Param{
				{Name: "query", Type: TypeString, Description: "SQL query to execute", Required: true},
				{Name: "database", Type: TypeString, Description: "Database file path", Required: true},
			}},
			{Name: "list_tables", Description: "List all tables in database", Params: []Param{
				{Name: "database", Type: TypeString, Description: "Database file path", Required: true},
			}},
		},
		ProviderMemory: {
			{Name: "create_memory", Description: "Create a new memory", Params: []Param{
				{Name: "content", Type: TypeString, Description: "Memory content", Required: true},
				{Name: "tags", Type: TypeArray, Items: TypeString, Description: "Memory tags"},
			}},
			{Name: "search_memories", Description: "Search existing memories", Params: []Param{
				{Name: "query", Type: TypeString, Description: "Search query", Required: true},
			}},
		},
		ProviderFetch: {
			{Name: "fetch_url", Description: "Fetch content from URL", Params: []Param{
				{Name: "url", Type: TypeString, Description: "URL to fetch", Required: true},
				{Name: "method", Type: TypeString, Description: "HTTP method"},
			}},
		},
	}
}

// LoadCatalog builds and resolves every declaration. An error here is a
// programming mistake in the static tables.
func LoadCatalog() (*Catalog, error) {
	decls := catalogDeclarations()
	for provider, list := range decls {
		names := make(map[string]bool, len(list))
		for _, d := range list {
			if names[d.Name] {
				return nil, fmt.Errorf("provider %s: duplicate operation %q", provider, d.Name)
			}
			names[d.Name] = true
			if err := d.Resolve(); err != nil {
				return nil, fmt.Errorf("provider %s: %w", provider, err)
			}
		}
	}
	return &Catalog{providers: decls}, nil
}

// Providers returns the MCP providers in sorted order. The built-in provider is excluded.
func (c *Catalog) Providers() []ProviderID {
	out := make([]ProviderID, 0, len(c.providers))
	for p := range c.providers {
		if p != ProviderBuiltin {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether provider is part of the catalog.
func (c *Catalog) Has(provider ProviderID) bool {
	_, ok := c.providers[provider]
	return ok
}

// Descriptors returns the declarations of provider. Unknown providers have none.
func (c *Catalog) Descriptors(provider ProviderID) []*Descriptor {
	return append([]*Descriptor(nil), c.providers[provider]...)
}

// Builtin returns the built-in tool declarations.
func (c *Catalog) Builtin() []*Descriptor {
	return c.Descriptors(ProviderBuiltin)
}

// Lookup returns the declaration of operation under provider.
func (c *Catalog) Lookup(provider ProviderID, operation string) (*Descriptor, bool) {
	for _, d := range c.providers[provider] {
		if d.Name == operation {
			return d, true
		}
	}
	return nil, false
}
