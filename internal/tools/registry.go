package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"taskpilot/internal/logging"
)

type opKey struct {
	provider  ProviderID
	operation string
}

// Dispatcher is the closed registry of {provider × operation} handlers.
// Only operations declared in the catalog can be registered.
type Dispatcher struct {
	catalog  *Catalog
	workDir  string
	handlers map[opKey]Handler
	mu       sync.RWMutex
}

// NewDispatcher creates a dispatcher with every catalog operation registered.
// Relative tool paths resolve against workDir; empty means the process cwd.
func NewDispatcher(catalog *Catalog, workDir string) (*Dispatcher, error) {
	d := &Dispatcher{
		catalog:  catalog,
		workDir:  workDir,
		handlers: make(map[opKey]Handler),
	}

	builtins := []struct {
		provider  ProviderID
		operation string
		handler   Handler
	}{
		{ProviderBuiltin, ShowTicketTool, showLinearTicket},
		{ProviderFilesystem, "read_file", d.readFile},
		{ProviderFilesystem, "write_file", d.writeFile},
		{ProviderFilesystem, "list_directory", d.listDirectory},
		{ProviderGit, "git_status", d.gitStatus},
		{ProviderGit, "git_log", d.gitLog},
		{ProviderGit, "git_branch", d.gitBranch},
		{ProviderWebSearch, "search_web", searchWeb},
		{ProviderWebSearch, "get_webpage_content", getWebpageContent},
		{ProviderSQLite, "execute_query", executeQuery},
		{ProviderSQLite, "list_tables", listTables},
		{ProviderMemory, "create_memory", createMemory},
		{ProviderMemory, "search_memories", searchMemories},
		{ProviderFetch, "fetch_url", fetchURL},
	}
	for _, b := range builtins {
		if err := d.Register(b.provider, b.operation, b.handler); err != nil {
			return nil, err
		}
	}

	if missing := d.Unhandled(); len(missing) > 0 {
		return nil, fmt.Errorf("declared operations without handler: %v", missing)
	}
	return d, nil
}

// Catalog returns the catalog the dispatcher was built from.
func (d *Dispatcher) Catalog() *Catalog {
	return d.catalog
}

// Register binds a handler to a declared operation.
func (d *Dispatcher) Register(provider ProviderID, operation string, h Handler) error {
	if h == nil {
		return fmt.Errorf("register %s/%s: nil handler", provider, operation)
	}
	if !d.catalog.Has(provider) {
		return fmt.Errorf("register %s/%s: unknown provider", provider, operation)
	}
	if _, ok := d.catalog.Lookup(provider, operation); !ok {
		return fmt.Errorf("register %s/%s: operation not declared", provider, operation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := opKey{provider, operation}
	if _, exists := d.handlers[key]; exists {
		return fmt.Errorf("register %s/%s: already registered", provider, operation)
	}
	d.handlers[key] = h
	return nil
}

// Unhandled lists declared operations that have no handler, as provider/operation.
func (d *Dispatcher) Unhandled() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var missing []string
	for _, p := range append(d.catalog.Providers(), ProviderBuiltin) {
		for _, desc := range d.catalog.Descriptors(p) {
			if _, ok := d.handlers[opKey{p, desc.Name}]; !ok {
				missing = append(missing, string(p)+"/"+desc.Name)
			}
		}
	}
	sort.Strings(missing)
	return missing
}

// Execute runs operation on provider. It never returns a Go error: unknown
// pairs yield {success:false, message} and handler failures {success:false, error}.
func (d *Dispatcher) Execute(ctx context.Context, provider, operation string, args map[string]any) Result {
	if args == nil {
		args = map[string]any{}
	}
	key := opKey{ProviderID(provider), operation}

	d.mu.RLock()
	h, ok := d.handlers[key]
	d.mu.RUnlock()
	if !ok {
		logging.Debug("unknown tool", "provider", provider, "operation", operation)
		return NewNotFoundResult(provider, operation)
	}

	// Arguments are best-effort: a schema mismatch is logged, not rejected.
	if desc, ok := d.catalog.Lookup(key.provider, operation); ok {
		if err := desc.Validate(args); err != nil {
			logging.Debug("tool arguments do not match schema",
				"provider", provider, "operation", operation, "error", err)
		}
	}

	start := time.Now()
	res, err := h(ctx, args)
	if err != nil {
		res = NewErrorResult(err.Error())
	}
	if res == nil {
		res = NewErrorResult("operation returned no result")
	}

	logging.Debug("tool dispatched",
		"provider", provider,
		"operation", operation,
		"success", res.Success(),
		"duration", time.Since(start))
	return res
}

// resolvePath makes a relative path relative to the dispatcher's work dir.
func (d *Dispatcher) resolvePath(path string) string {
	if d.workDir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.workDir, path)
}
