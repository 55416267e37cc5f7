package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"taskpilot/internal/config"
	"taskpilot/internal/logging"
	"taskpilot/internal/tools"
)

// NewDemoServer builds an MCP server exposing one provider's catalog
// operations, each backed by the dispatcher.
func NewDemoServer(provider tools.ProviderID, d *tools.Dispatcher, version string) (*mcpsdk.Server, error) {
	descs := d.Catalog().Descriptors(provider)
	if len(descs) == 0 {
		return nil, fmt.Errorf("provider %q has no tools", provider)
	}

	srv := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "taskpilot-" + string(provider),
		Version: version,
	}, &mcpsdk.ServerOptions{
		Logger: logging.Component("mcp-demo"),
	})

	for _, desc := range descs {
		srv.AddTool(&mcpsdk.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: desc.Schema(),
		}, demoHandler(d, provider, desc.Name))
	}
	return srv, nil
}

func demoHandler(d *tools.Dispatcher, provider tools.ProviderID, operation string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		args := map[string]any{}
		if raw := req.Params.Arguments; len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode arguments: %w", err)
			}
		}

		res := d.Execute(ctx, string(provider), operation, args)
		body, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(body)}},
			IsError: !res.Success(),
		}, nil
	}
}

// ServeDemo runs one streamable HTTP MCP server per configured server whose
// provider has catalog tools. It blocks until ctx is cancelled or a listener fails.
func ServeDemo(ctx context.Context, servers []config.MCPServerConfig, d *tools.Dispatcher, version string) error {
	g, ctx := errgroup.WithContext(ctx)

	started := 0
	for _, cfg := range servers {
		provider := tools.ProviderID(cfg.Provider)
		if provider == "" {
			provider = tools.ProviderID(normalizeProvider(cfg.Name))
		}
		srv, err := NewDemoServer(provider, d, version)
		if err != nil {
			logging.Warn("skipping demo server", "name", cfg.Name, "error", err)
			continue
		}

		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		httpSrv := &http.Server{
			Addr: addr,
			Handler: mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
				return srv
			}, nil),
			ReadHeaderTimeout: 10 * time.Second,
		}
		name := cfg.Name
		started++

		g.Go(func() error {
			logging.Info("demo MCP server listening", "name", name, "provider", provider, "addr", addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	if started == 0 {
		return errors.New("no demo servers to start")
	}
	return g.Wait()
}
