package main

import (
	"context"
	"fmt"
	"os"

	"taskpilot/internal/chat"
	"taskpilot/internal/client"
	"taskpilot/internal/config"
	"taskpilot/internal/logging"
	"taskpilot/internal/mcp"
	"taskpilot/internal/profile"
	"taskpilot/internal/tools"
	"taskpilot/internal/ui"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgFile string
	user    string
	debug   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskpilot",
		Short: "Role-aware task assistant backed by MCP tool servers",
		Long: `Taskpilot is a chat assistant that suggests tasks for your role,
talks to Azure OpenAI (or OpenAI, Gemini, Ollama) and shows Linear tickets
inline. MCP servers contribute their tools to every conversation.`,
		SilenceUsage: true,
		RunE:         runREPL,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/taskpilot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&user, "user", "", "email of the active user (default from config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output to stderr")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newToolCmd())
	rootCmd.AddCommand(newServersCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newTasksCmd())
	rootCmd.AddCommand(newPromptsCmd())
	rootCmd.AddCommand(newServeDemoCmd())

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskpilot version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime is everything one invocation needs, wired from the config.
type runtime struct {
	cfg        *config.Config
	dispatcher *tools.Dispatcher
	servers    *mcp.Manager
	// serverConfigs are the configured servers that passed validation.
	serverConfigs []config.MCPServerConfig
	session       *chat.Session
	controller    *chat.Controller
	renderer      *ui.Renderer
	clientErr     error
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Version = version
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	level := logging.ParseLevel(cfg.Logging.Level)
	switch {
	case debug:
		logging.Configure(logging.LevelDebug, os.Stderr, cfg.Logging.JSON)
	case cfg.Logging.ToFile:
		if err := logging.EnableFileLogging(config.ConfigDir(), level); err != nil {
			fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
		}
	}
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)

	workDir := cfg.Tools.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	catalog, err := tools.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load tool catalog: %w", err)
	}
	dispatcher, err := tools.NewDispatcher(catalog, workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	// Bad server entries are skipped so they cannot take the model down with them.
	serverConfigs, err := config.ValidateServers(cfg.MCP.Servers)
	if err != nil {
		logging.Warn("skipping invalid MCP server entries", "error", err)
		fmt.Fprintf(os.Stderr, "warning: skipping invalid MCP server entries:\n%v\n", err)
	}

	servers := mcp.NewManager(catalog, mcp.TCPProber{Timeout: cfg.MCP.ProbeTimeout}, serverConfigs)
	if cfg.MCP.AutoConnect {
		if err := servers.ConnectAll(ctx); err != nil {
			logging.Warn("some MCP servers are unreachable", "error", err)
		}
	}

	email := user
	if email == "" {
		email = cfg.Session.DefaultUser
	}
	session := chat.NewSession(profile.LookupOrGuest(email), servers)

	// A missing client is not fatal: the REPL still serves commands and
	// explains how to configure the model on the first chat message.
	c, clientErr := client.New(ctx, cfg)
	if clientErr != nil {
		logging.Warn("AI client unavailable", "error", clientErr)
	}

	renderer, err := ui.NewRenderer(cfg.UI)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return &runtime{
		cfg:           cfg,
		dispatcher:    dispatcher,
		servers:       servers,
		serverConfigs: serverConfigs,
		session:       session,
		controller:    chat.NewController(c, dispatcher, cfg.Model),
		renderer:      renderer,
		clientErr:     clientErr,
	}, nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer logging.Close()

	repl := ui.NewREPL(ui.Options{
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
		Config:     rt.cfg,
		ConfigPath: cfgFile,
		Session:    rt.session,
		Controller: rt.controller,
		Dispatcher: rt.dispatcher,
		Renderer:   rt.renderer,
		Version:    version,
		ClientErr:  rt.clientErr,
	})
	return repl.Run(ctx)
}
