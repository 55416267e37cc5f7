package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"taskpilot/internal/client"
	"taskpilot/internal/logging"
	"taskpilot/internal/mcp"
	"taskpilot/internal/profile"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer logging.Close()

			if rt.clientErr != nil {
				return rt.clientErr
			}

			res, err := rt.controller.Submit(ctx, rt.session, strings.Join(args, " "))
			if err != nil {
				if errors.Is(err, client.ErrNotConfigured) {
					return rt.clientErr
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.renderer.Turn(res))
			return nil
		},
	}
}

func newToolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tool <provider> <operation> [json-args]",
		Short: "Run one tool operation directly",
		Long: `Run a provider operation without the model, for example:

  taskpilot tool git git_status
  taskpilot tool filesystem read_file '{"path":"README.md"}'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer logging.Close()

			toolArgs := map[string]any{}
			if len(args) == 3 {
				if err := json.Unmarshal([]byte(args[2]), &toolArgs); err != nil {
					return fmt.Errorf("invalid JSON arguments: %w", err)
				}
			}

			res := rt.dispatcher.Execute(cmd.Context(), args[0], args[1], toolArgs)
			fmt.Fprintln(cmd.OutOrStdout(), rt.renderer.Result(args[1], toolArgs, res))
			if !res.Success() {
				return errors.New(res.Summary())
			}
			return nil
		},
	}
}

func newServersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Probe the configured MCP servers and show their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer logging.Close()

			if err := rt.servers.ConnectAll(cmd.Context()); err != nil {
				logging.Debug("probe failures", "error", err)
			}

			status := rt.servers.Status()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			for _, name := range rt.servers.Names() {
				st := status[name]
				icon, state := "○", mcp.StatusDisconnected
				if st.Connected {
					icon, state = "●", mcp.StatusConnected
				}
				srv, _ := rt.servers.Get(name)
				fmt.Fprintf(out, "%s %-12s %s:%d  %-12s %d tools  %s\n",
					icon, name, st.Host, st.Port, state, st.ToolsCount, srv.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status map as JSON")

	return cmd
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List known users",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, email := range profile.Emails() {
				p, err := profile.Lookup(email)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-28s %-16s %-16s %s\n", p.Email, p.Name, p.Role.Title(), p.Team)
			}
			return nil
		},
	}
}

func newTasksCmd() *cobra.Command {
	var actions bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List suggested tasks for the active user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			email := user
			if email == "" {
				email = cfg.Session.DefaultUser
			}
			p := profile.LookupOrGuest(email)

			list := profile.TasksFor(p)
			if actions {
				list = profile.ActionsFor(p)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n\n", p.Name, p.Role.Title())
			for _, t := range list {
				fmt.Fprintf(out, "%s %-20s %s\n", t.Icon, t.ID, t.Title)
				if t.Description != "" {
					fmt.Fprintf(out, "  %s\n", t.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&actions, "actions", false, "list quick actions instead of tasks")

	return cmd
}

func newPromptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List the canned prompt library",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			n := 1
			for _, cat := range profile.PromptLibrary() {
				fmt.Fprintf(out, "%s\n", cat.Name)
				for _, p := range cat.Prompts {
					fmt.Fprintf(out, "  %2d. %s: %s\n", n, p.Name, p.Description)
					n++
				}
			}
			return nil
		},
	}
}

func newServeDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-demo",
		Short: "Serve the built-in tool providers as MCP servers",
		Long: `Start one streamable HTTP MCP server per configured server, backed by
the built-in tool providers. Useful for exercising connect and call locally.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer logging.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d demo servers. Press Ctrl+C to stop.\n", len(rt.serverConfigs))
			if err := mcp.ServeDemo(ctx, rt.serverConfigs, rt.dispatcher, version); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
