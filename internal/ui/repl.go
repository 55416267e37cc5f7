package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"taskpilot/internal/chat"
	"taskpilot/internal/client"
	"taskpilot/internal/commands"
	"taskpilot/internal/config"
	"taskpilot/internal/logging"
	"taskpilot/internal/tools"
)

// Options configures a REPL.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Config *config.Config
	// ConfigPath is where /settings saves. Empty means the default location.
	ConfigPath string
	Session    *chat.Session
	Controller *chat.Controller
	Dispatcher *tools.Dispatcher
	Renderer   *Renderer
	Version    string
	// ClientErr is shown once at startup when the model is not configured.
	ClientErr error
}

// REPL is the line-oriented interactive session.
type REPL struct {
	opts    Options
	handler *commands.Handler
}

// NewREPL creates a REPL. Nil In and Out default to stdin and stdout.
func NewREPL(opts Options) *REPL {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &REPL{opts: opts, handler: commands.NewHandler()}
}

func (r *REPL) GetSession() *chat.Session        { return r.opts.Session }
func (r *REPL) GetDispatcher() *tools.Dispatcher { return r.opts.Dispatcher }
func (r *REPL) GetConfig() *config.Config        { return r.opts.Config }
func (r *REPL) GetVersion() string               { return r.opts.Version }
func (r *REPL) ClearConversation()               { r.opts.Session.Clear() }
func (r *REPL) GetController() *chat.Controller  { return r.opts.Controller }

// SaveConfig writes the configuration to ConfigPath, or the default path.
func (r *REPL) SaveConfig() error {
	if r.opts.ConfigPath == "" {
		return r.opts.Config.Save()
	}
	return r.opts.Config.SaveTo(r.opts.ConfigPath)
}

// SubmitPrompt runs a chat turn and renders the result.
func (r *REPL) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	res, err := r.opts.Controller.Submit(ctx, r.opts.Session, prompt)
	if err != nil {
		return "", err
	}
	return r.opts.Renderer.Turn(res), nil
}

// RunTask runs a suggested task or quick action and renders the result.
func (r *REPL) RunTask(ctx context.Context, id string) (string, error) {
	res, err := r.opts.Controller.RunTask(ctx, r.opts.Session, id)
	if err != nil {
		return "", err
	}
	return r.opts.Renderer.Turn(res), nil
}

func (r *REPL) println(s string) {
	fmt.Fprintln(r.opts.Out, s)
}

// Run reads lines until EOF, /quit or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	rd := r.opts.Renderer
	r.println(rd.Banner(r.opts.Session.Profile(), r.opts.Version))
	if r.opts.ClientErr != nil {
		r.println(rd.Warning(r.opts.ClientErr.Error()))
	}

	scanner := bufio.NewScanner(r.opts.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.opts.Out, "\n"+rd.Prompt(r.opts.Session.Profile()))
		if !scanner.Scan() {
			fmt.Fprintln(r.opts.Out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := r.handleLine(ctx, line); err != nil {
			if errors.Is(err, commands.ErrQuit) {
				return nil
			}
			r.println(r.describeError(err))
		}
	}
}

// handleLine runs one command or chat turn. Ctrl-C cancels it without
// leaving the REPL.
func (r *REPL) handleLine(ctx context.Context, line string) error {
	lineCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var out string
	var err error
	if name, args, ok := r.handler.Parse(line); ok {
		logging.Debug("slash command", "name", name, "args", args)
		out, err = r.handler.Execute(lineCtx, name, args, r)
		if err == nil && out != "" && name != "run" && name != "prompt" {
			out = r.opts.Renderer.Markdown(out)
		}
	} else {
		out, err = r.SubmitPrompt(lineCtx, line)
	}
	if err != nil {
		return err
	}
	if out != "" {
		r.println(out)
	}
	return nil
}

func (r *REPL) describeError(err error) string {
	rd := r.opts.Renderer
	switch {
	case errors.Is(err, client.ErrNotConfigured):
		// The client may be missing for a reason other than credentials.
		if ce := r.opts.ClientErr; ce != nil && !errors.Is(ce, client.ErrNotConfigured) {
			return rd.Error("AI client unavailable: " + ce.Error())
		}
		return rd.Warning("AI client is not configured. Set AZURE_OPENAI_API_KEY (or api.api_key in the config file) and restart.")
	case errors.Is(err, context.Canceled):
		return rd.Warning("Cancelled.")
	default:
		return rd.Error(err.Error())
	}
}
