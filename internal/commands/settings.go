package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"taskpilot/internal/config"
)

// Accepted ranges for the chat parameters.
const (
	minTemperature = 0.0
	maxTemperature = 2.0
	minMaxTokens   = 100
	maxMaxTokens   = 4000
)

// SettingsCommand shows the model configuration and adjusts chat parameters.
type SettingsCommand struct{}

func (c *SettingsCommand) Name() string        { return "settings" }
func (c *SettingsCommand) Description() string { return "Show or change model settings" }
func (c *SettingsCommand) Usage() string       { return "/settings [set temperature|max_tokens <value>]" }

func (c *SettingsCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) == 0 {
		return formatSettings(app), nil
	}
	if len(args) != 3 || args[0] != "set" {
		return "", usageError(c)
	}

	cfg := app.GetConfig()
	controller := app.GetController()
	model := controller.ModelSettings()

	switch strings.ToLower(args[1]) {
	case "temperature":
		v, err := strconv.ParseFloat(args[2], 32)
		if err != nil || v < minTemperature || v > maxTemperature {
			return "", fmt.Errorf("temperature must be between %.1f and %.1f", minTemperature, maxTemperature)
		}
		model.Temperature = float32(v)
	case "max_tokens", "max-tokens":
		v, err := strconv.Atoi(args[2])
		if err != nil || v < minMaxTokens || v > maxMaxTokens {
			return "", fmt.Errorf("max_tokens must be between %d and %d", minMaxTokens, maxMaxTokens)
		}
		model.MaxTokens = int32(v)
	default:
		return "", fmt.Errorf("unknown setting %q (want temperature or max_tokens)", args[1])
	}

	controller.SetModelSettings(model)
	cfg.Model.Temperature = model.Temperature
	cfg.Model.MaxTokens = model.MaxTokens

	if err := app.SaveConfig(); err != nil {
		return "", fmt.Errorf("applied to this session but not saved: %w", err)
	}
	return fmt.Sprintf("Saved. Temperature %.1f, max tokens %d.", model.Temperature, model.MaxTokens), nil
}

func formatSettings(app AppInterface) string {
	cfg := app.GetConfig()
	controller := app.GetController()
	model := controller.ModelSettings()

	var sb strings.Builder
	sb.WriteString("## Settings\n\n")
	fmt.Fprintf(&sb, "- **Provider:** %s\n", cfg.API.Provider)
	if cfg.API.Provider == config.ProviderAzure {
		fmt.Fprintf(&sb, "- **Deployment:** %s\n", orNone(cfg.Deployment()))
	} else {
		fmt.Fprintf(&sb, "- **Model:** %s\n", orNone(cfg.Model.Name))
	}

	if controller.Configured() {
		name, clientModel := controller.ClientName()
		fmt.Fprintf(&sb, "- **Status:** ✅ Configured (%s, %s)\n", name, clientModel)
	} else {
		sb.WriteString("- **Status:** ❌ Not configured\n")
	}
	fmt.Fprintf(&sb, "- **Temperature:** %.1f\n", model.Temperature)
	fmt.Fprintf(&sb, "- **Max tokens:** %d\n", model.MaxTokens)

	if !controller.Configured() {
		sb.WriteString("\nSet these in the environment or in the config file, then restart:\n\n")
		sb.WriteString("```\n")
		sb.WriteString("AZURE_OPENAI_API_KEY=your_api_key_here\n")
		sb.WriteString("AZURE_OPENAI_ENDPOINT=https://your-resource.openai.azure.com/\n")
		fmt.Fprintf(&sb, "AZURE_OPENAI_API_VERSION=%s\n", config.DefaultAzureAPIVersion)
		sb.WriteString("AZURE_OPENAI_DEPLOYMENT_NAME=your_deployment_name\n")
		sb.WriteString("```\n")
	}

	sb.WriteString("\nChange with `/settings set temperature <0-2>` or `/settings set max_tokens <100-4000>`.\n")
	return sb.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
