package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v9"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gaianet/mcp-smoke/internal/smoke"
	"github.com/gaianet/mcp-smoke/internal/target"
)

var help = map[string]string{
	"url":               "Base URL of the node under test.",
	"chat-url":          "Chat root used when testing a local node.",
	"embedding-url":     "Embedding root used when testing a local node.",
	"model":             "Model to request (the node default when empty).",
	"api-key":           "Bearer token sent with every request.",
	"health-timeout":    "Timeout for the health check.",
	"discovery-timeout": "Timeout for the MCP discovery check.",
	"chat-timeout":      "Timeout for the chat completion check.",
	"embedding-timeout": "Timeout for the embeddings check.",
	"info-timeout":      "Timeout for the MCP info check.",
	"system-prompt":     "System prompt for the chat check (text or file://path).",
	"prompt":            "User prompt for the chat check (text or file://path).",
	"embedding-input":   "Input for the embeddings check (text or file://path).",
	"info":              "Also fetch the MCP server info.",
	"raw":               "Print the chat reply as raw text when connected to a TTY.",
	"word-wrap":         "Wrap formatted chat replies at this width.",
	"quiet":             "Quiet mode (hide the spinner while a check runs).",
	"verbose":           "Log requests and check timings to stderr.",
	"pushgateway-url":   "Push check results to this Prometheus Pushgateway.",
	"config":            "Path to the settings file.",
	"print-settings":    "Print a settings file with the current values and exit.",
	"help":              "Show help and exit.",
	"version":           "Show version and exit.",
}

// Config holds the run configuration and is mapped to the YAML settings file.
type Config struct {
	URL              string        `yaml:"url" env:"NODE_URL"`
	ChatURL          string        `yaml:"chat-url" env:"MCP_SMOKE_CHAT_URL"`
	EmbeddingURL     string        `yaml:"embedding-url" env:"MCP_SMOKE_EMBEDDING_URL"`
	Model            string        `yaml:"model" env:"MCP_SMOKE_MODEL"`
	APIKey           string        `yaml:"api-key" env:"MCP_SMOKE_API_KEY"`
	HealthTimeout    time.Duration `yaml:"health-timeout" env:"MCP_SMOKE_HEALTH_TIMEOUT"`
	DiscoveryTimeout time.Duration `yaml:"discovery-timeout" env:"MCP_SMOKE_DISCOVERY_TIMEOUT"`
	ChatTimeout      time.Duration `yaml:"chat-timeout" env:"MCP_SMOKE_CHAT_TIMEOUT"`
	EmbeddingTimeout time.Duration `yaml:"embedding-timeout" env:"MCP_SMOKE_EMBEDDING_TIMEOUT"`
	InfoTimeout      time.Duration `yaml:"info-timeout" env:"MCP_SMOKE_INFO_TIMEOUT"`
	SystemPrompt     string        `yaml:"system-prompt" env:"MCP_SMOKE_SYSTEM_PROMPT"`
	Prompt           string        `yaml:"prompt" env:"MCP_SMOKE_PROMPT"`
	EmbeddingInput   string        `yaml:"embedding-input" env:"MCP_SMOKE_EMBEDDING_INPUT"`
	Info             bool          `yaml:"info" env:"MCP_SMOKE_INFO"`
	Raw              bool          `yaml:"raw" env:"MCP_SMOKE_RAW"`
	WordWrap         int           `yaml:"word-wrap" env:"MCP_SMOKE_WORD_WRAP"`
	Quiet            bool          `yaml:"quiet" env:"MCP_SMOKE_QUIET"`
	Verbose          bool          `yaml:"verbose" env:"MCP_SMOKE_VERBOSE"`
	PushgatewayURL   string        `yaml:"pushgateway-url" env:"MCP_SMOKE_PUSHGATEWAY_URL"`
	SettingsPath     string        `yaml:"-"`
	PrintSettings    bool          `yaml:"-"`
}

func defaultConfig() Config {
	timeouts := smoke.DefaultTimeouts()
	return Config{
		URL:              target.DefaultURL,
		ChatURL:          target.DefaultChatURL,
		EmbeddingURL:     target.DefaultEmbeddingURL,
		HealthTimeout:    timeouts.Health,
		DiscoveryTimeout: timeouts.Discovery,
		ChatTimeout:      timeouts.Chat,
		EmbeddingTimeout: timeouts.Embedding,
		InfoTimeout:      timeouts.Info,
		SystemPrompt:     smoke.DefaultSystemPrompt,
		Prompt:           smoke.DefaultUserPrompt,
		EmbeddingInput:   smoke.DefaultEmbeddingInput,
		WordWrap:         80,
	}
}

// loadConfig layers the settings file and the environment over the defaults.
// An empty path means the default settings file, which may not exist.
func loadConfig(path string, environ map[string]string) (Config, error) {
	c := defaultConfig()

	if path == "" {
		// a missing default settings file is not an error
		path, _ = xdg.SearchConfigFile(filepath.Join("mcp-smoke", "settings.yml"))
	}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return c, smokeError{err, "Could not read settings file."}
		}
		if err := yaml.Unmarshal(content, &c); err != nil {
			return c, smokeError{err, "Could not parse settings file."}
		}
		c.SettingsPath = path
	}

	if err := env.ParseWithOptions(&c, env.Options{Environment: environ}); err != nil {
		return c, smokeError{err, "Could not parse environment into settings."}
	}

	// empty values in the settings file keep the defaults
	def := defaultConfig()
	c.URL = orString(c.URL, def.URL)
	c.ChatURL = orString(c.ChatURL, def.ChatURL)
	c.EmbeddingURL = orString(c.EmbeddingURL, def.EmbeddingURL)
	c.SystemPrompt = orString(c.SystemPrompt, def.SystemPrompt)
	c.Prompt = orString(c.Prompt, def.Prompt)
	c.EmbeddingInput = orString(c.EmbeddingInput, def.EmbeddingInput)
	return c, nil
}

// settingsFlag finds --config in args before the full flag set exists, since
// the settings file provides the defaults for every other flag.
func settingsFlag(args []string) string {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

// environMap turns an os.Environ style list into a map.
func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			m[k] = v
		}
	}
	return m
}

func initFlags(flags *flag.FlagSet, c *Config) {
	flags.StringVar(&c.URL, "url", c.URL, help["url"])
	flags.StringVar(&c.ChatURL, "chat-url", c.ChatURL, help["chat-url"])
	flags.StringVar(&c.EmbeddingURL, "embedding-url", c.EmbeddingURL, help["embedding-url"])
	flags.StringVarP(&c.Model, "model", "m", c.Model, help["model"])
	flags.StringVar(&c.APIKey, "api-key", c.APIKey, help["api-key"])
	flags.Var(newDurationFlag(c.HealthTimeout, &c.HealthTimeout), "health-timeout", help["health-timeout"])
	flags.Var(newDurationFlag(c.DiscoveryTimeout, &c.DiscoveryTimeout), "discovery-timeout", help["discovery-timeout"])
	flags.Var(newDurationFlag(c.ChatTimeout, &c.ChatTimeout), "chat-timeout", help["chat-timeout"])
	flags.Var(newDurationFlag(c.EmbeddingTimeout, &c.EmbeddingTimeout), "embedding-timeout", help["embedding-timeout"])
	flags.Var(newDurationFlag(c.InfoTimeout, &c.InfoTimeout), "info-timeout", help["info-timeout"])
	flags.StringVar(&c.SystemPrompt, "system-prompt", c.SystemPrompt, help["system-prompt"])
	flags.StringVarP(&c.Prompt, "prompt", "p", c.Prompt, help["prompt"])
	flags.StringVar(&c.EmbeddingInput, "embedding-input", c.EmbeddingInput, help["embedding-input"])
	flags.BoolVarP(&c.Info, "info", "i", c.Info, help["info"])
	flags.BoolVarP(&c.Raw, "raw", "r", c.Raw, help["raw"])
	flags.IntVar(&c.WordWrap, "word-wrap", c.WordWrap, help["word-wrap"])
	flags.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, help["quiet"])
	flags.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, help["verbose"])
	flags.StringVar(&c.PushgatewayURL, "pushgateway-url", c.PushgatewayURL, help["pushgateway-url"])
	flags.StringVar(&c.SettingsPath, "config", c.SettingsPath, help["config"])
	flags.Lookup("config").DefValue = "$XDG_CONFIG_HOME/mcp-smoke/settings.yml"
	flags.BoolVar(&c.PrintSettings, "print-settings", c.PrintSettings, help["print-settings"])
	flags.SortFlags = false
}

func (c Config) timeouts() smoke.Timeouts {
	return smoke.Timeouts{
		Health:    c.HealthTimeout,
		Discovery: c.DiscoveryTimeout,
		Chat:      c.ChatTimeout,
		Embedding: c.EmbeddingTimeout,
		Info:      c.InfoTimeout,
	}
}

func orString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func useLine() string {
	appName := filepath.Base(os.Args[0])

	if stdoutRenderer().ColorProfile() == termenv.TrueColor {
		appName = makeGradientText(stdoutStyles().AppName, appName)
	}

	return fmt.Sprintf(
		"%s %s",
		appName,
		stdoutStyles().CliArgs.Render("[OPTIONS] [URL]"),
	)
}

func usageFunc(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Smoke test the MCP endpoints of a GaiaNet node.\n\n")
	fmt.Fprintf(out,
		"Usage:\n  %s\n\n",
		useLine(),
	)
	fmt.Fprintln(out, "Options:")
	cmd.Flags().VisitAll(func(f *flag.Flag) {
		if f.Hidden {
			return
		}
		if f.Shorthand == "" {
			fmt.Fprintf(out,
				"  %-44s %s\n",
				stdoutStyles().Flag.Render("--"+f.Name),
				stdoutStyles().FlagDesc.Render(f.Usage),
			)
		} else {
			fmt.Fprintf(out,
				"  %s%s %-40s %s\n",
				stdoutStyles().Flag.Render("-"+f.Shorthand),
				stdoutStyles().FlagComma,
				stdoutStyles().Flag.Render("--"+f.Name),
				stdoutStyles().FlagDesc.Render(f.Usage),
			)
		}
	})
	desc, example := randomExample()
	fmt.Fprintf(out,
		"\nExample:\n  %s\n  %s\n",
		stdoutStyles().Comment.Render("# "+desc),
		cheapHighlighting(stdoutStyles(), example),
	)

	return nil
}
