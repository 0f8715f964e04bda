package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/charmbracelet/log"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"

	"github.com/gaianet/mcp-smoke/internal/metrics"
	"github.com/gaianet/mcp-smoke/internal/node"
	"github.com/gaianet/mcp-smoke/internal/smoke"
	"github.com/gaianet/mcp-smoke/internal/target"
)

// Build vars.
var (
	//nolint: gochecknoglobals
	Version   = ""
	CommitSHA = ""
)

const sha1short = 7

// Exit codes on top of the ones the runner reports.
const exitUsage = 2

func buildVersion(cmd *cobra.Command) {
	if len(CommitSHA) >= sha1short {
		vt := cmd.VersionTemplate()
		cmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:sha1short] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	cmd.Version = Version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args, environMap(os.Environ()), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute loads the configuration, runs the command line in args and returns
// the process exit code.
func execute(ctx context.Context, args []string, environ map[string]string, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(settingsFlag(args[1:]), environ)
	if err != nil {
		printError(stderr, stderrStyles(), err)
		return exitUsage
	}

	code := smoke.ExitOK
	cmd := newRootCmd(&cfg, &code, stderr)
	cmd.SetArgs(args[1:])
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	buildVersion(cmd)

	if isCompletionCmd(args) {
		cmd.InitDefaultCompletionCmd()
	}
	if isManCmd(args) {
		cmd.AddCommand(newManCmd())
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		printError(stderr, stderrStyles(), err)
		return exitUsage
	}
	return code
}

func newRootCmd(cfg *Config, code *int, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mcp-smoke [URL]",
		Short:         "Smoke test the MCP endpoints of a GaiaNet node.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.URL = args[0]
			}
			if cfg.PrintSettings {
				return writeSettings(cmd.OutOrStdout(), *cfg)
			}
			if err := loadPrompts(cfg); err != nil {
				return err
			}
			c, err := runSmoke(cmd.Context(), cmd.OutOrStdout(), stderr, *cfg)
			*code = c
			return err
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newFlagParseError(err)
	})
	cmd.SetUsageFunc(usageFunc)
	initFlags(cmd.Flags(), cfg)
	cmd.Flags().BoolP("help", "h", false, help["help"])
	cmd.Flags().Bool("version", false, help["version"])
	return cmd
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "man",
		Short:                 "Generates manpages",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Hidden:                true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manPage, err := mcobra.NewManPage(1, cmd.Root())
			if err != nil {
				//nolint:wrapcheck
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), manPage.Build(roff.NewDocument()))
			//nolint:wrapcheck
			return err
		},
	}
}

// runSmoke resolves the target, runs every check and pushes the results.
func runSmoke(ctx context.Context, stdout, stderr io.Writer, cfg Config) (int, error) {
	logger := newLogger(stderr, cfg.Verbose)

	t, err := target.Resolve(cfg.URL, target.Options{
		ChatURL:      cfg.ChatURL,
		EmbeddingURL: cfg.EmbeddingURL,
	})
	if err != nil {
		return exitUsage, smokeError{err, "Invalid node URL."}
	}

	collector, err := metrics.New(metrics.Config{
		PushgatewayURL: cfg.PushgatewayURL,
		Instance:       t.BaseURL,
	}, logger)
	if err != nil {
		return exitUsage, smokeError{err, "Invalid Pushgateway URL."}
	}

	logger.Debug("resolved target",
		"base", t.BaseURL,
		"local", t.Local,
		"chat", t.ChatBase(),
		"embedding", t.EmbeddingBase(),
		"settings", cfg.SettingsPath,
	)

	client := node.New(t, node.Config{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		Logger: logger,
	})

	opts := smoke.Options{
		Target:         t,
		Timeouts:       cfg.timeouts(),
		SystemPrompt:   cfg.SystemPrompt,
		UserPrompt:     cfg.Prompt,
		EmbeddingInput: cfg.EmbeddingInput,
		Info:           cfg.Info,
		Markdown:       !cfg.Raw && stdout == io.Writer(os.Stdout) && isOutputTTY(),
		WordWrap:       cfg.WordWrap,
		Logger:         logger,
		Metrics:        collector,
	}
	if !cfg.Quiet && stderr == io.Writer(os.Stderr) && isErrTTY() {
		opts.Wait = spinnerWaiter(stderr, stderrStyles(), logger)
	}

	rep := smoke.New(client, stdout, opts).Run(ctx)
	if err := collector.Push(ctx); err != nil {
		logger.Warn("could not push metrics", "err", err)
	}
	return rep.ExitCode, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "mcp-smoke",
		Level:  log.InfoLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func isManCmd(args []string) bool {
	if len(args) == 2 {
		return args[1] == "man"
	}
	if len(args) == 3 && args[1] == "man" {
		return args[2] == "-h" || args[2] == "--help"
	}
	return false
}

func isCompletionCmd(args []string) bool {
	if len(args) <= 1 {
		return false
	}
	if args[1] == "__complete" {
		return true
	}
	if args[1] != "completion" {
		return false
	}
	if len(args) == 3 {
		_, ok := map[string]any{
			"bash":       nil,
			"fish":       nil,
			"zsh":        nil,
			"powershell": nil,
			"-h":         nil,
			"--help":     nil,
			"help":       nil,
		}[args[2]]
		return ok
	}
	if len(args) == 4 {
		_, ok := map[string]any{
			"-h":     nil,
			"--help": nil,
		}[args[3]]
		return ok
	}
	return false
}
