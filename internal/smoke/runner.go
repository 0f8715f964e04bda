// Package smoke runs the health, discovery, chat and embedding checks against
// a node and prints a report.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/exp/ordered"

	"github.com/gaianet/mcp-smoke/internal/metrics"
	"github.com/gaianet/mcp-smoke/internal/node"
	"github.com/gaianet/mcp-smoke/internal/proto"
	"github.com/gaianet/mcp-smoke/internal/target"
)

// Checks.
const (
	CheckHealth     = "health"
	CheckDiscovery  = "discovery"
	CheckChat       = "chat"
	CheckEmbeddings = "embeddings"
	CheckInfo       = "info"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Default prompts.
const (
	DefaultSystemPrompt   = "You are a helpful assistant."
	DefaultUserPrompt     = "In one sentence, what is the Model Context Protocol?"
	DefaultEmbeddingInput = "Model Context Protocol enables AI discovery"
)

const (
	ruleWidth   = 60
	previewSize = 5
)

// Node is the part of [node.Client] the runner uses.
type Node interface {
	Health(ctx context.Context) (json.RawMessage, error)
	Discover(ctx context.Context) (*node.Discovery, error)
	Info(ctx context.Context) (*node.Metadata, error)
	Chat(ctx context.Context, conversation proto.Conversation) (string, error)
	Embed(ctx context.Context, input string) ([]float64, error)
}

// Waiter runs fn, usually while showing some progress indicator.
type Waiter func(label string, fn func() error) error

// Timeouts bounds each check.
type Timeouts struct {
	Health    time.Duration
	Discovery time.Duration
	Chat      time.Duration
	Embedding time.Duration
	Info      time.Duration
}

// DefaultTimeouts returns the default per-check timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Health:    5 * time.Second,
		Discovery: 5 * time.Second,
		Chat:      30 * time.Second,
		Embedding: 10 * time.Second,
		Info:      5 * time.Second,
	}
}

// Options configures a [Runner]. Zero values fall back to the defaults.
type Options struct {
	Target         target.Target
	Timeouts       Timeouts
	SystemPrompt   string
	UserPrompt     string
	EmbeddingInput string

	// Info enables the extra /mcp/info check after the embeddings one.
	Info bool

	// Markdown renders the chat reply with glamour, wrapped at WordWrap.
	Markdown bool
	WordWrap int

	Renderer *lipgloss.Renderer
	Logger   *log.Logger
	Metrics  metrics.Collector
	Wait     Waiter
}

// Result is the outcome of a single check.
type Result struct {
	Check string
	Took  time.Duration
	Err   error
}

// Report is the outcome of a run.
type Report struct {
	Results  []Result
	ExitCode int
}

// Failed returns the names of the failed checks.
func (r Report) Failed() []string {
	var names []string
	for _, res := range r.Results {
		if res.Err != nil {
			names = append(names, res.Check)
		}
	}
	return names
}

// Runner runs the checks in order: health, discovery, chat, embeddings and,
// optionally, info. Health and discovery failures end the run.
type Runner struct {
	node   Node
	out    io.Writer
	opts   Options
	styles Styles
}

// New creates a [Runner] that writes its report to out.
func New(n Node, out io.Writer, opts Options) *Runner {
	def := DefaultTimeouts()
	opts.Timeouts.Health = orDuration(opts.Timeouts.Health, def.Health)
	opts.Timeouts.Discovery = orDuration(opts.Timeouts.Discovery, def.Discovery)
	opts.Timeouts.Chat = orDuration(opts.Timeouts.Chat, def.Chat)
	opts.Timeouts.Embedding = orDuration(opts.Timeouts.Embedding, def.Embedding)
	opts.Timeouts.Info = orDuration(opts.Timeouts.Info, def.Info)
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.UserPrompt == "" {
		opts.UserPrompt = DefaultUserPrompt
	}
	if opts.EmbeddingInput == "" {
		opts.EmbeddingInput = DefaultEmbeddingInput
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.NewRenderer(out)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.Wait == nil {
		opts.Wait = func(_ string, fn func() error) error { return fn() }
	}
	return &Runner{
		node:   n,
		out:    out,
		opts:   opts,
		styles: NewStyles(opts.Renderer),
	}
}

// Run runs all checks and prints the report.
func (r *Runner) Run(ctx context.Context) Report {
	var rep Report
	r.header()

	r.section("Testing MCP server health...")
	if err := r.health(ctx, &rep); err != nil {
		r.println("")
		r.failLine("MCP server is not running. Start your node with " + r.styles.Code.Render("'gaianet start'"))
		if !r.opts.Target.Local {
			r.detail("Or check that MCP endpoints are properly proxied on the remote node")
		}
		rep.ExitCode = ExitFailure
		return rep
	}

	r.section("Discovering MCP capabilities...")
	if err := r.discover(ctx, &rep); err != nil {
		r.println("")
		r.failLine("Could not discover MCP capabilities")
		rep.ExitCode = ExitFailure
		return rep
	}

	r.section("Testing chat completion...")
	r.chat(ctx, &rep)

	r.section("Testing embeddings...")
	r.embeddings(ctx, &rep)

	if r.opts.Info {
		r.section("Fetching MCP server info...")
		r.info(ctx, &rep)
	}

	r.footer(rep)
	rep.ExitCode = ExitOK
	return rep
}

// check runs call under its own timeout and records the result. Nothing is
// printed while call runs.
func (r *Runner) check(
	ctx context.Context,
	rep *Report,
	name string,
	timeout time.Duration,
	call func(context.Context) error,
) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := r.opts.Wait(name, func() error { return call(ctx) })
	took := time.Since(start)

	rep.Results = append(rep.Results, Result{Check: name, Took: took, Err: err})
	r.opts.Metrics.RecordCheck(name, took, err == nil)
	if err != nil {
		r.opts.Logger.Debug("check failed", "check", name, "took", took, "kind", node.KindOf(err), "err", err)
	} else {
		r.opts.Logger.Debug("check passed", "check", name, "took", took)
	}
	return err
}

func (r *Runner) health(ctx context.Context, rep *Report) error {
	var body json.RawMessage
	if err := r.check(ctx, rep, CheckHealth, r.opts.Timeouts.Health, func(ctx context.Context) (err error) {
		body, err = r.node.Health(ctx)
		return err
	}); err != nil {
		r.failed("MCP server health check", err)
		return err
	}
	r.passLine("MCP server is healthy: " + compactJSON(body))
	return nil
}

func (r *Runner) discover(ctx context.Context, rep *Report) error {
	var d *node.Discovery
	if err := r.check(ctx, rep, CheckDiscovery, r.opts.Timeouts.Discovery, func(ctx context.Context) (err error) {
		d, err = r.node.Discover(ctx)
		return err
	}); err != nil {
		r.failed("MCP discovery", err)
		return err
	}
	r.passLine("MCP Discovery successful!")
	r.field("Version", d.Version)
	r.field("Capabilities", strings.Join(d.MCP.Capabilities, ", "))
	r.field("Tools available", strconv.Itoa(len(d.MCP.Tools)))
	for _, tool := range d.MCP.Tools {
		r.println("     - " + tool.Name + ": " + tool.Description)
	}
	return nil
}

func (r *Runner) chat(ctx context.Context, rep *Report) {
	conversation := proto.NewConversation(r.opts.SystemPrompt, r.opts.UserPrompt)
	var content string
	if err := r.check(ctx, rep, CheckChat, r.opts.Timeouts.Chat, func(ctx context.Context) (err error) {
		content, err = r.node.Chat(ctx, conversation)
		return err
	}); err != nil {
		r.failed("Chat completion", err)
		return
	}
	r.passLine("Chat completion successful!")
	if !r.opts.Markdown {
		r.field("Response", content)
		return
	}
	rendered, err := r.markdown(content)
	if err != nil {
		r.opts.Logger.Debug("could not render markdown", "err", err)
		r.field("Response", content)
		return
	}
	r.detail(r.styles.Label.Render("Response:"))
	fmt.Fprint(r.out, rendered)
}

func (r *Runner) embeddings(ctx context.Context, rep *Report) {
	var vec []float64
	if err := r.check(ctx, rep, CheckEmbeddings, r.opts.Timeouts.Embedding, func(ctx context.Context) (err error) {
		vec, err = r.node.Embed(ctx, r.opts.EmbeddingInput)
		return err
	}); err != nil {
		r.failed("Embeddings", err)
		return
	}
	r.passLine("Embeddings successful!")
	r.field("Embedding dimensions", strconv.Itoa(len(vec)))
	r.field(fmt.Sprintf("First %d values", previewSize), formatVector(vec[:ordered.Clamp(previewSize, 0, len(vec))]))
}

func (r *Runner) info(ctx context.Context, rep *Report) {
	var m *node.Metadata
	if err := r.check(ctx, rep, CheckInfo, r.opts.Timeouts.Info, func(ctx context.Context) (err error) {
		m, err = r.node.Info(ctx)
		return err
	}); err != nil {
		r.failed("MCP info", err)
		return
	}
	httpURL := "none"
	if m.HTTPURL != nil && *m.HTTPURL != "" {
		httpURL = *m.HTTPURL
	}
	r.passLine("MCP info retrieved!")
	r.field("Enabled", strconv.FormatBool(m.Enabled))
	r.field("HTTP URL", httpURL)
	r.field("Stdio", strconv.FormatBool(m.Stdio))
	r.field("Resources", strconv.Itoa(len(m.Resources)))
}

func (r *Runner) markdown(content string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.opts.WordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(r.opts.WordWrap))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("could not create markdown renderer: %w", err)
	}
	out, err := tr.Render(content)
	if err != nil {
		return "", fmt.Errorf("could not render markdown: %w", err)
	}
	return out, nil
}

func (r *Runner) header() {
	rule := r.styles.Rule.Render(strings.Repeat("=", ruleWidth))
	r.println(rule)
	r.println(r.styles.Title.Render("GaiaNet MCP Integration Test"))
	r.println(rule)
	r.println("")
	r.println(r.styles.Label.Render("Testing node at:") + " " + r.opts.Target.BaseURL)
	r.println(r.styles.Label.Render("Mode:") + " " + r.opts.Target.Mode())
}

func (r *Runner) footer(rep Report) {
	rule := r.styles.Rule.Render(strings.Repeat("=", ruleWidth))
	r.println("")
	r.println(rule)
	r.passLine("All MCP tests completed!")
	if failed := rep.Failed(); len(failed) > 0 {
		r.detail(r.styles.Hint.Render("Best-effort checks failed: " + strings.Join(failed, ", ")))
	}
	r.println(rule)
	r.println("")
	r.println(r.styles.Hint.Render("💡 Next steps:"))
	r.detail("- View dashboard: https://<your-node-id>.gaia.domains/")
	r.detail("- Read docs: README.md (MCP section)")
	r.detail("- Explore APIs: " + r.styles.Code.Render("curl http://127.0.0.1:9090/mcp/info"))
}

func (r *Runner) section(label string) {
	r.println("")
	r.println(r.styles.Running.Render("🔍 " + label))
}

func (r *Runner) passLine(s string) {
	r.println(r.styles.Pass.Render("✅") + " " + s)
}

func (r *Runner) failLine(s string) {
	r.println(r.styles.Fail.Render("❌") + " " + s)
}

func (r *Runner) failed(what string, err error) {
	r.println(r.styles.Fail.Render("❌ "+what+" failed:") + " " + err.Error())
}

func (r *Runner) field(label, value string) {
	r.detail(r.styles.Label.Render(label+":") + " " + value)
}

func (r *Runner) detail(s string) {
	r.println("   " + s)
}

func (r *Runner) println(s string) {
	fmt.Fprintln(r.out, s)
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func formatVector(vec []float64) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func orDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

var _ Node = (*node.Client)(nil)
