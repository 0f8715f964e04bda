// Package node is a client for the HTTP endpoints a GaiaNet node exposes.
package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/gaianet/mcp-smoke/internal/proto"
	"github.com/gaianet/mcp-smoke/internal/target"
)

// Paths relative to the gateway root.
const (
	HealthPath   = "health"
	DiscoverPath = "v1/mcp/discover"
	InfoPath     = "mcp/info"
)

// Paths relative to the chat and embedding roots.
const (
	ChatPath       = "chat/completions"
	EmbeddingsPath = "embeddings"
)

// Config represents the configuration for the node client.
type Config struct {
	APIKey     string
	Model      string
	HTTPClient interface {
		Do(*http.Request) (*http.Response, error)
	}
	Logger *log.Logger
}

// Client talks to the gateway, chat and embedding roots of a node.
type Client struct {
	gateway   *openai.Client
	chat      *openai.Client
	embedding *openai.Client
	model     string
	logger    *log.Logger
}

// New creates a new [Client] for the given [target.Target].
func New(t target.Target, config Config) *Client {
	return &Client{
		gateway:   newOpenAI(t.Gateway, config),
		chat:      newOpenAI(t.ChatBase(), config),
		embedding: newOpenAI(t.EmbeddingBase(), config),
		model:     config.Model,
		logger:    config.Logger,
	}
}

func newOpenAI(base string, config Config) *openai.Client {
	// the client defaults read OPENAI_* credentials from the environment;
	// only the configured key may reach the node
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(base, "/") + "/"),
		option.WithMaxRetries(0),
		option.WithHeaderDel("OpenAI-Organization"),
		option.WithHeaderDel("OpenAI-Project"),
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	} else {
		opts = append(opts, option.WithHeaderDel("authorization"))
	}
	if config.Logger != nil {
		opts = append(opts, option.WithMiddleware(logRequests(config.Logger)))
	}
	client := openai.NewClient(opts...)
	return &client
}

func logRequests(l *log.Logger) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		start := time.Now()
		res, err := next(req)
		if err != nil {
			l.Debug("request failed", "method", req.Method, "url", req.URL.String(), "took", time.Since(start), "err", err)
			return res, err //nolint:wrapcheck
		}
		l.Debug("request", "method", req.Method, "url", req.URL.String(), "status", res.StatusCode, "took", time.Since(start))
		return res, nil
	}
}

// Health fetches the gateway health document. A node that answers with a
// JSON body is reachable, whatever the status code.
func (c *Client) Health(ctx context.Context) (json.RawMessage, error) {
	var raw []byte
	err := c.gateway.Get(ctx, HealthPath, nil, &raw)
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		body, rerr := io.ReadAll(apiErr.Response.Body)
		if rerr != nil || !json.Valid(bytes.TrimSpace(body)) {
			return nil, wrap(OpHealth, err)
		}
		raw, err = body, nil
	}
	if err != nil {
		return nil, wrap(OpHealth, err)
	}
	var body json.RawMessage
	if err := decode(OpHealth, raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// Discover fetches the declared MCP capabilities and tools.
func (c *Client) Discover(ctx context.Context) (*Discovery, error) {
	var d Discovery
	if err := c.getJSON(ctx, OpDiscover, DiscoverPath, &d); err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, &Error{Op: OpDiscover, Kind: KindResponse, Err: err}
	}
	return &d, nil
}

// Info fetches the MCP server metadata.
func (c *Client) Info(ctx context.Context) (*Metadata, error) {
	var m Metadata
	if err := c.getJSON(ctx, OpInfo, InfoPath, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, v any) error {
	var raw []byte
	if err := c.gateway.Get(ctx, path, nil, &raw); err != nil {
		return wrap(op, err)
	}
	return decode(op, raw, v)
}

// postJSON reads the reply as bytes so that a JSON body is decoded whatever
// its content type, and anything else fails as a decode error.
func (c *Client) postJSON(ctx context.Context, client *openai.Client, op, path string, body, v any) error {
	var raw []byte
	if err := client.Post(ctx, path, body, &raw, c.modelOption()...); err != nil {
		return wrap(op, err)
	}
	return decode(op, raw, v)
}

func decode(op string, raw []byte, v any) error {
	if err := json.Unmarshal(bytes.TrimSpace(raw), v); err != nil {
		return &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return nil
}

// Chat sends the conversation and returns the first completion's content.
func (c *Client) Chat(ctx context.Context, conversation proto.Conversation) (string, error) {
	if c.logger != nil {
		c.logger.Debug("chat request", "model", c.model, "conversation", conversation.String())
	}
	body := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: fromProtoMessages(conversation),
	}
	var resp openai.ChatCompletion
	if err := c.postJSON(ctx, c.chat, OpChat, ChatPath, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Op: OpChat, Kind: KindResponse, Err: errNoChoices}
	}
	if !resp.Choices[0].Message.JSON.Content.Valid() {
		return "", &Error{Op: OpChat, Kind: KindResponse, Err: errNoContent}
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for input.
func (c *Client) Embed(ctx context.Context, input string) ([]float64, error) {
	body := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(input),
		},
	}
	var resp openai.CreateEmbeddingResponse
	if err := c.postJSON(ctx, c.embedding, OpEmbed, EmbeddingsPath, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &Error{Op: OpEmbed, Kind: KindResponse, Err: errNoData}
	}
	if !resp.Data[0].JSON.Embedding.Valid() {
		return nil, &Error{Op: OpEmbed, Kind: KindResponse, Err: errNoEmbedding}
	}
	return resp.Data[0].Embedding, nil
}

// modelOption drops the model key from request bodies when no model is
// configured, so the node picks its default.
func (c *Client) modelOption() []option.RequestOption {
	if c.model != "" {
		return nil
	}
	return []option.RequestOption{option.WithJSONDel("model")}
}
