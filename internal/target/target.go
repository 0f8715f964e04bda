// Package target resolves the node under test into its endpoint roots.
package target

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Defaults used when the target is a loopback address.
const (
	DefaultURL          = "http://127.0.0.1:8080"
	DefaultChatURL      = "http://127.0.0.1:9068"
	DefaultEmbeddingURL = "http://127.0.0.1:9069"
)

// ErrInvalidURL is returned when the base URL is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid node url")

// Options overrides the local-mode chat and embedding roots.
type Options struct {
	ChatURL      string
	EmbeddingURL string
}

// Target is the resolved node configuration.
type Target struct {
	BaseURL   string
	Local     bool
	Gateway   string
	Chat      string
	Embedding string
}

// Resolve builds a [Target] from raw, which may be empty.
func Resolve(raw string, opts Options) (Target, error) {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		base = DefaultURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	t := Target{
		BaseURL:   base,
		Local:     isLoopback(u.Hostname()),
		Gateway:   base,
		Chat:      base,
		Embedding: base,
	}
	if t.Local {
		t.Chat = orDefault(opts.ChatURL, DefaultChatURL)
		t.Embedding = orDefault(opts.EmbeddingURL, DefaultEmbeddingURL)
	}
	return t, nil
}

// ChatBase is the root the chat completions path is appended to.
func (t Target) ChatBase() string {
	if t.Local {
		return t.Chat + "/v1"
	}
	return t.Chat
}

// EmbeddingBase is the root the embeddings path is appended to.
func (t Target) EmbeddingBase() string {
	if t.Local {
		return t.Embedding + "/v1"
	}
	return t.Embedding
}

// Mode describes how the capabilities are reached.
func (t Target) Mode() string {
	if t.Local {
		return "Local testing (using explicit ports)"
	}
	return "Remote testing (using proxied endpoints)"
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func orDefault(s, def string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return def
	}
	return s
}
