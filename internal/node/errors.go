package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/openai/openai-go"
)

// Operations.
const (
	OpHealth   = "health"
	OpDiscover = "discover"
	OpInfo     = "info"
	OpChat     = "chat"
	OpEmbed    = "embed"
)

// Kind classifies why a request failed.
type Kind string

// Kinds.
const (
	KindTransport Kind = "transport"
	KindTimeout   Kind = "timeout"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
	KindResponse  Kind = "response"
)

// Error is returned by every [Client] method.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the [Kind] of err, or an empty string if err did not come
// from a [Client].
func KindOf(err error) Kind {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return ""
}

func wrap(op string, err error) error {
	return &Error{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	var (
		apiErr    *openai.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		netErr    net.Error
		urlErr    *url.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return KindTimeout
	case errors.As(err, &apiErr):
		return KindStatus
	case errors.As(err, &urlErr):
		return KindTransport
	case errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return KindDecode
	default:
		return KindTransport
	}
}
