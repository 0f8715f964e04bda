package node

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

var (
	errNoChoices   = errors.New("response has no choices")
	errNoContent   = errors.New("first choice has no message content")
	errNoData      = errors.New("response has no embedding data")
	errNoEmbedding = errors.New("first item has no embedding vector")
)

// Metadata is the MCP description a node publishes.
type Metadata struct {
	Enabled      bool              `json:"enabled"`
	HTTPURL      *string           `json:"http_url"`
	Stdio        bool              `json:"stdio"`
	Capabilities []string          `json:"capabilities"`
	Tools        []mcp.Tool        `json:"tools"`
	Resources    []json.RawMessage `json:"resources"`
}

// Discovery is the body of the discovery endpoint.
type Discovery struct {
	Version string    `json:"version"`
	MCP     *Metadata `json:"mcp"`
}

func (d Discovery) validate() error {
	switch {
	case d.Version == "":
		return missingField("version")
	case d.MCP == nil:
		return missingField("mcp")
	case d.MCP.Capabilities == nil:
		return missingField("mcp.capabilities")
	case d.MCP.Tools == nil:
		return missingField("mcp.tools")
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}
