package main

import (
	"io"
	"text/template"
)

const configTemplate = `# {{ index .Help "url" }}
url: {{ .Config.URL }}
# {{ index .Help "chat-url" }}
chat-url: {{ .Config.ChatURL }}
# {{ index .Help "embedding-url" }}
embedding-url: {{ .Config.EmbeddingURL }}
# {{ index .Help "model" }}
model: {{ printf "%q" .Config.Model }}
# {{ index .Help "health-timeout" }}
health-timeout: {{ .Config.HealthTimeout }}
# {{ index .Help "discovery-timeout" }}
discovery-timeout: {{ .Config.DiscoveryTimeout }}
# {{ index .Help "chat-timeout" }}
chat-timeout: {{ .Config.ChatTimeout }}
# {{ index .Help "embedding-timeout" }}
embedding-timeout: {{ .Config.EmbeddingTimeout }}
# {{ index .Help "info-timeout" }}
info-timeout: {{ .Config.InfoTimeout }}
# {{ index .Help "system-prompt" }}
system-prompt: {{ printf "%q" .Config.SystemPrompt }}
# {{ index .Help "prompt" }}
prompt: {{ printf "%q" .Config.Prompt }}
# {{ index .Help "embedding-input" }}
embedding-input: {{ printf "%q" .Config.EmbeddingInput }}
# {{ index .Help "info" }}
info: {{ .Config.Info }}
# {{ index .Help "raw" }}
raw: {{ .Config.Raw }}
# {{ index .Help "word-wrap" }}
word-wrap: {{ .Config.WordWrap }}
# {{ index .Help "quiet" }}
quiet: {{ .Config.Quiet }}
# {{ index .Help "verbose" }}
verbose: {{ .Config.Verbose }}
# {{ index .Help "pushgateway-url" }}
pushgateway-url: {{ printf "%q" .Config.PushgatewayURL }}
`

// writeSettings renders c as a settings file. The API key is left out.
func writeSettings(w io.Writer, c Config) error {
	tmpl := template.Must(template.New("config").Parse(configTemplate))

	m := struct {
		Config Config
		Help   map[string]string
	}{
		Config: c,
		Help:   help,
	}
	if err := tmpl.Execute(w, m); err != nil {
		return smokeError{err, "Could not render settings template."}
	}
	return nil
}
