package main

import (
	"os"
	"strings"
)

// loadText returns s, or the contents of the file it names when it starts
// with file://.
func loadText(s string) (string, error) {
	path, ok := strings.CutPrefix(s, "file://")
	if !ok {
		return s, nil
	}
	bts, err := os.ReadFile(path)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return strings.TrimSpace(string(bts)), nil
}

// loadPrompts resolves the file:// references in the prompt settings.
func loadPrompts(c *Config) error {
	for _, p := range []*string{&c.SystemPrompt, &c.Prompt, &c.EmbeddingInput} {
		text, err := loadText(*p)
		if err != nil {
			return smokeError{err, "Could not load prompt."}
		}
		*p = text
	}
	return nil
}
