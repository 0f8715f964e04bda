package main

import (
	"math/rand"
)

var examples = map[string]string{
	"Test the node running on this machine":    `mcp-smoke`,
	"Test a remote node through its gateway":   `mcp-smoke https://0x1234.gaia.domains --info`,
	"Give a slow model more time to answer":    `NODE_URL="http://localhost:8080" mcp-smoke --chat-timeout 2m`,
	"Keep the transcript and push the results": `mcp-smoke -q --pushgateway-url "http://localhost:9091" | tee smoke.log`,
}

func randomExample() (string, string) {
	keys := make([]string, 0, len(examples))
	for k := range examples {
		keys = append(keys, k)
	}
	desc := keys[rand.Intn(len(keys))]
	return desc, examples[desc]
}
