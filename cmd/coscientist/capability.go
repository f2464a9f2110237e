package main

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandGenerator adapts an external command to the text-generation
// capability: the prompt is piped to stdin, the response read from stdout.
// The command is split on whitespace; the first token is the binary.
type commandGenerator struct {
	command string
}

func (g *commandGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	parts := strings.Fields(g.command)
	if len(parts) == 0 {
		return "", fmt.Errorf("empty capability command")
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(prompt)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run capability command: %w", err)
	}
	return out.String(), nil
}
