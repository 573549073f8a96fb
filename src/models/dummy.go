package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyLLM is a lightweight model implementation useful for local testing
// without API calls. It echoes the last non-empty prompt line and, when
// driven with tools, invokes every scripted call in order.
type DummyLLM struct {
	Prefix string

	// Calls scripts the tool invocations GenerateWithTools should request.
	Calls []ToolCall
}

func NewDummyLLM(prefix string) *DummyLLM {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyLLM{Prefix: prefix}
}

func (d *DummyLLM) Generate(_ context.Context, prompt string) (any, error) {
	lines := strings.Split(prompt, "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		if candidate := strings.TrimSpace(lines[i]); candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last), nil
}

func (d *DummyLLM) GenerateWithFiles(_ context.Context, prompt string, files []File) (any, error) {
	return fmt.Sprintf("%s %s", d.Prefix, combinePromptWithFiles(prompt, files)), nil
}

func (d *DummyLLM) GenerateWithTools(ctx context.Context, prompt string, _ []ToolDecl, run ToolRunner) (string, error) {
	var sb strings.Builder
	sb.WriteString(d.Prefix)
	for _, call := range d.Calls {
		result := run(ctx, call)
		if msg, ok := result["error"].(string); ok {
			fmt.Fprintf(&sb, " %s failed: %s.", call.Name, msg)
			continue
		}
		fmt.Fprintf(&sb, " %s ok.", call.Name)
	}
	return sb.String(), nil
}

var _ ToolAgent = (*DummyLLM)(nil)
