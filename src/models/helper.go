package models

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// FromName builds a provider by name. The prefix is prepended to every
// prompt, typically the assistant's system instructions.
func FromName(ctx context.Context, provider, model, prefix string) (Agent, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gemini", "google":
		return NewGeminiLLM(ctx, model, prefix)
	case "openai":
		return NewOpenAILLM(model, prefix), nil
	case "anthropic", "claude":
		return NewAnthropicLLM(model, prefix), nil
	case "ollama":
		return NewOllamaLLM(model, prefix)
	case "dummy":
		return NewDummyLLM(prefix), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// normalizeMIME resolves a best-effort MIME type from an explicit value or
// the file name's extension.
func normalizeMIME(name, explicit string) string {
	mt := strings.ToLower(strings.TrimSpace(explicit))
	if mt != "" {
		return mt
	}
	if ext := filepath.Ext(name); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return strings.ToLower(byExt)
		}
	}
	return ""
}

func isTextMIME(mt string) bool {
	switch {
	case strings.HasPrefix(mt, "text/"):
		return true
	case mt == "application/json", mt == "application/xml",
		mt == "application/x-yaml", mt == "application/yaml":
		return true
	}
	return false
}

func isImageMIME(mt string) bool {
	return strings.HasPrefix(mt, "image/")
}

// combinePromptWithFiles inlines text attachments after the prompt so that
// providers without a multi-part API still see the data.
func combinePromptWithFiles(prompt string, files []File) string {
	var sb strings.Builder
	sb.WriteString(prompt)
	for _, f := range files {
		mt := normalizeMIME(f.Name, f.MIME)
		if !isTextMIME(mt) && !utf8.Valid(f.Data) {
			continue
		}
		sb.WriteString("\n\n--- ")
		sb.WriteString(f.Name)
		sb.WriteString(" ---\n")
		sb.Write(f.Data)
	}
	return sb.String()
}
