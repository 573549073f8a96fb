package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

// maxToolRounds bounds the function-calling loop so a misbehaving model
// cannot spin the executor forever.
const maxToolRounds = 8

type GeminiLLM struct {
	Client       *genai.Client
	Model        string
	PromptPrefix string
}

func NewGeminiLLM(ctx context.Context, model, promptPrefix string) (*GeminiLLM, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiLLM{Client: client, Model: model, PromptPrefix: promptPrefix}, nil
}

func (g *GeminiLLM) fullPrompt(prompt string) string {
	if prefix := strings.TrimSpace(g.PromptPrefix); prefix != "" {
		return prefix + "\n\n" + prompt
	}
	return prompt
}

func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (any, error) {
	model := g.Client.GenerativeModel(g.Model)

	resp, err := model.GenerateContent(ctx, genai.Text(g.fullPrompt(prompt)))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}
	return textOfContent(resp.Candidates[0].Content), nil
}

func (g *GeminiLLM) GenerateWithFiles(ctx context.Context, prompt string, files []File) (any, error) {
	model := g.Client.GenerativeModel(g.Model)

	parts := []genai.Part{genai.Text(g.fullPrompt(prompt))}
	for _, f := range files {
		mt := normalizeMIME(f.Name, f.MIME)
		switch {
		case isImageMIME(mt):
			parts = append(parts, genai.Blob{MIMEType: mt, Data: f.Data})
		case isTextMIME(mt):
			parts = append(parts, genai.Text(fmt.Sprintf("\n--- %s ---\n%s", f.Name, f.Data)))
		}
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}
	return textOfContent(resp.Candidates[0].Content), nil
}

// GenerateWithTools runs a function-calling chat: every FunctionCall part is
// routed through run and answered with a FunctionResponse until the model
// settles on narrative text.
func (g *GeminiLLM) GenerateWithTools(ctx context.Context, prompt string, decls []ToolDecl, run ToolRunner) (string, error) {
	model := g.Client.GenerativeModel(g.Model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: declarations(decls)}}

	chat := model.StartChat()
	resp, err := chat.SendMessage(ctx, genai.Text(g.fullPrompt(prompt)))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var text strings.Builder
	for round := 0; round < maxToolRounds; round++ {
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			break
		}

		var responses []genai.Part
		for _, part := range resp.Candidates[0].Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				text.WriteString(string(p))
			case genai.FunctionCall:
				result := run(ctx, ToolCall{Name: p.Name, Args: p.Args})
				responses = append(responses, genai.FunctionResponse{
					Name:     p.Name,
					Response: result,
				})
			}
		}
		if len(responses) == 0 {
			break
		}

		resp, err = chat.SendMessage(ctx, responses...)
		if err != nil {
			return "", fmt.Errorf("gemini tool turn: %w", err)
		}
	}
	return strings.TrimSpace(text.String()), nil
}

func declarations(decls []ToolDecl) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  schemaFromMap(d.Schema),
		})
	}
	return out
}

// schemaFromMap converts a JSON-schema-like map into the genai schema type.
func schemaFromMap(m map[string]any) *genai.Schema {
	if len(m) == 0 {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = schemaType(t)
	}
	if desc, ok := m["description"].(string); ok {
		s.Description = desc
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if pm, ok := raw.(map[string]any); ok {
				s.Properties[name] = schemaFromMap(pm)
			}
		}
	}
	switch req := m["required"].(type) {
	case []string:
		s.Required = req
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = schemaFromMap(items)
	}
	return s
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

func textOfContent(content *genai.Content) string {
	var sb strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

var _ ToolAgent = (*GeminiLLM)(nil)
