// Package assistant ties the subsystem together: it ingests tabular
// attachments into the session, classifies each user turn, and dispatches it
// to the analytic tool registry, the code-execution backend, or plain
// grounded generation.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datalens-ai/datalens/src/chart"
	"github.com/datalens-ai/datalens/src/dataset"
	"github.com/datalens-ai/datalens/src/models"
	"github.com/datalens-ai/datalens/src/router"
	"github.com/datalens-ai/datalens/src/store"
	"github.com/datalens-ai/datalens/src/tools"
)

const defaultSystemPrompt = `You are a data analysis assistant. The user has
uploaded a dataset; a structural summary of it is provided below. Answer
questions about the data by calling the provided analytic operations. Always
pass column names exactly as they appear in the summary. If an operation
returns an error listing the available columns, retry with a corrected name.
Keep answers concise and grounded in the returned results.`

// Attachment is one uploaded file for a turn.
type Attachment struct {
	Name string
	Data []byte
}

// Turn is one inbound user message.
type Turn struct {
	Text       string
	Attachment *Attachment
	Images     []tools.ImageInput
}

// ToolInvocation records one operation run while answering a turn.
type ToolInvocation struct {
	Name   string
	Args   map[string]any
	Result map[string]any
}

// Segment is one piece of code-execution output.
type Segment struct {
	Kind string // text, code, result, image
	Text string
	MIME string
	Data []byte
}

// CodeRunner is the external numeric-execution backend. It receives the user
// request plus the session's dataset as CSV text and returns the interleaved
// output segments.
type CodeRunner interface {
	Run(ctx context.Context, prompt, csvText string) ([]Segment, error)
}

// Reply is the assistant's answer to one turn.
type Reply struct {
	Text        string
	Route       router.Decision
	Invocations []ToolInvocation
	Charts      []chart.Payload
	Segments    []Segment
}

// Assistant orchestrates sessions over a model, the operation registry and
// the chat store.
type Assistant struct {
	Model models.Agent
	Tools *tools.Registry
	Store store.ChatStore
	Code  CodeRunner
	Log   *zap.Logger

	// SystemPrompt overrides the built-in prompt when set.
	SystemPrompt string
	// Patterns overrides the header patterns used for engagement enrichment.
	Patterns *dataset.EnrichPatterns
}

// New wires an assistant with the default registry-facing settings. Model and
// registry are required; store and logger fall back to in-memory and no-op.
func New(model models.Agent, registry *tools.Registry, st store.ChatStore, log *zap.Logger) *Assistant {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{Model: model, Tools: registry, Store: st, Log: log}
}

// HandleTurn processes one user message end to end: ingest any attachment,
// pick a strategy, run it, and persist both sides of the exchange.
func (a *Assistant) HandleTurn(ctx context.Context, s *Session, turn Turn) (*Reply, error) {
	if s == nil {
		return nil, errors.New("session is required")
	}
	text := strings.TrimSpace(turn.Text)
	if text == "" && turn.Attachment == nil && len(turn.Images) == 0 {
		return nil, errors.New("turn is empty")
	}

	// Snapshot the history tail before recording this turn so the prompt's
	// conversation section never repeats the current message.
	history := a.historyTail(ctx, s.ID)
	a.record(ctx, s.ID, "user", text)

	loadedBefore := s.HasDataset()
	attached := false
	if turn.Attachment != nil {
		attached = a.ingest(ctx, s, turn.Attachment)
	}

	decision := router.Route(router.Input{
		Utterance:            text,
		DatasetLoaded:        loadedBefore,
		DatasetAttached:      attached,
		RawAttachmentPending: turn.Attachment != nil,
		HasImages:            len(turn.Images) > 0,
		LastAssistantText:    s.LastAssistantText(),
	})

	var (
		reply *Reply
		err   error
	)
	switch {
	case decision.UseTools:
		reply, err = a.runTools(ctx, s, text, turn.Images, history)
	case decision.UseCodeExecution:
		reply, err = a.runCode(ctx, s, text, history)
	default:
		reply, err = a.runGrounded(ctx, s, text, history)
	}
	if err != nil {
		return nil, err
	}
	reply.Route = decision

	s.SetLastAssistant(reply.Text)
	a.record(ctx, s.ID, "assistant", reply.Text)
	return reply, nil
}

// LoadDataset ingests an attachment outside a chat turn, for upload
// endpoints. It returns the new dataset summary.
func (a *Assistant) LoadDataset(ctx context.Context, s *Session, att *Attachment) (string, error) {
	if att == nil || len(att.Data) == 0 {
		return "", errors.New("attachment is empty")
	}
	if !a.ingest(ctx, s, att) {
		return "", fmt.Errorf("no rows could be parsed from %s", att.Name)
	}
	_, summary, _ := s.Dataset()
	return summary, nil
}

// ingest parses the attachment, enriches it and swaps it into the session.
// An unusable upload leaves the previous dataset in place.
func (a *Assistant) ingest(ctx context.Context, s *Session, att *Attachment) bool {
	var ds *dataset.Dataset
	if looksLikeJSON(att.Name, att.Data) {
		ds = dataset.ParseJSON(att.Data)
	} else {
		ds = dataset.ParseCSV(string(att.Data))
	}
	if ds.Empty() {
		a.Log.Warn("attachment produced no rows", zap.String("file", att.Name))
		return false
	}
	ds = dataset.Enrich(ds, a.enrichPatterns())

	rawText := string(att.Data)
	if len(rawText) > dataset.MaxSlimChars {
		rawText = rawText[:dataset.MaxSlimChars]
	}
	s.ReplaceDataset(ds, dataset.Summarize(ds), dataset.SlimProject(ds), rawText)

	if err := a.Store.SaveProvenance(ctx, store.Provenance{
		SessionID:  s.ID,
		FileName:   att.Name,
		RowCount:   len(ds.Rows),
		UploadedAt: time.Now().UTC(),
	}); err != nil {
		a.Log.Warn("failed to save dataset provenance", zap.Error(err))
	}
	a.Log.Info("dataset loaded",
		zap.String("session", s.ID),
		zap.String("file", att.Name),
		zap.Int("rows", len(ds.Rows)),
		zap.Int("columns", len(ds.Headers)))
	return true
}

// runTools answers the turn through native function calling over the
// registry. Providers without tool support fall back to grounded generation.
func (a *Assistant) runTools(ctx context.Context, s *Session, text string, images []tools.ImageInput, history []store.Message) (*Reply, error) {
	toolModel, ok := a.Model.(models.ToolAgent)
	if !ok || a.Tools == nil {
		a.Log.Warn("model has no tool support, answering without operations")
		return a.runGrounded(ctx, s, text, history)
	}

	ds, _, _ := s.Dataset()
	reply := &Reply{}

	run := func(ctx context.Context, call models.ToolCall) map[string]any {
		res := a.Tools.Execute(ctx, call.Name, tools.Request{
			SessionID: s.ID,
			Args:      call.Args,
			Dataset:   ds,
			Images:    images,
		})
		reply.Invocations = append(reply.Invocations, ToolInvocation{
			Name:   call.Name,
			Args:   call.Args,
			Result: res,
		})
		if payload, ok := res["chart"].(chart.Payload); ok {
			reply.Charts = append(reply.Charts, payload)
		}
		a.Log.Debug("operation invoked",
			zap.String("session", s.ID),
			zap.String("operation", call.Name))
		return res
	}

	answer, err := toolModel.GenerateWithTools(ctx, a.composePrompt(s, text, history), a.declarations(), run)
	if err != nil {
		return nil, fmt.Errorf("tool turn failed: %w", err)
	}
	reply.Text = strings.TrimSpace(answer)
	return reply, nil
}

// runCode hands the turn to the numeric-execution backend with the session's
// dataset as (size-capped) CSV text.
func (a *Assistant) runCode(ctx context.Context, s *Session, text string, history []store.Message) (*Reply, error) {
	if a.Code == nil {
		a.Log.Warn("code execution requested but no backend is configured")
		return a.runGrounded(ctx, s, text, history)
	}
	segments, err := a.Code.Run(ctx, text, s.RawText())
	if err != nil {
		return nil, fmt.Errorf("code execution failed: %w", err)
	}
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind == "text" && seg.Text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(seg.Text)
		}
	}
	return &Reply{Text: b.String(), Segments: segments}, nil
}

// runGrounded answers with plain generation over the dataset views.
func (a *Assistant) runGrounded(ctx context.Context, s *Session, text string, history []store.Message) (*Reply, error) {
	out, err := a.Model.Generate(ctx, a.composePrompt(s, text, history))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	return &Reply{Text: strings.TrimSpace(textOf(out))}, nil
}

// composePrompt assembles the model prompt: system instructions, the dataset
// summary and slim projection when rows are loaded, a bounded tail of the
// prior conversation, and the current message.
func (a *Assistant) composePrompt(s *Session, text string, history []store.Message) string {
	system := s.EnsureSystemPrompt(func() string {
		if a.SystemPrompt != "" {
			return a.SystemPrompt
		}
		return defaultSystemPrompt
	})

	_, summary, slim := s.Dataset()

	var b strings.Builder
	b.WriteString(system)
	if summary != "" {
		b.WriteString("\n\n")
		b.WriteString(summary)
	}
	if slim != "" {
		b.WriteString("\n\nDataset (CSV):\n")
		b.WriteString(slim)
	}
	if len(history) > 0 {
		b.WriteString("\n\nConversation so far:")
		for _, msg := range history {
			b.WriteString("\n")
			b.WriteString(msg.Role)
			b.WriteString(": ")
			b.WriteString(msg.Content)
		}
	}
	b.WriteString("\n\nUser: ")
	b.WriteString(text)
	return b.String()
}

// historyLimit bounds how many prior log entries feed back into the prompt.
const historyLimit = 10

// historyTail reads the recent conversation from the store; failures degrade
// to an empty tail rather than aborting the turn.
func (a *Assistant) historyTail(ctx context.Context, sessionID string) []store.Message {
	msgs, err := a.Store.Messages(ctx, sessionID, historyLimit)
	if err != nil {
		a.Log.Warn("failed to read chat history", zap.Error(err))
		return nil
	}
	return msgs
}

func (a *Assistant) declarations() []models.ToolDecl {
	specs := a.Tools.Specs()
	decls := make([]models.ToolDecl, 0, len(specs))
	for _, spec := range specs {
		decls = append(decls, models.ToolDecl{
			Name:        spec.Name,
			Description: spec.Description,
			Schema:      spec.InputSchema,
		})
	}
	return decls
}

func (a *Assistant) enrichPatterns() dataset.EnrichPatterns {
	if a.Patterns != nil {
		return *a.Patterns
	}
	return dataset.DefaultEnrichPatterns()
}

// record appends a chat log entry. Persistence failures are logged, never
// fatal to the turn.
func (a *Assistant) record(ctx context.Context, sessionID, role, content string) {
	if content == "" {
		return
	}
	err := a.Store.AppendMessage(ctx, store.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		a.Log.Warn("failed to append chat message", zap.Error(err))
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func looksLikeJSON(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return true
	}
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
