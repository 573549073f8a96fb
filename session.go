package assistant

import (
	"sync"

	"github.com/datalens-ai/datalens/src/dataset"
)

// Session holds all per-conversation state. There is a single active dataset
// per session: ingestion replaces rows, summary, slim projection and raw text
// wholesale under the lock, so no tool invocation ever observes a partial
// swap. Tools are read-only over the rows.
type Session struct {
	ID string

	mu            sync.RWMutex
	ds            *dataset.Dataset
	summary       string
	slim          string
	rawText       string
	systemPrompt  string
	lastAssistant string
}

func NewSession(id string) *Session {
	return &Session{ID: id}
}

// ReplaceDataset swaps in a freshly ingested dataset and its derived views.
// The previous dataset is fully superseded; there is no incremental merge.
func (s *Session) ReplaceDataset(ds *dataset.Dataset, summary, slim, rawText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.summary = summary
	s.slim = slim
	s.rawText = rawText
}

// Dataset returns the active dataset and its derived views.
func (s *Session) Dataset() (*dataset.Dataset, string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds, s.summary, s.slim
}

// RawText returns the (already size-capped) source text of the active dataset.
func (s *Session) RawText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawText
}

// HasDataset reports whether rows are loaded.
func (s *Session) HasDataset() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.ds.Empty()
}

// EnsureSystemPrompt returns the session's system prompt, loading it exactly
// once per session lifecycle. The guard is single-assignment: later loaders
// never overwrite it.
func (s *Session) EnsureSystemPrompt(load func() string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.systemPrompt == "" && load != nil {
		s.systemPrompt = load()
	}
	return s.systemPrompt
}

// SetLastAssistant records the most recent assistant turn for the
// classifier's retry detection.
func (s *Session) SetLastAssistant(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAssistant = text
}

// LastAssistantText returns the most recent assistant turn.
func (s *Session) LastAssistantText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAssistant
}
