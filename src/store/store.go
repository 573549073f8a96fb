// Package store persists the append-only session message log and the active
// dataset's provenance. The subsystem only reads provenance back for display;
// everything else is write-through for the surrounding application.
package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Message is one chat log entry.
type Message struct {
	ID        string
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Provenance records where the session's active dataset came from.
type Provenance struct {
	SessionID  string
	FileName   string
	RowCount   int
	UploadedAt time.Time
}

// ChatStore is the document-store boundary.
type ChatStore interface {
	AppendMessage(ctx context.Context, msg Message) error
	Messages(ctx context.Context, sessionID string, limit int) ([]Message, error)
	SaveProvenance(ctx context.Context, prov Provenance) error
	Provenance(ctx context.Context, sessionID string) (*Provenance, error)
	Close(ctx context.Context) error
}

// MemoryStore is the in-process ChatStore used by tests and the REPL.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []Message
	prov     map[string]Provenance
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prov: make(map[string]Provenance)}
}

func (m *MemoryStore) AppendMessage(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MemoryStore) Messages(_ context.Context, sessionID string, limit int) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Message
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *MemoryStore) SaveProvenance(_ context.Context, prov Provenance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prov[prov.SessionID] = prov
	return nil
}

func (m *MemoryStore) Provenance(_ context.Context, sessionID string) (*Provenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prov, ok := m.prov[sessionID]
	if !ok {
		return nil, nil
	}
	return &prov, nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }

var _ ChatStore = (*MemoryStore)(nil)
