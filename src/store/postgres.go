package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs the chat log with Postgres, for deployments that
// already run one instead of a document database.
type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

// CreateSchema creates the message log and provenance tables.
func (ps *PostgresStore) CreateSchema(ctx context.Context) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, `
                CREATE TABLE IF NOT EXISTS chat_messages (
                        id TEXT PRIMARY KEY,
                        session_id TEXT NOT NULL,
                        role TEXT NOT NULL,
                        content TEXT NOT NULL,
                        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
                );
                CREATE INDEX IF NOT EXISTS chat_messages_session
                        ON chat_messages (session_id, created_at);
                CREATE TABLE IF NOT EXISTS session_datasets (
                        session_id TEXT PRIMARY KEY,
                        file_name TEXT NOT NULL,
                        row_count INTEGER NOT NULL,
                        uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
                );
        `)
	return err
}

func (ps *PostgresStore) AppendMessage(ctx context.Context, msg Message) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := ps.DB.Exec(ctx, `
                INSERT INTO chat_messages (id, session_id, role, content, created_at)
                VALUES ($1, $2, $3, $4, $5);
        `, msg.ID, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt)
	return err
}

func (ps *PostgresStore) Messages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	query := `
                SELECT id, session_id, role, content, created_at
                FROM chat_messages
                WHERE session_id = $1
                ORDER BY created_at ASC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := ps.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (ps *PostgresStore) SaveProvenance(ctx context.Context, prov Provenance) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	if prov.UploadedAt.IsZero() {
		prov.UploadedAt = time.Now().UTC()
	}
	_, err := ps.DB.Exec(ctx, `
                INSERT INTO session_datasets (session_id, file_name, row_count, uploaded_at)
                VALUES ($1, $2, $3, $4)
                ON CONFLICT (session_id) DO UPDATE
                SET file_name = EXCLUDED.file_name,
                    row_count = EXCLUDED.row_count,
                    uploaded_at = EXCLUDED.uploaded_at;
        `, prov.SessionID, prov.FileName, prov.RowCount, prov.UploadedAt)
	return err
}

func (ps *PostgresStore) Provenance(ctx context.Context, sessionID string) (*Provenance, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	var prov Provenance
	err := ps.DB.QueryRow(ctx, `
                SELECT session_id, file_name, row_count, uploaded_at
                FROM session_datasets WHERE session_id = $1;
        `, sessionID).Scan(&prov.SessionID, &prov.FileName, &prov.RowCount, &prov.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prov, nil
}

func (ps *PostgresStore) Close(context.Context) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	ps.DB.Close()
	return nil
}

var _ ChatStore = (*PostgresStore)(nil)
