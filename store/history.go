package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatHistory is one user's rolling conversation record. History holds a
// JSON array of entries appended by the search side effect.
type ChatHistory struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	ClientType string          `json:"clientType"`
	History    json.RawMessage `json:"history"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// AppendHistory appends entry to the most recent history record of userID,
// creating the record when none exists.
func (s *Store) AppendHistory(ctx context.Context, userID, clientType string, entry any) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("store: encoding history entry: %w", err)
	}

	var id string
	var existing []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT id, history FROM chat_history WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID,
	).Scan(&id, &existing)
	if errors.Is(err, sql.ErrNoRows) {
		now := time.Now().UTC().Format(timeLayout)
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO chat_history (id, user_id, client_type, history, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), userID, clientType, "["+string(raw)+"]", now, now,
		)
		if err != nil {
			return fmt.Errorf("store: creating chat history for %s: %w", userID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: loading chat history for %s: %w", userID, err)
	}

	var entries []json.RawMessage
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &entries); err != nil {
			return fmt.Errorf("store: decoding chat history for %s: %w", userID, err)
		}
	}
	entries = append(entries, raw)
	updated, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("store: encoding chat history for %s: %w", userID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE chat_history SET history = ?, updated_at = ? WHERE id = ?`,
		string(updated), time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("store: updating chat history for %s: %w", userID, err)
	}
	return nil
}

// HistoryQuery filters and paginates the chat-history listing.
type HistoryQuery struct {
	UserID     string
	ClientType string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// HistoryPage is one page of chat histories plus listing totals.
type HistoryPage struct {
	Data           []ChatHistory
	TotalRecords   int
	TotalRemaining int
}

// ListHistories returns a page of chat histories, newest first.
func (s *Store) ListHistories(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}

	var conds []string
	var args []any
	if q.UserID != "" {
		conds = append(conds, `user_id = ?`)
		args = append(args, q.UserID)
	}
	if q.ClientType != "" {
		conds = append(conds, `client_type = ?`)
		args = append(args, q.ClientType)
	}
	if !q.From.IsZero() {
		conds = append(conds, `created_at >= ?`)
		args = append(args, q.From.UTC().Format(timeLayout))
	}
	if !q.To.IsZero() {
		conds = append(conds, `created_at <= ?`)
		args = append(args, q.To.UTC().Format(timeLayout))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_history`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("store: counting chat histories: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, client_type, history, created_at, updated_at
		FROM chat_history`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, q.Limit, q.Offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing chat histories: %w", err)
	}
	defer rows.Close()

	var data []ChatHistory
	for rows.Next() {
		var h ChatHistory
		var clientType sql.NullString
		var history []byte
		var createdAt, updatedAt string
		if err := rows.Scan(&h.ID, &h.UserID, &clientType, &history, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: listing chat histories: %w", err)
		}
		h.ClientType = clientType.String
		h.History = json.RawMessage(history)
		if h.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("store: listing chat histories: %w", err)
		}
		if h.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("store: listing chat histories: %w", err)
		}
		data = append(data, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing chat histories: %w", err)
	}

	return &HistoryPage{
		Data:           data,
		TotalRecords:   total,
		TotalRemaining: remaining(total, q.Offset, q.Limit),
	}, nil
}

// ClientTypes returns the distinct client types seen in chat history.
func (s *Store) ClientTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT client_type FROM chat_history ORDER BY client_type`)
	if err != nil {
		return nil, fmt.Errorf("store: listing client types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t sql.NullString
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("store: listing client types: %w", err)
		}
		types = append(types, t.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing client types: %w", err)
	}
	return types, nil
}
