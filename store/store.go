package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faqbase/faqbase/langid"
	"github.com/faqbase/faqbase/vector"
)

// timeLayout is the canonical timestamp encoding. RFC 3339 text keeps
// lexicographic and chronological order aligned, so date filters and ORDER BY
// work directly on the column.
const timeLayout = time.RFC3339Nano

// Candidate is a stored, searchable question/answer unit.
type Candidate struct {
	ID        string
	Question  string
	Answer    string
	Lang      langid.Tag
	Embedding []float32
	UploadID  string
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CandidateUpdate carries the fields the edit operation overwrites. The
// identifier, creation metadata, and upload linkage are never touched.
type CandidateUpdate struct {
	Question  string
	Answer    string
	Lang      langid.Tag
	Embedding []float32
	UpdatedBy string
}

// Store provides durable access to candidates, upload jobs, and chat
// history over a shared SQLite database.
type Store struct {
	db *sql.DB
}

// New ensures the schema exists and returns a Store over db.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, fmt.Errorf("store: ensuring schema: %w", err)
	}
	return &Store{db: db}, nil
}

// InsertCandidate persists a new candidate in a single statement, so a row
// becomes visible to concurrent searches only atomically with its insert.
// A missing ID is generated; timestamps are stamped when zero.
func (s *Store) InsertCandidate(ctx context.Context, c *Candidate) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO questions (id, question, answer, lang, embedding, upload_id, created_by, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Question, c.Answer, string(c.Lang), vector.Encode(c.Embedding),
		nullable(c.UploadID), c.CreatedBy, c.UpdatedBy,
		c.CreatedAt.Format(timeLayout), c.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("store: inserting candidate: %w", err)
	}
	return nil
}

// UpdateCandidate overwrites the mutable fields of an existing candidate in
// place. It fails when the id does not exist.
func (s *Store) UpdateCandidate(ctx context.Context, id string, u CandidateUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE questions
		SET question = ?, answer = ?, lang = ?, embedding = ?, updated_by = ?, updated_at = ?
		WHERE id = ?`,
		u.Question, u.Answer, string(u.Lang), vector.Encode(u.Embedding),
		u.UpdatedBy, time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("store: updating candidate %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: updating candidate %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("store: candidate %s not found", id)
	}
	return nil
}

// GetCandidate loads one candidate by id.
func (s *Store) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, question, answer, lang, embedding, upload_id, created_by, updated_by, created_at, updated_at
		FROM questions WHERE id = ?`, id)

	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: candidate %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: loading candidate %s: %w", id, err)
	}
	return c, nil
}

// CandidateQuery filters and paginates the candidate listing.
type CandidateQuery struct {
	Search   string // case-insensitive substring over question OR answer
	UploadID string
	Limit    int
	Offset   int
}

// CandidatePage is one page of candidates plus listing totals.
type CandidatePage struct {
	Data           []Candidate
	TotalRecords   int
	TotalRemaining int
}

// ListCandidates returns a page of candidates, newest first.
func (s *Store) ListCandidates(ctx context.Context, q CandidateQuery) (*CandidatePage, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}

	var conds []string
	var args []any
	if q.Search != "" {
		conds = append(conds, `(lower(question) LIKE '%'||lower(?)||'%' OR lower(answer) LIKE '%'||lower(?)||'%')`)
		args = append(args, q.Search, q.Search)
	}
	if q.UploadID != "" {
		conds = append(conds, `upload_id = ?`)
		args = append(args, q.UploadID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("store: counting candidates: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, lang, embedding, upload_id, created_by, updated_by, created_at, updated_at
		FROM questions`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, q.Limit, q.Offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing candidates: %w", err)
	}
	defer rows.Close()

	var data []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("store: listing candidates: %w", err)
		}
		data = append(data, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing candidates: %w", err)
	}

	return &CandidatePage{
		Data:           data,
		TotalRecords:   total,
		TotalRemaining: remaining(total, q.Offset, q.Limit),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(r rowScanner) (*Candidate, error) {
	var c Candidate
	var lang string
	var emb []byte
	var uploadID sql.NullString
	var createdAt, updatedAt string
	if err := r.Scan(&c.ID, &c.Question, &c.Answer, &lang, &emb, &uploadID, &c.CreatedBy, &c.UpdatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	vec, err := vector.Decode(emb)
	if err != nil {
		return nil, err
	}
	c.Lang = langid.Tag(lang)
	c.Embedding = vec
	c.UploadID = uploadID.String
	if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func remaining(total, offset, limit int) int {
	if r := total - offset - limit; r > 0 {
		return r
	}
	return 0
}
