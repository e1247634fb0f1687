package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an upload job. These exact strings are
// the only values ever surfaced.
type JobStatus string

const (
	StatusPending JobStatus = "Pending"
	StatusDone    JobStatus = "Done"
	StatusFailed  JobStatus = "Failed"
)

// Job is one bulk-upload unit of work.
type Job struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Status     JobStatus `json:"status"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// CreateJob records a new upload job in Pending state.
func (s *Store) CreateJob(ctx context.Context, fileName, uploadedBy string) (*Job, error) {
	job := &Job{
		ID:         uuid.NewString(),
		FileName:   fileName,
		Status:     StatusPending,
		UploadedBy: uploadedBy,
		UploadedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO upload_history (id, file_name, status, uploaded_by, uploaded_at)
		VALUES (?, ?, ?, ?, ?)`,
		job.ID, job.FileName, string(job.Status), job.UploadedBy, job.UploadedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("store: creating upload job: %w", err)
	}
	return job, nil
}

// FinishJob transitions a Pending job to a terminal state. The WHERE guard
// makes the transition happen at most once; finishing an already-terminal or
// unknown job is an error.
func (s *Store) FinishJob(ctx context.Context, id string, status JobStatus) error {
	if status != StatusDone && status != StatusFailed {
		return fmt.Errorf("store: %q is not a terminal job status", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE upload_history SET status = ? WHERE id = ? AND status = ?`,
		string(status), id, string(StatusPending),
	)
	if err != nil {
		return fmt.Errorf("store: finishing job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: finishing job %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("store: job %s is not pending", id)
	}
	return nil
}

// GetJob loads one job by id; the second result reports whether it exists.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, bool, error) {
	var job Job
	var status, uploadedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, status, uploaded_by, uploaded_at FROM upload_history WHERE id = ?`, id,
	).Scan(&job.ID, &job.FileName, &status, &job.UploadedBy, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: loading job %s: %w", id, err)
	}
	job.Status = JobStatus(status)
	if job.UploadedAt, err = time.Parse(timeLayout, uploadedAt); err != nil {
		return nil, false, fmt.Errorf("store: loading job %s: %w", id, err)
	}
	return &job, true, nil
}

// DeleteJob removes a job record. Deleting an unknown id is not an error;
// the boolean reports whether a record was actually removed.
func (s *Store) DeleteJob(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM upload_history WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("store: deleting job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: deleting job %s: %w", id, err)
	}
	return n > 0, nil
}

// JobQuery filters and paginates the upload-history listing.
type JobQuery struct {
	Search string // case-insensitive substring over the file name
	Limit  int
	Offset int
}

// JobListItem is a job plus the number of candidates it produced.
type JobListItem struct {
	Job
	QuestionCount int `json:"questionCount"`
}

// JobPage is one page of upload history plus listing totals.
type JobPage struct {
	Data           []JobListItem
	TotalRecords   int
	TotalRemaining int
}

// ListJobs returns a page of upload history, newest first, with per-job
// candidate counts.
func (s *Store) ListJobs(ctx context.Context, q JobQuery) (*JobPage, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}

	var conds []string
	var args []any
	if q.Search != "" {
		conds = append(conds, `lower(file_name) LIKE '%'||lower(?)||'%'`)
		args = append(args, q.Search)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM upload_history`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("store: counting jobs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.file_name, u.status, u.uploaded_by, u.uploaded_at,
		       (SELECT COUNT(*) FROM questions WHERE upload_id = u.id) AS question_count
		FROM upload_history u`+where+` ORDER BY u.uploaded_at DESC LIMIT ? OFFSET ?`,
		append(args, q.Limit, q.Offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing jobs: %w", err)
	}
	defer rows.Close()

	var data []JobListItem
	for rows.Next() {
		var item JobListItem
		var status, uploadedAt string
		if err := rows.Scan(&item.ID, &item.FileName, &status, &item.UploadedBy, &uploadedAt, &item.QuestionCount); err != nil {
			return nil, fmt.Errorf("store: listing jobs: %w", err)
		}
		item.Status = JobStatus(status)
		if item.UploadedAt, err = time.Parse(timeLayout, uploadedAt); err != nil {
			return nil, fmt.Errorf("store: listing jobs: %w", err)
		}
		data = append(data, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing jobs: %w", err)
	}

	return &JobPage{
		Data:           data,
		TotalRecords:   total,
		TotalRemaining: remaining(total, q.Offset, q.Limit),
	}, nil
}

// JobName pairs a job id with its file name for pick lists.
type JobName struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
}

// JobNames returns all jobs as (id, fileName) pairs sorted by file name.
func (s *Store) JobNames(ctx context.Context) ([]JobName, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, file_name FROM upload_history ORDER BY file_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: listing job names: %w", err)
	}
	defer rows.Close()

	var names []JobName
	for rows.Next() {
		var n JobName
		if err := rows.Scan(&n.ID, &n.FileName); err != nil {
			return nil, fmt.Errorf("store: listing job names: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing job names: %w", err)
	}
	return names, nil
}
