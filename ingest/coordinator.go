package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/faqbase/faqbase/enrich"
	"github.com/faqbase/faqbase/store"
)

// Coordinator runs upload jobs in the background. Submit returns as soon as
// the pending job is recorded; the payload is decoded, parsed, enriched and
// persisted detached from the caller.
type Coordinator struct {
	store    *store.Store
	enricher *enrich.Enricher
	log      *slog.Logger
	timeout  time.Duration

	wg sync.WaitGroup
}

// NewCoordinator wires the pipeline. timeout bounds each background job;
// zero means no bound.
func NewCoordinator(st *store.Store, enricher *enrich.Enricher, log *slog.Logger, timeout time.Duration) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{store: st, enricher: enricher, log: log, timeout: timeout}
}

// Submit records a pending job for the payload and starts processing it in
// the background. The returned job reflects the pending state; poll the
// upload listing for the terminal status.
func (c *Coordinator) Submit(ctx context.Context, fileName, payload, userID string) (*store.Job, error) {
	job, err := c.store.CreateJob(ctx, fileName, userID)
	if err != nil {
		return nil, fmt.Errorf("ingest: creating upload job: %w", err)
	}

	c.wg.Add(1)
	go c.process(job.ID, fileName, payload, userID)
	return job, nil
}

// Wait blocks until every submitted job has reached a terminal status. Call
// it on shutdown so in-flight uploads are not abandoned mid-file.
func (c *Coordinator) Wait() { c.wg.Wait() }

func (c *Coordinator) process(jobID, fileName, payload, userID string) {
	defer c.wg.Done()

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	stored, err := c.run(ctx, jobID, payload, userID)
	status := store.StatusDone
	if err != nil {
		status = store.StatusFailed
		c.log.Error("upload job failed", "jobId", jobID, "file", fileName, "error", err)
	} else {
		c.log.Info("upload job done", "jobId", jobID, "file", fileName, "stored", stored)
	}

	if err := c.store.FinishJob(context.Background(), jobID, status); err != nil {
		c.log.Error("finishing upload job", "jobId", jobID, "error", err)
	}
}

// run does the actual work and returns the number of candidates stored. The
// first enrichment or persistence error aborts the remainder of the file;
// rows stored before the failure stay stored.
func (c *Coordinator) run(ctx context.Context, jobID, payload, userID string) (int, error) {
	data, err := DecodePayload(payload)
	if err != nil {
		return 0, err
	}

	reader, err := NewReader(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}

	stored := 0
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stored, err
		}

		lang, vec, err := c.enricher.Enrich(ctx, row.Question, row.Answer)
		if err != nil {
			return stored, fmt.Errorf("ingest: enriching row %d: %w", stored+1, err)
		}

		cand := &store.Candidate{
			Question:  row.Question,
			Answer:    row.Answer,
			Lang:      lang,
			Embedding: vec,
			UploadID:  jobID,
			CreatedBy: userID,
			UpdatedBy: userID,
		}
		if err := c.store.InsertCandidate(ctx, cand); err != nil {
			return stored, fmt.Errorf("ingest: storing row %d: %w", stored+1, err)
		}
		stored++
	}

	if n := reader.Skipped(); n > 0 {
		c.log.Warn("skipped incomplete rows", "jobId", jobID, "skipped", n)
	}
	return stored, nil
}
