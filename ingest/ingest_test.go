package ingest

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/faqbase/faqbase/engine"
	"github.com/faqbase/faqbase/enrich"
	"github.com/faqbase/faqbase/langid"
	"github.com/faqbase/faqbase/store"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type stubDetector struct{}

func (stubDetector) Detect(text string) langid.Tag { return langid.English }

func newTestCoordinator(t *testing.T) (*Coordinator, *store.Store) {
	t.Helper()
	engine.RegisterSearchFunctions()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st, err := store.New(db)
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	coord := NewCoordinator(st, enrich.New(stubEmbedder{}, stubDetector{}), slog.Default(), 10*time.Second)
	return coord, st
}

func encodePayload(t *testing.T, csv string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(csv)); err != nil {
		t.Fatalf("compressing payload: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing compressor: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodePayloadRoundTrip(t *testing.T) {
	want := "question,answer\nhow,now\n"
	got, err := DecodePayload(encodePayload(t, want))
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if string(got) != want {
		t.Errorf("DecodePayload = %q, want %q", got, want)
	}
}

func TestDecodePayloadRejectsBadBase64(t *testing.T) {
	if _, err := DecodePayload("not base64!!!"); err == nil {
		t.Error("invalid base64 should fail")
	}
}

func TestDecodePayloadRejectsBadStream(t *testing.T) {
	garbage := base64.StdEncoding.EncodeToString([]byte("plain text, not compressed"))
	_, err := DecodePayload(garbage)
	if err == nil {
		t.Fatal("uncompressed payload should fail")
	}
	// The error must carry the inflate failure, not just the zlib header
	// mismatch that sent us down the fallback path.
	var corrupt flate.CorruptInputError
	if !errors.As(err, &corrupt) {
		t.Errorf("error = %v, want it to wrap the flate failure", err)
	}
}

func TestReaderSkipsIncompleteRows(t *testing.T) {
	src := "answer,question\nA1,Q1\n,Q2\nA3,Q3\n"
	r, err := NewReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	var rows []Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		rows = append(rows, row)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (incomplete row skipped)", len(rows))
	}
	if rows[0] != (Row{Question: "Q1", Answer: "A1"}) || rows[1] != (Row{Question: "Q3", Answer: "A3"}) {
		t.Errorf("rows = %+v", rows)
	}
	if r.Skipped() != 1 {
		t.Errorf("skipped = %d, want 1", r.Skipped())
	}
}

func TestReaderRequiresColumns(t *testing.T) {
	if _, err := NewReader(strings.NewReader("foo,bar\n1,2\n")); err == nil {
		t.Error("header without question/answer columns should fail")
	}
}

func TestSubmitStoresCompleteRows(t *testing.T) {
	coord, st := newTestCoordinator(t)
	payload := encodePayload(t, "question,answer\nHow do I pay?,Use the portal.\nMissing answer,\nWhere is the office?,Main street.\n")

	job, err := coord.Submit(context.Background(), "faq.csv", payload, "uploader")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if job.Status != store.StatusPending {
		t.Errorf("initial status = %q, want %q", job.Status, store.StatusPending)
	}
	coord.Wait()

	done, ok, err := st.GetJob(context.Background(), job.ID)
	if err != nil || !ok {
		t.Fatalf("GetJob = %v, %v, %v", done, ok, err)
	}
	if done.Status != store.StatusDone {
		t.Errorf("terminal status = %q, want %q", done.Status, store.StatusDone)
	}

	page, err := st.ListCandidates(context.Background(), store.CandidateQuery{UploadID: job.ID})
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if page.TotalRecords != 2 {
		t.Fatalf("stored candidates = %d, want 2", page.TotalRecords)
	}
	for _, c := range page.Data {
		if c.UploadID != job.ID || c.CreatedBy != "uploader" {
			t.Errorf("candidate provenance = %+v", c)
		}
		if len(c.Embedding) == 0 {
			t.Errorf("candidate %s stored without embedding", c.ID)
		}
	}
}

func TestSubmitBadPayloadFailsJob(t *testing.T) {
	coord, st := newTestCoordinator(t)

	job, err := coord.Submit(context.Background(), "broken.csv", "!!!not a payload!!!", "uploader")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	coord.Wait()

	done, ok, err := st.GetJob(context.Background(), job.ID)
	if err != nil || !ok {
		t.Fatalf("GetJob = %v, %v, %v", done, ok, err)
	}
	if done.Status != store.StatusFailed {
		t.Errorf("terminal status = %q, want %q", done.Status, store.StatusFailed)
	}

	page, err := st.ListCandidates(context.Background(), store.CandidateQuery{UploadID: job.ID})
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if page.TotalRecords != 0 {
		t.Errorf("failed job stored %d candidates, want 0", page.TotalRecords)
	}
}
