package api

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/faqbase/faqbase/engine"
	"github.com/faqbase/faqbase/enrich"
	"github.com/faqbase/faqbase/ingest"
	"github.com/faqbase/faqbase/langid"
	"github.com/faqbase/faqbase/question"
	"github.com/faqbase/faqbase/store"
)

type constEmbedder struct{}

func (constEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type constDetector struct{}

func (constDetector) Detect(text string) langid.Tag { return langid.English }

type fixture struct {
	server *httptest.Server
	store  *store.Store
	coord  *ingest.Coordinator
}

func newFixture(t *testing.T) *fixture {
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

	enricher := enrich.New(constEmbedder{}, constDetector{})
	svc := question.NewService(st, enricher, slog.Default())
	t.Cleanup(svc.Close)
	coord := ingest.NewCoordinator(st, enricher, slog.Default(), 10*time.Second)

	mux := http.NewServeMux()
	NewHandler(svc, coord, st, slog.Default()).Register(mux)
	srv := httptest.NewServer(Chain(mux, Recover(slog.Default())))
	t.Cleanup(srv.Close)

	return &fixture{server: srv, store: st, coord: coord}
}

func (f *fixture) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(f.server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func compressCSV(t *testing.T, csv string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(csv)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	f := newFixture(t)
	seedViaStore(t, f.store, "c1", "How do I pay?", "Use the portal.")

	resp := f.post(t, "/api/v1/questions/search", map[string]any{"newMessage": "How do I pay?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var answer question.Answer
	decodeInto(t, resp, &answer)
	if answer.ID == nil || *answer.ID != "c1" {
		t.Errorf("answer = %+v, want candidate c1", answer)
	}
}

func TestSearchEndpointRequiresMessage(t *testing.T) {
	f := newFixture(t)
	resp := f.post(t, "/api/v1/questions/search", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding backend unavailable")
}

func TestSearchEndpointInternalFailureIs500(t *testing.T) {
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
	svc := question.NewService(st, enrich.New(failingEmbedder{}, constDetector{}), slog.Default())
	t.Cleanup(svc.Close)

	mux := http.NewServeMux()
	NewHandler(svc, nil, st, slog.Default()).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	body := bytes.NewReader([]byte(`{"newMessage":"hello"}`))
	resp, err := http.Post(srv.URL+"/api/v1/questions/search", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for a backend failure", resp.StatusCode)
	}
}

func TestUploadAndListFlow(t *testing.T) {
	f := newFixture(t)
	payload := compressCSV(t, "question,answer\nHow do I pay?,Use the portal.\n")

	resp := f.post(t, "/api/v1/questions/upload", map[string]string{
		"fileName": "faq.csv", "payload": payload,
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("upload status = %d, want 202", resp.StatusCode)
	}
	var job store.Job
	decodeInto(t, resp, &job)
	if job.Status != store.StatusPending {
		t.Errorf("job status = %q, want Pending", job.Status)
	}
	f.coord.Wait()

	listResp := f.post(t, "/api/v1/uploads/list", map[string]any{})
	var uploads struct {
		Data         []store.JobListItem `json:"data"`
		TotalRecords int                 `json:"totalRecords"`
	}
	decodeInto(t, listResp, &uploads)
	if uploads.TotalRecords != 1 || len(uploads.Data) != 1 {
		t.Fatalf("uploads = %+v", uploads)
	}
	if uploads.Data[0].Status != store.StatusDone || uploads.Data[0].QuestionCount != 1 {
		t.Errorf("upload entry = %+v", uploads.Data[0])
	}

	qResp := f.post(t, "/api/v1/questions/list", map[string]string{"uploadId": job.ID})
	var page struct {
		Data         []candidateView `json:"data"`
		TotalRecords int             `json:"totalRecords"`
	}
	decodeInto(t, qResp, &page)
	if page.TotalRecords != 1 {
		t.Fatalf("questions for upload = %+v", page)
	}
	if page.Data[0].Question != "How do I pay?" {
		t.Errorf("stored question = %q", page.Data[0].Question)
	}
}

func TestDeleteUploadNotFound(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodDelete, f.server.URL+"/api/v1/uploads/nope", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestEditEndpointValidates(t *testing.T) {
	f := newFixture(t)
	resp := f.post(t, "/api/v1/questions/edit", map[string]string{"id": "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func seedViaStore(t *testing.T, st *store.Store, id, q, a string) {
	t.Helper()
	err := st.InsertCandidate(context.Background(), &store.Candidate{
		ID: id, Question: q, Answer: a, Lang: langid.English,
		Embedding: []float32{1, 0, 0}, CreatedBy: "seed", UpdatedBy: "seed",
	})
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}
}
