package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/faqbase/faqbase/ingest"
	"github.com/faqbase/faqbase/langid"
	"github.com/faqbase/faqbase/question"
	"github.com/faqbase/faqbase/store"
)

// Handler routes HTTP requests to the services.
type Handler struct {
	questions *question.Service
	ingestor  *ingest.Coordinator
	store     *store.Store
	log       *slog.Logger
}

// NewHandler wires the HTTP surface over the services.
func NewHandler(questions *question.Service, ingestor *ingest.Coordinator, st *store.Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{questions: questions, ingestor: ingestor, store: st, log: log}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)

	mux.HandleFunc("POST /api/v1/questions/search", h.search)
	mux.HandleFunc("POST /api/v1/questions/upload", h.upload)
	mux.HandleFunc("POST /api/v1/questions/list", h.listQuestions)
	mux.HandleFunc("POST /api/v1/questions/edit", h.edit)

	mux.HandleFunc("POST /api/v1/uploads/list", h.listUploads)
	mux.HandleFunc("GET /api/v1/uploads/names", h.uploadNames)
	mux.HandleFunc("DELETE /api/v1/uploads/{id}", h.deleteUpload)

	mux.HandleFunc("POST /api/v1/history/list", h.listHistories)
	mux.HandleFunc("GET /api/v1/history/client-types", h.clientTypes)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req question.Request
	if err := decodeBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get("X-User-ID")
	}

	answer, err := h.questions.Search(r.Context(), req)
	if errors.Is(err, question.ErrEmptyMessage) {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error("search failed", "error", err)
		errorResponse(w, http.StatusInternalServerError, "search failed")
		return
	}
	jsonResponse(w, http.StatusOK, answer)
}

type uploadRequest struct {
	FileName string `json:"fileName"`
	Payload  string `json:"payload"`
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileName == "" || req.Payload == "" {
		errorResponse(w, http.StatusBadRequest, "fileName and payload are required")
		return
	}

	job, err := h.ingestor.Submit(r.Context(), req.FileName, req.Payload, userID(r))
	if err != nil {
		h.log.Error("upload submit failed", "file", req.FileName, "error", err)
		errorResponse(w, http.StatusInternalServerError, "could not create upload job")
		return
	}
	jsonResponse(w, http.StatusAccepted, job)
}

type listQuestionsRequest struct {
	Search   string `json:"search"`
	UploadID string `json:"uploadId"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// candidateView is the wire shape of a stored candidate. The embedding stays
// internal.
type candidateView struct {
	ID        string     `json:"id"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Lang      langid.Tag `json:"lang"`
	UploadID  string     `json:"uploadId,omitempty"`
	CreatedBy string     `json:"createdBy"`
	UpdatedBy string     `json:"updatedBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type pageView[T any] struct {
	Data           []T `json:"data"`
	TotalRecords   int `json:"totalRecords"`
	TotalRemaining int `json:"totalRemaining"`
}

func viewCandidate(c store.Candidate) candidateView {
	return candidateView{
		ID: c.ID, Question: c.Question, Answer: c.Answer, Lang: c.Lang,
		UploadID: c.UploadID, CreatedBy: c.CreatedBy, UpdatedBy: c.UpdatedBy,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	var req listQuestionsRequest
	if err := decodeBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, err := h.questions.List(r.Context(), store.CandidateQuery{
		Search: req.Search, UploadID: req.UploadID, Limit: req.Limit, Offset: req.Offset,
	})
	if err != nil {
		h.log.Error("listing questions", "error", err)
		errorResponse(w, http.StatusInternalServerError, "could not list questions")
		return
	}

	out := pageView[candidateView]{
		Data:           make([]candidateView, 0, len(page.Data)),
		TotalRecords:   page.TotalRecords,
		TotalRemaining: page.TotalRemaining,
	}
	for _, c := range page.Data {
		out.Data = append(out.Data, viewCandidate(c))
	}
	jsonResponse(w, http.StatusOK, out)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	var req question.EditRequest
	if err := decodeBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.Question == "" || req.Answer == "" {
		errorResponse(w, http.StatusBadRequest, "id, question and answer are required")
		return
	}

	updated, err := h.questions.Edit(r.Context(), req, userID(r))
	if err != nil {
		h.log.Error("edit failed", "id", req.ID, "error", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, viewCandidate(*updated))
}

type listUploadsRequest struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (h *Handler) listUploads(w http.ResponseWriter, r *http.Request) {
	var req listUploadsRequest
	if err := decodeBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, err := h.store.ListJobs(r.Context(), store.JobQuery{
		Search: req.Search, Limit: req.Limit, Offset: req.Offset,
	})
	if err != nil {
		h.log.Error("listing uploads", "error", err)
		errorResponse(w, http.StatusInternalServerError, "could not list uploads")
		return
	}
	jsonResponse(w, http.StatusOK, pageView[store.JobListItem]{
		Data:           page.Data,
		TotalRecords:   page.TotalRecords,
		TotalRemaining: page.TotalRemaining,
	})
}

func (h *Handler) uploadNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.JobNames(r.Context())
	if err != nil {
		h.log.Error("listing upload names", "error", err)
		errorResponse(w, http.StatusInternalServerError, "could not list upload names")
		return
	}
	jsonResponse(w, http.StatusOK, names)
}

func (h *Handler) deleteUpload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := h.store.DeleteJob(r.Context(), id)
	if err != nil {
		h.log.Error("deleting upload", "id", id, "error", err)
		errorResponse(w, http.StatusInternalServerError, "could not delete upload")
		return
	}
	if !deleted {
		errorResponse(w, http.StatusNotFound, "upload not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"id": id})
}

type listHistoriesRequest struct {
	UserID     string    `json:"userId"`
	ClientType string    `json:"clientType"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
}

func (h *Handler) listHistories(w http.ResponseWriter, r *http.Request) {
	var req listHistoriesRequest
	if err := decodeBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, err := h.store.ListHistories(r.Context(), store.HistoryQuery{
		UserID: req.UserID, ClientType: req.ClientType,
		From: req.From, To: req.To,
		Limit: req.Limit, Offset: req.Offset,
	})
	if err != nil {
		h.log.Error("listing histories", "error", err)
		errorResponse(w, http.StatusInternalServerError, "could not list histories")
		return
	}
	jsonResponse(w, http.StatusOK, pageView[store.ChatHistory]{
		Data:           page.Data,
		TotalRecords:   page.TotalRecords,
		TotalRemaining: page.TotalRemaining,
	})
}

func (h *Handler) clientTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.ClientTypes(r.Context())
	if err != nil {
		h.log.Error("listing client types", "error", err)
		errorResponse(w, http.StatusInternalServerError, "could not list client types")
		return
	}
	jsonResponse(w, http.StatusOK, types)
}
