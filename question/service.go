package question

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/faqbase/faqbase/enrich"
	"github.com/faqbase/faqbase/store"
)

const (
	// contextThreshold gates conversational context into the query plan.
	contextThreshold = 0.5
	// answerThreshold is the minimum final score a candidate needs to be
	// returned instead of the no-match sentinel.
	answerThreshold = 0.4

	messageWeight = 0.7
	contextWeight = 0.3
	textWeight    = 0.5

	keywordMatchBonus = 0.2
	keywordBoostBonus = 0.5

	retrievalLimit = 20

	// noMatchAnswer is the sentinel answer text.
	noMatchAnswer = "No relevant information found."

	historyQueueSize = 64
)

// ErrEmptyMessage rejects a search request whose newMessage is blank. It is
// the caller's mistake, as opposed to a retrieval or embedding failure.
var ErrEmptyMessage = errors.New("question: newMessage is required")

// Service answers free-text questions against the stored corpus and owns the
// synchronous edit operation.
type Service struct {
	store    *store.Store
	enricher *enrich.Enricher
	log      *slog.Logger

	history   chan historyRecord
	drained   chan struct{}
	closeOnce sync.Once
}

// NewService wires the service and starts the history worker. Call Close to
// drain it on shutdown.
func NewService(st *store.Store, enricher *enrich.Enricher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		store:    st,
		enricher: enricher,
		log:      log,
		history:  make(chan historyRecord, historyQueueSize),
		drained:  make(chan struct{}),
	}
	go s.drainHistory()
	return s
}

// Close stops the history worker after it has flushed pending entries. It
// is safe to call more than once.
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.history) })
	<-s.drained
}

// Search returns the best-matching stored answer for req.NewMessage, or the
// zero-score sentinel when nothing clears the answer threshold. When a user
// id accompanies the request the returned answer is also appended to that
// user's rolling history, detached from this call.
func (s *Service) Search(ctx context.Context, req Request) (*Answer, error) {
	if strings.TrimSpace(req.NewMessage) == "" {
		return nil, ErrEmptyMessage
	}

	plan, err := s.composePlan(ctx, req.NewMessage, req.Messages)
	if err != nil {
		return nil, fmt.Errorf("question: composing query plan: %w", err)
	}

	hits, err := s.store.TopK(ctx, store.SearchSpec{
		Primary:         plan.primary,
		Secondary:       plan.secondary,
		PrimaryWeight:   plan.primaryWeight,
		SecondaryWeight: plan.secondaryWeight,
		Query:           req.NewMessage,
		Lang:            req.Lang,
		Limit:           retrievalLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("question: retrieving candidates: %w", err)
	}

	scored := scoreCandidates(hits, ExtractKeywords(req.NewMessage))

	answer := &Answer{Question: req.NewMessage, Answer: noMatchAnswer}
	if len(scored) > 0 && scored[0].FinalScore >= answerThreshold {
		top := scored[0]
		id := top.ID
		answer = &Answer{
			ID:                 &id,
			Question:           top.Question,
			Answer:             top.Answer,
			CombinedSimilarity: top.CombinedSimilarity,
			TextSimilarity:     top.TextSimilarity,
			KeywordMatchScore:  top.KeywordMatchScore,
			FinalScore:         top.FinalScore,
		}
	}

	if req.UserID != "" {
		s.dispatchHistory(req, *answer)
	}
	return answer, nil
}

// Edit re-enriches an existing candidate with new texts and overwrites it in
// place. The identifier and creation metadata survive unchanged.
func (s *Service) Edit(ctx context.Context, req EditRequest, userID string) (*store.Candidate, error) {
	lang, vec, err := s.enricher.Enrich(ctx, req.Question, req.Answer)
	if err != nil {
		return nil, fmt.Errorf("question: enriching edit: %w", err)
	}
	err = s.store.UpdateCandidate(ctx, req.ID, store.CandidateUpdate{
		Question:  req.Question,
		Answer:    req.Answer,
		Lang:      lang,
		Embedding: vec,
		UpdatedBy: userID,
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetCandidate(ctx, req.ID)
}

// List exposes the candidate listing for the management surface.
func (s *Service) List(ctx context.Context, q store.CandidateQuery) (*store.CandidatePage, error) {
	return s.store.ListCandidates(ctx, q)
}

type historyRecord struct {
	userID     string
	clientType string
	entry      historyEntry
}

type historyEntry struct {
	Date time.Time `json:"date"`
	Answer
}

// dispatchHistory hands the entry to the detached worker. The send never
// blocks: when the queue is full the entry is dropped and logged, because
// history is best-effort and must not delay the search response.
func (s *Service) dispatchHistory(req Request, answer Answer) {
	rec := historyRecord{
		userID:     req.UserID,
		clientType: req.ClientType,
		entry:      historyEntry{Date: time.Now().UTC(), Answer: answer},
	}
	select {
	case s.history <- rec:
	default:
		s.log.Warn("history queue full, dropping entry", "userId", req.UserID)
	}
}

func (s *Service) drainHistory() {
	defer close(s.drained)
	for rec := range s.history {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.AppendHistory(ctx, rec.userID, rec.clientType, rec.entry); err != nil {
			s.log.Error("appending chat history", "userId", rec.userID, "error", err)
		}
		cancel()
	}
}
