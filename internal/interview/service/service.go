package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/internal/generation"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview/lock"
	"github.com/authorityai/authorityai/backend/go-services/internal/templates"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/metrics"
	"github.com/google/uuid"
)

// Questioner produces the next interview question. It never fails.
type Questioner interface {
	Next(ctx context.Context, req generation.QuestionRequest) string
}

type StartRequest struct {
	OwnerID  string   `json:"-"`
	Topics   []string `json:"topics"`
	Template string   `json:"template"`
}

type StartResult struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
	Progress  int    `json:"progress"`
}

type RespondRequest struct {
	OwnerID   string `json:"-"`
	SessionID string `json:"-"`
	Response  string `json:"response"`
}

// RespondResult carries the next question, or Completed with Progress 100.
type RespondResult struct {
	Question  string `json:"question,omitempty"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
}

// SessionView is a session as shown to its owner.
type SessionView struct {
	*interview.Session
	Progress        int    `json:"progress"`
	CurrentQuestion string `json:"currentQuestion,omitempty"`
}

// Service runs the interview state machine. Mutations of one session are
// serialized by the locker and guarded by the store's version check.
type Service struct {
	store     interview.Store
	locker    lock.Locker
	questions Questioner
	policy    interview.Policy
	catalog   *templates.Catalog
	now       func() time.Time
}

func NewService(store interview.Store, locker lock.Locker, q Questioner, policy interview.Policy) *Service {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &Service{
		store:     store,
		locker:    locker,
		questions: q,
		policy:    policy,
		catalog:   templates.Default(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Templates lists the formats accepted by Start.
func (s *Service) Templates() []templates.Template { return s.catalog.List() }

// Start validates the request, asks the first question and stores the new session.
func (s *Service) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	topics := make([]string, 0, len(req.Topics))
	for _, t := range req.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: at least one topic is required", interview.ErrInvalidInput)
	}
	tpl, ok := s.catalog.Lookup(req.Template)
	if !ok {
		return nil, fmt.Errorf("%w: unknown template %q", interview.ErrInvalidInput, req.Template)
	}

	question := s.questions.Next(ctx, generation.QuestionRequest{Topics: topics, Template: tpl})
	now := s.now()
	sess := &interview.Session{
		ID:        uuid.NewString(),
		OwnerID:   req.OwnerID,
		Topics:    topics,
		Template:  tpl.ID,
		Turns:     []interview.Turn{{Question: question, AskedAt: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	metrics.InterviewEvents.WithLabelValues("started").Inc()
	logger.Debugf("interview %s started by %s (%s, %d topics)", sess.ID, req.OwnerID, tpl.ID, len(topics))
	return &StartResult{SessionID: sess.ID, Question: question, Progress: 0}, nil
}

// Respond answers the open turn. On the terminal answer the session completes and no
// further question is generated.
func (s *Service) Respond(ctx context.Context, req RespondRequest) (*RespondResult, error) {
	unlock, err := s.locker.Lock(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	sess, err := s.load(ctx, req.OwnerID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Completed {
		return nil, interview.ErrAlreadyCompleted
	}
	text := strings.TrimSpace(req.Response)
	if text == "" {
		return nil, fmt.Errorf("%w: response must not be empty", interview.ErrInvalidInput)
	}
	open := sess.OpenTurn()
	if open < 0 {
		return nil, fmt.Errorf("session %s has no open turn", sess.ID)
	}

	now := s.now()
	sess.Turns[open].Response = text
	sess.Turns[open].RespondedAt = &now
	sess.UpdatedAt = now

	answered := len(sess.AnsweredTurns())
	percent, done := s.policy.Report(answered)
	if done {
		sess.Completed = true
		sess.CompletedAt = &now
		if err := s.store.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		metrics.InterviewEvents.WithLabelValues("completed").Inc()
		return &RespondResult{Progress: 100, Completed: true}, nil
	}

	tpl, _ := s.catalog.Lookup(sess.Template)
	question := s.questions.Next(ctx, generation.QuestionRequest{
		Topics:   sess.Topics,
		Template: tpl,
		History:  Transcript(sess),
	})
	sess.Turns = append(sess.Turns, interview.Turn{Question: question, AskedAt: s.now()})
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	metrics.InterviewEvents.WithLabelValues("answered").Inc()
	return &RespondResult{Question: question, Progress: percent}, nil
}

// Complete ends an interview early. At least one turn must be answered; the open
// turn stays unanswered and is left out of the transcript.
func (s *Service) Complete(ctx context.Context, ownerID, sessionID string) (*RespondResult, error) {
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	sess, err := s.load(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Completed {
		return nil, interview.ErrAlreadyCompleted
	}
	if len(sess.AnsweredTurns()) == 0 {
		return nil, fmt.Errorf("%w: answer at least one question before completing", interview.ErrInvalidInput)
	}
	now := s.now()
	sess.Completed = true
	sess.CompletedAt = &now
	sess.UpdatedAt = now
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	metrics.InterviewEvents.WithLabelValues("completed_early").Inc()
	return &RespondResult{Progress: 100, Completed: true}, nil
}

// Get returns the owner's session with its current progress.
func (s *Service) Get(ctx context.Context, ownerID, sessionID string) (*SessionView, error) {
	sess, err := s.load(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// List returns the owner's sessions, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]*SessionView, error) {
	list, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*SessionView, 0, len(list))
	for _, sess := range list {
		out = append(out, s.view(sess))
	}
	return out, nil
}

// Session returns the owner's raw session for downstream synthesis.
func (s *Service) Session(ctx context.Context, ownerID, sessionID string) (*interview.Session, error) {
	return s.load(ctx, ownerID, sessionID)
}

func (s *Service) view(sess *interview.Session) *SessionView {
	v := &SessionView{Session: sess}
	if sess.Completed {
		v.Progress = 100
		return v
	}
	v.Progress, _ = s.policy.Report(len(sess.AnsweredTurns()))
	if open := sess.OpenTurn(); open >= 0 {
		v.CurrentQuestion = sess.Turns[open].Question
	}
	return v
}

// load hides other owners' sessions behind ErrNotFound.
func (s *Service) load(ctx context.Context, ownerID, sessionID string) (*interview.Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.OwnerID != ownerID {
		return nil, interview.ErrNotFound
	}
	return sess, nil
}

// Transcript returns the answered exchanges of sess in order.
func Transcript(sess *interview.Session) []generation.Exchange {
	answered := sess.AnsweredTurns()
	out := make([]generation.Exchange, 0, len(answered))
	for _, t := range answered {
		out = append(out, generation.Exchange{Question: t.Question, Response: t.Response})
	}
	return out
}
