package interview

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("interview session not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyCompleted   = errors.New("interview already completed")
	ErrPreconditionFailed = errors.New("interview not completed")
	ErrConflict           = errors.New("interview session was modified concurrently")
)

// Turn is one question and, once answered, its response.
type Turn struct {
	Question    string     `json:"question" bson:"question"`
	Response    string     `json:"response" bson:"response"`
	AskedAt     time.Time  `json:"askedAt" bson:"askedAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty" bson:"respondedAt,omitempty"`
}

// Answered reports whether the turn has a response.
func (t Turn) Answered() bool { return t.Response != "" }

// Session is one interview. Topics and Template are fixed at creation, Turns is
// append-only, and only the last turn may be unanswered. Version increases on every
// stored update and guards against lost writes.
type Session struct {
	ID          string     `json:"id" bson:"_id"`
	OwnerID     string     `json:"ownerId" bson:"ownerId"`
	Topics      []string   `json:"topics" bson:"topics"`
	Template    string     `json:"template" bson:"template"`
	Turns       []Turn     `json:"turns" bson:"turns"`
	Completed   bool       `json:"completed" bson:"completed"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	Version     int64      `json:"-" bson:"version"`
}

// OpenTurn returns the index of the unanswered last turn, or -1.
func (s *Session) OpenTurn() int {
	if s.Completed || len(s.Turns) == 0 {
		return -1
	}
	last := len(s.Turns) - 1
	if s.Turns[last].Answered() {
		return -1
	}
	return last
}

// AnsweredTurns returns the answered turns in order.
func (s *Session) AnsweredTurns() []Turn {
	out := make([]Turn, 0, len(s.Turns))
	for _, t := range s.Turns {
		if t.Answered() {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Topics = append([]string(nil), s.Topics...)
	c.Turns = make([]Turn, len(s.Turns))
	for i, t := range s.Turns {
		c.Turns[i] = t
		if t.RespondedAt != nil {
			at := *t.RespondedAt
			c.Turns[i].RespondedAt = &at
		}
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// Store persists sessions. Get returns ErrNotFound for unknown ids. Update writes s
// only if the stored version still equals s.Version, then increments s.Version;
// otherwise it returns ErrConflict.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Session, error)
}
