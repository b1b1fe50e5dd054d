package content

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("content not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrExportUnavailable = errors.New("export storage not configured")
)

// Status is the publication state of an artifact.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ParseStatus accepts "", "draft" or "published".
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusDraft, StatusPublished:
		return Status(s), nil
	}
	return "", ErrInvalidInput
}

// Event is an analytics counter that can be incremented.
type Event string

const (
	EventView       Event = "view"
	EventShare      Event = "share"
	EventEngagement Event = "engagement"
)

// Field returns the analytics document field for e.
func (e Event) Field() (string, bool) {
	switch e {
	case EventView:
		return "views", true
	case EventShare:
		return "shares", true
	case EventEngagement:
		return "engagement", true
	}
	return "", false
}

// Analytics counters are only ever incremented.
type Analytics struct {
	Views      int64 `json:"views" bson:"views"`
	Shares     int64 `json:"shares" bson:"shares"`
	Engagement int64 `json:"engagement" bson:"engagement"`
}

// Artifact is an article generated from a completed interview.
type Artifact struct {
	ID          string     `json:"id" bson:"_id"`
	OwnerID     string     `json:"ownerId" bson:"ownerId"`
	SessionID   string     `json:"sessionId" bson:"sessionId"`
	Title       string     `json:"title" bson:"title"`
	Body        string     `json:"content" bson:"body"`
	Template    string     `json:"template" bson:"template"`
	Topics      []string   `json:"topics" bson:"topics"`
	ViralScore  int        `json:"viralScore" bson:"viralScore"`
	Status      Status     `json:"status" bson:"status"`
	Analytics   Analytics  `json:"analytics" bson:"analytics"`
	Fallback    bool       `json:"fallback,omitempty" bson:"fallback,omitempty"`
	ExportKey   string     `json:"exportKey,omitempty" bson:"exportKey,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
}

// Clone returns a deep copy.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	c := *a
	c.Topics = append([]string(nil), a.Topics...)
	if a.PublishedAt != nil {
		at := *a.PublishedAt
		c.PublishedAt = &at
	}
	return &c
}

// Patch is a partial edit; nil fields are left alone.
type Patch struct {
	Title     *string
	Body      *string
	Status    *Status
	ExportKey *string
	At        time.Time
}

// Store persists artifacts. Get, Update, Delete and IncrementAnalytics return
// ErrNotFound for unknown ids. FindBySession returns (nil, nil) when none exists.
type Store interface {
	Create(ctx context.Context, a *Artifact) error
	Get(ctx context.Context, id string) (*Artifact, error)
	ListByOwner(ctx context.Context, ownerID string, status Status) ([]*Artifact, error)
	FindBySession(ctx context.Context, ownerID, sessionID string) (*Artifact, error)
	Update(ctx context.Context, id string, p Patch) (*Artifact, error)
	Delete(ctx context.Context, id string) error
	IncrementAnalytics(ctx context.Context, id string, e Event) (*Artifact, error)
}
