package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/internal/content"
	"github.com/authorityai/authorityai/backend/go-services/internal/generation"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview/lock"
	isvc "github.com/authorityai/authorityai/backend/go-services/internal/interview/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/scoring"
	"github.com/authorityai/authorityai/backend/go-services/internal/storage"
	"github.com/authorityai/authorityai/backend/go-services/internal/templates"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/metrics"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yuin/goldmark"
)

// SessionSource resolves an owner's interview session.
type SessionSource interface {
	Session(ctx context.Context, ownerID, sessionID string) (*interview.Session, error)
}

// Writer turns a transcript into an article. It never fails.
type Writer interface {
	Synthesize(ctx context.Context, req generation.ArticleRequest) generation.Article
}

type GenerateRequest struct {
	OwnerID    string `json:"-"`
	SessionID  string `json:"sessionId"`
	Regenerate bool   `json:"regenerate"`
}

type GenerateResult struct {
	ContentID  string `json:"contentId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	ViralScore int    `json:"viralScore"`
	Existing   bool   `json:"existing,omitempty"`
}

type UpdateRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"content"`
}

type ExportResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Summary is a compact artifact row for dashboards.
type Summary struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Status     content.Status    `json:"status"`
	ViralScore int               `json:"viralScore"`
	Analytics  content.Analytics `json:"analytics"`
}

// Dashboard aggregates an owner's artifacts.
type Dashboard struct {
	TotalContent      int       `json:"totalContent"`
	Drafts            int       `json:"drafts"`
	Published         int       `json:"published"`
	TotalViews        int64     `json:"totalViews"`
	TotalShares       int64     `json:"totalShares"`
	TotalEngagement   int64     `json:"totalEngagement"`
	AverageViralScore float64   `json:"averageViralScore"`
	TopContent        []Summary `json:"topContent"`
}

// Option configures optional collaborators.
type Option func(*Service)

// WithObjectStore enables exports, with download links valid for ttl.
func WithObjectStore(s storage.ObjectStore, ttl time.Duration) Option {
	return func(svc *Service) {
		svc.objects = s
		if ttl > 0 {
			svc.exportTTL = ttl
		}
	}
}

// WithLocker serializes generation per session across processes sharing l.
func WithLocker(l lock.Locker) Option {
	return func(svc *Service) {
		if l != nil {
			svc.locker = l
		}
	}
}

// WithHTMLCacheSize sets how many rendered bodies are kept.
func WithHTMLCacheSize(n int) Option {
	return func(svc *Service) { svc.htmlSize = n }
}

// Service implements artifact generation and the content library.
type Service struct {
	store     content.Store
	sessions  SessionSource
	writer    Writer
	scorer    scoring.ViralScorer
	objects   storage.ObjectStore
	locker    lock.Locker
	exportTTL time.Duration
	htmlSize  int
	html      *lru.Cache[string, string]
	md        goldmark.Markdown
	now       func() time.Time
}

func NewService(store content.Store, sessions SessionSource, writer Writer, scorer scoring.ViralScorer, opts ...Option) (*Service, error) {
	if scorer == nil {
		scorer = scoring.NewPlaceholderViral(nil)
	}
	s := &Service{
		store:     store,
		sessions:  sessions,
		writer:    writer,
		scorer:    scorer,
		exportTTL: time.Hour,
		htmlSize:  256,
		locker:    lock.NewLocalLocker(),
		md:        goldmark.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	if s.htmlSize <= 0 {
		s.htmlSize = 1
	}
	cache, err := lru.New[string, string](s.htmlSize)
	if err != nil {
		return nil, fmt.Errorf("html cache: %w", err)
	}
	s.html = cache
	return s, nil
}

// Synthesize writes the article for a completed session. Incomplete sessions fail
// with interview.ErrPreconditionFailed.
func (s *Service) Synthesize(ctx context.Context, sess *interview.Session) (generation.Article, error) {
	if !sess.Completed {
		return generation.Article{}, interview.ErrPreconditionFailed
	}
	tpl, ok := templates.Lookup(sess.Template)
	if !ok {
		tpl = templates.Template{ID: sess.Template}
	}
	return s.writer.Synthesize(ctx, generation.ArticleRequest{
		Topics:     sess.Topics,
		Template:   tpl,
		Transcript: isvc.Transcript(sess),
	}), nil
}

// Generate returns the artifact for a completed session, creating it on first call.
// Regenerate forces a new artifact even if one already exists.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("%w: sessionId is required", content.ErrInvalidInput)
	}
	sess, err := s.sessions.Session(ctx, req.OwnerID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Completed {
		return nil, interview.ErrPreconditionFailed
	}
	unlock, err := s.locker.Lock(ctx, "content:"+sess.ID)
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", sess.ID, err)
	}
	defer unlock()
	if !req.Regenerate {
		existing, err := s.store.FindBySession(ctx, req.OwnerID, req.SessionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &GenerateResult{ContentID: existing.ID, Title: existing.Title, Content: existing.Body, ViralScore: existing.ViralScore, Existing: true}, nil
		}
	}

	article, err := s.Synthesize(ctx, sess)
	if err != nil {
		return nil, err
	}
	score := s.scorer.ViralScore(ctx, scoring.Draft{Title: article.Title, Body: article.Body, Template: sess.Template, Topics: sess.Topics})
	now := s.now()
	a := &content.Artifact{
		ID:         uuid.NewString(),
		OwnerID:    req.OwnerID,
		SessionID:  sess.ID,
		Title:      article.Title,
		Body:       article.Body,
		Template:   sess.Template,
		Topics:     append([]string(nil), sess.Topics...),
		ViralScore: score,
		Status:     content.StatusDraft,
		Fallback:   article.Fallback,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}
	metrics.ContentCreated.Inc()
	logger.Infof("content %s generated from interview %s (fallback=%v)", a.ID, sess.ID, article.Fallback)
	return &GenerateResult{ContentID: a.ID, Title: a.Title, Content: a.Body, ViralScore: a.ViralScore}, nil
}

// List returns the owner's artifacts, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, ownerID, status string) ([]*content.Artifact, error) {
	st, err := content.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown status %q", content.ErrInvalidInput, status)
	}
	return s.store.ListByOwner(ctx, ownerID, st)
}

// Get returns an artifact owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*content.Artifact, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != ownerID {
		return nil, content.ErrNotFound
	}
	return a, nil
}

// Update edits title and/or body. A provided title must not be blank.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateRequest) (*content.Artifact, error) {
	if req.Title == nil && req.Body == nil {
		return nil, fmt.Errorf("%w: nothing to update", content.ErrInvalidInput)
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title must not be empty", content.ErrInvalidInput)
		}
		req.Title = &t
	}
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, content.Patch{Title: req.Title, Body: req.Body, At: s.now()})
}

// Publish moves a draft to published. Publishing again is a no-op.
func (s *Service) Publish(ctx context.Context, ownerID, id string) (*content.Artifact, error) {
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if a.Status == content.StatusPublished {
		return a, nil
	}
	pub := content.StatusPublished
	return s.store.Update(ctx, id, content.Patch{Status: &pub, At: s.now()})
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Track increments an analytics counter. Published artifacts accept events from any
// authenticated caller, drafts only from their owner.
func (s *Service) Track(ctx context.Context, callerID, id string, e content.Event) (*content.Analytics, error) {
	if _, ok := e.Field(); !ok {
		return nil, fmt.Errorf("%w: unknown event %q", content.ErrInvalidInput, e)
	}
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != callerID && a.Status != content.StatusPublished {
		return nil, content.ErrNotFound
	}
	a, err = s.store.IncrementAnalytics(ctx, id, e)
	if err != nil {
		return nil, err
	}
	return &a.Analytics, nil
}

// HTML renders the markdown body. Renders are cached per artifact revision.
func (s *Service) HTML(ctx context.Context, ownerID, id string) (string, error) {
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s:%d", a.ID, a.UpdatedAt.UnixNano())
	if out, ok := s.html.Get(key); ok {
		return out, nil
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(a.Body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	out := buf.String()
	s.html.Add(key, out)
	return out, nil
}

// Export uploads the article as markdown and returns a download link.
func (s *Service) Export(ctx context.Context, ownerID, id string) (*ExportResult, error) {
	if s.objects == nil {
		return nil, content.ErrExportUnavailable
	}
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("exports/%s/%s.md", ownerID, a.ID)
	doc := fmt.Sprintf("# %s\n\n%s\n", a.Title, a.Body)
	if err := s.objects.Put(ctx, key, "text/markdown; charset=utf-8", []byte(doc)); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.objects.PresignGet(ctx, key, s.exportTTL)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}
	if _, err := s.store.Update(ctx, id, content.Patch{ExportKey: &key, At: a.UpdatedAt}); err != nil {
		return nil, err
	}
	return &ExportResult{URL: url, Key: key, ExpiresAt: s.now().Add(s.exportTTL)}, nil
}

// Dashboard summarizes the owner's library.
func (s *Service) Dashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	list, err := s.store.ListByOwner(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}
	d := &Dashboard{TopContent: []Summary{}}
	var scoreSum int
	for _, a := range list {
		d.TotalContent++
		switch a.Status {
		case content.StatusPublished:
			d.Published++
		default:
			d.Drafts++
		}
		d.TotalViews += a.Analytics.Views
		d.TotalShares += a.Analytics.Shares
		d.TotalEngagement += a.Analytics.Engagement
		scoreSum += a.ViralScore
		d.TopContent = append(d.TopContent, Summary{ID: a.ID, Title: a.Title, Status: a.Status, ViralScore: a.ViralScore, Analytics: a.Analytics})
	}
	if d.TotalContent > 0 {
		d.AverageViralScore = float64(scoreSum) / float64(d.TotalContent)
	}
	sort.SliceStable(d.TopContent, func(i, j int) bool { return d.TopContent[i].ViralScore > d.TopContent[j].ViralScore })
	if len(d.TopContent) > 3 {
		d.TopContent = d.TopContent[:3]
	}
	return d, nil
}
