package postservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/riverfold/inkpress/internal/common"
	"github.com/riverfold/inkpress/internal/markdown"
)

func NewService(db *sql.DB, renderer markdown.Renderer, broker common.MessageProducer, logger *slog.Logger) *Service {
	return &Service{
		m:        newPostModel(db),
		renderer: renderer,
		broker:   broker,
		logger:   logger,
	}
}

type SavePostRequest struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Status      Status   `json:"status"`
}

// PublishedEvent is emitted on the broker whenever a post reaches the
// published state; consumers regenerate secondary artifacts from it.
type PublishedEvent struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// CreatePost inserts a new post in draft or published state.
func (s *Service) CreatePost(ctx context.Context, req *SavePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateSave(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post := &Post{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Tags:        normalizeTags(req.Tags),
		Status:      req.Status,
		Source:      SourceDatabase,
	}

	if req.Status == StatusPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
		post.HTMLContent = s.renderer.Render(req.Content).HTML
	}

	if err := s.m.insert(ctx, post); err != nil {
		return nil, err
	}

	s.snapshotVersion(ctx, post.ID, post.Content)
	if post.Status == StatusPublished {
		s.publishEvent(ctx, post)
	}

	return post, nil
}

// UpdatePost saves an existing post. A slug change re-checks uniqueness (the
// unique index reports the collision); a transition to published refreshes
// the rendered HTML cache column; a content change takes a version snapshot.
// Snapshot and event failures never block the save of primary content.
func (s *Service) UpdatePost(ctx context.Context, slug string, req *SavePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateSave(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	existing, err := s.m.getBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}

	post := &Post{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Tags:        normalizeTags(req.Tags),
		Status:      req.Status,
		Source:      SourceDatabase,
		PublishedAt: existing.PublishedAt,
	}

	if req.Status == StatusPublished {
		if post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		}
		post.HTMLContent = s.renderer.Render(req.Content).HTML
	} else {
		post.PublishedAt = nil
	}

	if err := s.m.update(ctx, existing.ID, post); err != nil {
		return nil, err
	}

	if req.Content != existing.Content {
		s.snapshotVersion(ctx, existing.ID, req.Content)
	}
	if post.Status == StatusPublished {
		s.publishEvent(ctx, post)
	}

	return post, nil
}

// SetStatus flips a post between draft and published without touching its
// content.
func (s *Service) SetStatus(ctx context.Context, slug string, status Status) (*Post, error) {
	if status != StatusDraft && status != StatusPublished {
		v := common.NewValidator()
		v.AddError("status", "must be draft or published")
		return nil, v.ValidationError()
	}

	post, err := s.m.getBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}

	if status == StatusPublished {
		if post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		}
		if post.HTMLContent == "" {
			post.HTMLContent = s.renderer.Render(post.Content).HTML
		}
		post.Status = StatusPublished
		if err := s.m.update(ctx, post.ID, post); err != nil {
			return nil, err
		}
		s.publishEvent(ctx, post)
		return post, nil
	}

	post.Status = StatusDraft
	post.PublishedAt = nil
	if err := s.m.setStatus(ctx, slug, StatusDraft, nil); err != nil {
		return nil, err
	}

	return post, nil
}

// GetForEdit returns a post including drafts, for the editor only.
func (s *Service) GetForEdit(ctx context.Context, slug string) (*Post, error) {
	return s.m.getBySlug(ctx, slug, true)
}

func (s *Service) Versions(ctx context.Context, slug string) ([]Version, error) {
	post, err := s.m.getBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}

	return s.m.listVersions(ctx, post.ID)
}

// RecordView bumps the view counter for a database post. File posts have no
// row to count against; the caller skips them.
func (s *Service) RecordView(ctx context.Context, slug string) error {
	return s.m.incrementViews(ctx, slug)
}

func (s *Service) Like(ctx context.Context, slug string) (int, error) {
	return s.m.incrementLikes(ctx, slug)
}

// snapshotVersion stores a content snapshot, skipping when the latest
// snapshot already holds the same text. Failure is logged and swallowed: the
// save of primary content must not be blocked by it.
func (s *Service) snapshotVersion(ctx context.Context, postID int, content string) {
	if last, err := s.m.latestVersionContent(ctx, postID); err == nil && last == content {
		return
	}

	if err := s.m.insertVersion(ctx, postID, content); err != nil {
		s.logger.Error("could not snapshot post version", slog.Int("post_id", postID), slog.String("error", err.Error()))
	}
}

func (s *Service) publishEvent(ctx context.Context, post *Post) {
	msg, err := json.Marshal(PublishedEvent{Slug: post.Slug, Title: post.Title})
	if err != nil {
		s.logger.Error("could not marshal published event", slog.String("error", err.Error()))
		return
	}

	if err := s.broker.Publish(ctx, msg, common.PostPublishedKey, common.BlogExchange); err != nil {
		s.logger.Error("could not publish post event", slog.String("slug", post.Slug), slog.String("error", err.Error()))
	}
}
