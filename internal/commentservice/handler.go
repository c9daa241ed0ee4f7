package commentservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/riverfold/inkpress/internal/common"
)

func NewCommentService(db *sql.DB, broker common.MessageProducer, secret string, logger *slog.Logger) *CommentService {
	return &CommentService{
		m:      newCommentModel(db),
		broker: broker,
		secret: secret,
		logger: logger,
	}
}

type CreateCommentRequest struct {
	Slug       string `json:"slug"`
	Author     string `json:"author"`
	Body       string `json:"body"`
	ParentID   *int64 `json:"parent_id"`
	RemoteAddr string `json:"-"`
}

// CreatedEvent is emitted on the broker after a comment is stored; the mail
// consumer turns it into an owner notification.
type CreatedEvent struct {
	Slug   string `json:"slug"`
	Author string `json:"author"`
	Body   string `json:"body"`
}

// Create stores a new comment. A reply's parent must exist and belong to the
// same post, otherwise the write is rejected rather than leaving an orphan.
func (s *CommentService) Create(ctx context.Context, req *CreateCommentRequest) (*Comment, error) {
	v := common.NewValidator()
	validateComment(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if req.ParentID != nil {
		slug, err := s.m.parentSlug(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return nil, common.NewError(common.KindNotFound, "parent comment not found")
			}
			return nil, err
		}
		if slug != req.Slug {
			return nil, common.NewError(common.KindValidation, "parent comment belongs to a different post")
		}
	}

	author, tripcode := splitTripcode(req.Author, s.secret)
	if author == "" {
		author = "Anonymous"
	}

	comment := &Comment{
		Slug:     req.Slug,
		ParentID: req.ParentID,
		Author:   author,
		Body:     req.Body,
		DailyID:  dailyID(req.RemoteAddr, time.Now(), s.secret),
		Tripcode: tripcode,
	}

	if err := s.m.insert(ctx, comment); err != nil {
		return nil, err
	}

	s.publishCreated(ctx, comment)

	return comment, nil
}

// ListBySlug returns the flat comment list for a post, oldest first.
func (s *CommentService) ListBySlug(ctx context.Context, slug string) ([]Comment, error) {
	v := common.NewValidator()
	v.Check(slug != "", "slug", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.listBySlug(ctx, slug)
}

// Thread fetches and groups a post's comments in one call.
func (s *CommentService) Thread(ctx context.Context, slug string) (Thread, error) {
	comments, err := s.ListBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return BuildThread(comments), nil
}

// Delete removes a comment. Deleting an id that is already gone reports
// not-found, which callers treat as an idempotent no-op.
func (s *CommentService) Delete(ctx context.Context, id int64) error {
	if err := s.m.delete(ctx, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return common.NewError(common.KindNotFound, "comment not found")
		}
		return err
	}
	return nil
}

// MarkChecked flags a comment as reviewed by the post owner.
func (s *CommentService) MarkChecked(ctx context.Context, id int64) error {
	if err := s.m.markChecked(ctx, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return common.NewError(common.KindNotFound, "comment not found")
		}
		return err
	}
	return nil
}

// publishCreated emits the broker event; failure is logged and swallowed so a
// notification outage never rejects a comment.
func (s *CommentService) publishCreated(ctx context.Context, c *Comment) {
	msg, err := json.Marshal(CreatedEvent{Slug: c.Slug, Author: c.Author, Body: c.Body})
	if err != nil {
		s.logger.Error("could not marshal comment event", slog.String("error", err.Error()))
		return
	}

	if err := s.broker.Publish(ctx, msg, common.CommentCreatedKey, common.BlogExchange); err != nil {
		s.logger.Error("could not publish comment event", slog.String("slug", c.Slug), slog.String("error", err.Error()))
	}
}
