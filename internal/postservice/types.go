package postservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/riverfold/inkpress/internal/common"
	"github.com/riverfold/inkpress/internal/markdown"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Source string

const (
	SourceFile     Source = "file"
	SourceDatabase Source = "database"
)

// Post is the canonical shape presented to callers regardless of origin.
// Source records provenance for merge precedence and is never persisted.
type Post struct {
	ID          int                `json:"id,omitempty"`
	Slug        string             `json:"slug"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Excerpt     string             `json:"excerpt,omitempty"`
	Content     string             `json:"content"`
	HTMLContent string             `json:"html_content,omitempty"`
	Tags        []string           `json:"tags"`
	Status      Status             `json:"status"`
	Source      Source             `json:"source"`
	Views       int                `json:"views"`
	Likes       int                `json:"likes"`
	ReadingTime string             `json:"reading_time"`
	TOC         []markdown.Heading `json:"table_of_contents,omitempty"`
	PublishedAt *time.Time         `json:"published_at,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (p *Post) Published() bool {
	return p.PublishedAt != nil
}

// Version is a snapshot of a post's content taken whenever the content text
// changes on save.
type Version struct {
	ID        string    `json:"id"`
	PostID    int       `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type PostModel struct {
	db *sql.DB
}

// Store is the narrow read contract both post sources satisfy, and what the
// Resolver merges over.
type Store interface {
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, slug string) (*Post, error)
}

// Service owns the editor write path: draft/publish transitions, the
// rendered-HTML cache column, version snapshots and publish events.
type Service struct {
	m        *PostModel
	renderer markdown.Renderer
	broker   common.MessageProducer
	logger   *slog.Logger
}
