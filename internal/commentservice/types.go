package commentservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/riverfold/inkpress/internal/common"
)

// Comment belongs to a post's slug; ParentID nil means a top-level comment.
// DailyID and Tripcode are pseudonymous per-day markers, not identities.
type Comment struct {
	ID        int64      `json:"id"`
	Slug      string     `json:"slug"`
	ParentID  *int64     `json:"parent_id,omitempty"`
	Author    string     `json:"author"`
	Body      string     `json:"body"`
	DailyID   string     `json:"daily_id"`
	Tripcode  string     `json:"tripcode,omitempty"`
	Checked   bool       `json:"checked"`
	CreatedAt time.Time  `json:"created_at"`
}

type CommentModel struct {
	db *sql.DB
}

type CommentService struct {
	m      *CommentModel
	broker common.MessageProducer
	secret string
	logger *slog.Logger
}
