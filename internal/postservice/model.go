package postservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("duplicate slug")
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// uniqueViolation is a helper function to check if the error is a unique constraint error.
func uniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

const postColumns = `id, slug, title, description, content, html_content, tags, status, views, likes, published_at, updated_at, created_at`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var post Post
	var description, htmlContent sql.NullString
	var publishedAt sql.NullTime

	err := row.Scan(&post.ID, &post.Slug, &post.Title, &description, &post.Content, &htmlContent, pq.Array(&post.Tags), &post.Status, &post.Views, &post.Likes, &publishedAt, &post.UpdatedAt, &post.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	post.Description = description.String
	post.HTMLContent = htmlContent.String
	if publishedAt.Valid {
		t := publishedAt.Time
		post.PublishedAt = &t
	}
	post.Source = SourceDatabase

	return &post, nil
}

func (m *PostModel) listPublished(ctx context.Context) ([]Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE status = 'published'
		ORDER BY published_at DESC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	return posts, rows.Err()
}

// getBySlug returns a post by its slug. Draft posts are only visible when
// includeDrafts is set (the editor path).
func (m *PostModel) getBySlug(ctx context.Context, slug string, includeDrafts bool) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE slug = $1`
	if !includeDrafts {
		query += ` AND status = 'published'`
	}

	return scanPost(m.db.QueryRowContext(ctx, query, slug))
}

func (m *PostModel) insert(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (slug, title, description, content, html_content, tags, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, views, likes, updated_at, created_at`

	err := m.db.QueryRowContext(ctx, query, post.Slug, post.Title, post.Description, post.Content, post.HTMLContent, pq.Array(post.Tags), post.Status, post.PublishedAt).
		Scan(&post.ID, &post.Views, &post.Likes, &post.UpdatedAt, &post.CreatedAt)
	if err != nil {
		switch {
		case uniqueViolation(err, "posts_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	return nil
}

func (m *PostModel) update(ctx context.Context, id int, post *Post) error {
	query := `
		UPDATE posts
		SET slug = $1, title = $2, description = $3, content = $4, html_content = $5, tags = $6, status = $7, published_at = $8, updated_at = now()
		WHERE id = $9
		RETURNING updated_at`

	err := m.db.QueryRowContext(ctx, query, post.Slug, post.Title, post.Description, post.Content, post.HTMLContent, pq.Array(post.Tags), post.Status, post.PublishedAt, id).
		Scan(&post.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		case uniqueViolation(err, "posts_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	post.ID = id
	return nil
}

func (m *PostModel) setStatus(ctx context.Context, slug string, status Status, publishedAt *time.Time) error {
	query := `
		UPDATE posts
		SET status = $1, published_at = $2, updated_at = now()
		WHERE slug = $3`

	res, err := m.db.ExecContext(ctx, query, status, publishedAt, slug)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// incrementViews reads then writes the counter. Two concurrent increments can
// lose one; view counts tolerate that.
func (m *PostModel) incrementViews(ctx context.Context, slug string) error {
	var views int
	err := m.db.QueryRowContext(ctx, `SELECT views FROM posts WHERE slug = $1`, slug).Scan(&views)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return err
	}

	_, err = m.db.ExecContext(ctx, `UPDATE posts SET views = $1 WHERE slug = $2`, views+1, slug)
	return err
}

func (m *PostModel) incrementLikes(ctx context.Context, slug string) (int, error) {
	var likes int
	err := m.db.QueryRowContext(ctx, `
		UPDATE posts
		SET likes = likes + 1
		WHERE slug = $1
		RETURNING likes`, slug).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrRecordNotFound
		}
		return 0, err
	}

	query := `INSERT INTO post_votes (post_slug, kind) VALUES ($1, 'like')`
	if _, err := m.db.ExecContext(ctx, query, slug); err != nil {
		return 0, err
	}

	return likes, nil
}

func (m *PostModel) insertVersion(ctx context.Context, postID int, content string) error {
	query := `
		INSERT INTO post_versions (id, post_id, content)
		VALUES ($1, $2, $3)`

	_, err := m.db.ExecContext(ctx, query, uuid.NewString(), postID, content)
	return err
}

func (m *PostModel) listVersions(ctx context.Context, postID int) ([]Version, error) {
	query := `
		SELECT id, post_id, content, created_at
		FROM post_versions
		WHERE post_id = $1
		ORDER BY created_at DESC`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.PostID, &v.Content, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

// latestVersionContent returns the content of the most recent snapshot, or
// empty when no snapshot exists yet.
func (m *PostModel) latestVersionContent(ctx context.Context, postID int) (string, error) {
	var content string
	err := m.db.QueryRowContext(ctx, `
		SELECT content
		FROM post_versions
		WHERE post_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, postID).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return content, nil
}
