package commentservice

import (
	"context"
	"database/sql"
	"errors"
)

var ErrRecordNotFound = errors.New("record not found")

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

func (m *CommentModel) insert(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (slug, parent_id, author, body, daily_id, tripcode)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return m.db.QueryRowContext(ctx, query, c.Slug, c.ParentID, c.Author, c.Body, c.DailyID, c.Tripcode).
		Scan(&c.ID, &c.CreatedAt)
}

// listBySlug returns the flat comment list oldest first; thread ordering is
// applied by BuildThread.
func (m *CommentModel) listBySlug(ctx context.Context, slug string) ([]Comment, error) {
	query := `
		SELECT id, slug, parent_id, author, body, daily_id, tripcode, checked, created_at
		FROM comments
		WHERE slug = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := m.db.QueryContext(ctx, query, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		var parentID sql.NullInt64
		var tripcode sql.NullString

		err := rows.Scan(&c.ID, &c.Slug, &parentID, &c.Author, &c.Body, &c.DailyID, &tripcode, &c.Checked, &c.CreatedAt)
		if err != nil {
			return nil, err
		}

		if parentID.Valid {
			v := parentID.Int64
			c.ParentID = &v
		}
		c.Tripcode = tripcode.String

		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// parentSlug returns the slug owning the given comment id, for reply
// validation.
func (m *CommentModel) parentSlug(ctx context.Context, id int64) (string, error) {
	var slug string
	err := m.db.QueryRowContext(ctx, `SELECT slug FROM comments WHERE id = $1`, id).Scan(&slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrRecordNotFound
		}
		return "", err
	}
	return slug, nil
}

func (m *CommentModel) delete(ctx context.Context, id int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
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

func (m *CommentModel) markChecked(ctx context.Context, id int64) error {
	res, err := m.db.ExecContext(ctx, `UPDATE comments SET checked = true WHERE id = $1`, id)
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
