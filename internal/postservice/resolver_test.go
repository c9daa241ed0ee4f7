package postservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/riverfold/inkpress/internal/common"
)

type stubStore struct {
	posts []Post
	err   error
}

func (s *stubStore) List(ctx context.Context) ([]Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.posts, nil
}

func (s *stubStore) Get(ctx context.Context, slug string) (*Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.posts {
		if s.posts[i].Slug == slug {
			return &s.posts[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func newTestResolver(t *testing.T, db, files Store) *Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewResolver(db, files, common.NewCache(5*time.Minute, 10*time.Minute), logger)
}

func TestResolverMergePrecedence(t *testing.T) {
	db := &stubStore{posts: []Post{
		{Slug: "welcome", Title: "DB Welcome", Source: SourceDatabase, PublishedAt: ts("2024-02-01")},
	}}
	files := &stubStore{posts: []Post{
		{Slug: "welcome", Title: "File Welcome", Source: SourceFile, PublishedAt: ts("2024-01-01")},
		{Slug: "about", Title: "About", Source: SourceFile, PublishedAt: ts("2024-03-01")},
	}}

	r := newTestResolver(t, db, files)

	posts, err := r.AllPosts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, posts, 2)

	// newest first, and the database entry wins the slug collision
	assert.Equal(t, "about", posts[0].Slug)
	assert.Equal(t, "welcome", posts[1].Slug)
	assert.Equal(t, "DB Welcome", posts[1].Title)

	post, err := r.Post(context.Background(), "welcome")
	assert.NoError(t, err)
	assert.Equal(t, "DB Welcome", post.Title)
	assert.Equal(t, SourceDatabase, post.Source)
}

func TestResolverDatabaseFailureFallback(t *testing.T) {
	db := &stubStore{err: errors.New("connection refused")}
	files := &stubStore{posts: []Post{
		{Slug: "older", PublishedAt: ts("2024-01-01"), Source: SourceFile},
		{Slug: "newer", PublishedAt: ts("2024-02-01"), Source: SourceFile},
	}}

	r := newTestResolver(t, db, files)

	posts, err := r.AllPosts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Slug)
	assert.Equal(t, "older", posts[1].Slug)

	post, err := r.Post(context.Background(), "newer")
	assert.NoError(t, err)
	assert.Equal(t, SourceFile, post.Source)
}

func TestResolverEmptyStores(t *testing.T) {
	r := newTestResolver(t, &stubStore{}, &stubStore{})

	posts, err := r.AllPosts(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, posts)
}

func TestResolverBothStoresFail(t *testing.T) {
	r := newTestResolver(t, &stubStore{err: errors.New("db down")}, &stubStore{err: errors.New("fs broken")})

	_, err := r.AllPosts(context.Background())
	assert.Error(t, err)
}

func TestResolverPostNotFound(t *testing.T) {
	r := newTestResolver(t, &stubStore{}, &stubStore{})

	_, err := r.Post(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestResolverPostsByTag(t *testing.T) {
	files := &stubStore{posts: []Post{
		{Slug: "a", Tags: []string{"go", "web"}, PublishedAt: ts("2024-01-01")},
		{Slug: "b", Tags: []string{"rust"}, PublishedAt: ts("2024-02-01")},
	}}

	r := newTestResolver(t, &stubStore{}, files)

	posts, err := r.PostsByTag(context.Background(), "go")
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].Slug)
}

func TestResolverAllTags(t *testing.T) {
	files := &stubStore{posts: []Post{
		{Slug: "a", Tags: []string{"go", "web"}},
		{Slug: "b", Tags: []string{"go", "rust"}},
	}}

	r := newTestResolver(t, &stubStore{}, files)

	tags, err := r.AllTags(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"go", "rust", "web"}, tags)
}

func TestRelatedPosts(t *testing.T) {
	files := &stubStore{posts: []Post{
		{Slug: "target", Tags: []string{"go", "web", "db"}, PublishedAt: ts("2024-01-01")},
		{Slug: "two-shared", Tags: []string{"go", "web"}, PublishedAt: ts("2023-01-01")},
		{Slug: "one-shared-new", Tags: []string{"go"}, PublishedAt: ts("2024-06-01")},
		{Slug: "one-shared-old", Tags: []string{"db"}, PublishedAt: ts("2023-06-01")},
		{Slug: "unrelated", Tags: []string{"cooking"}, PublishedAt: ts("2024-07-01")},
	}}

	r := newTestResolver(t, &stubStore{}, files)

	related, err := r.RelatedPosts(context.Background(), "target", 10)
	assert.NoError(t, err)

	slugs := make([]string, len(related))
	for i, p := range related {
		slugs[i] = p.Slug
	}

	// two shared tags beat recency; zero shared tags never appear
	assert.Equal(t, []string{"two-shared", "one-shared-new", "one-shared-old"}, slugs)
	assert.NotContains(t, slugs, "target")
	assert.NotContains(t, slugs, "unrelated")
}

func TestRelatedPostsLimit(t *testing.T) {
	files := &stubStore{posts: []Post{
		{Slug: "target", Tags: []string{"go"}, PublishedAt: ts("2024-01-01")},
		{Slug: "a", Tags: []string{"go"}, PublishedAt: ts("2024-02-01")},
		{Slug: "b", Tags: []string{"go"}, PublishedAt: ts("2024-03-01")},
		{Slug: "c", Tags: []string{"go"}, PublishedAt: ts("2024-04-01")},
	}}

	r := newTestResolver(t, &stubStore{}, files)

	related, err := r.RelatedPosts(context.Background(), "target", 2)
	assert.NoError(t, err)
	assert.Len(t, related, 2)
	assert.Equal(t, "c", related[0].Slug)
	assert.Equal(t, "b", related[1].Slug)
}
