package postservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/riverfold/inkpress/internal/common"
)

// DBStore adapts PostModel to the Store read contract.
type DBStore struct {
	m *PostModel
}

func NewDBStore(db *sql.DB) *DBStore {
	return &DBStore{m: newPostModel(db)}
}

func (s *DBStore) List(ctx context.Context) ([]Post, error) {
	return s.m.listPublished(ctx)
}

func (s *DBStore) Get(ctx context.Context, slug string) (*Post, error) {
	return s.m.getBySlug(ctx, slug, false)
}

// Resolver merges the database store and the file store into one catalog.
// Database entries win on slug collision; a database outage degrades to
// file-only results instead of failing reads.
type Resolver struct {
	db     Store
	files  Store
	cache  *common.Cache
	logger *slog.Logger
}

func NewResolver(db, files Store, cache *common.Cache, logger *slog.Logger) *Resolver {
	return &Resolver{db: db, files: files, cache: cache, logger: logger}
}

func (r *Resolver) AllPosts(ctx context.Context) ([]Post, error) {
	var (
		wg        sync.WaitGroup
		dbPosts   []Post
		filePosts []Post
		dbErr     error
		fileErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dbPosts, dbErr = r.db.List(ctx)
	}()
	go func() {
		defer wg.Done()
		filePosts, fileErr = r.files.List(ctx)
	}()
	wg.Wait()

	if dbErr != nil {
		r.logger.Warn("database store unavailable, serving file posts only", slog.String("error", dbErr.Error()))
	}
	if fileErr != nil {
		r.logger.Warn("file store unavailable", slog.String("error", fileErr.Error()))
	}
	if dbErr != nil && fileErr != nil {
		return nil, dbErr
	}

	merged := make([]Post, 0, len(dbPosts)+len(filePosts))
	bySlug := make(map[string]struct{}, len(dbPosts))

	for _, p := range dbPosts {
		merged = append(merged, p)
		bySlug[p.Slug] = struct{}{}
	}
	for _, p := range filePosts {
		// a database entry with the same slug wins outright
		if _, taken := bySlug[p.Slug]; taken {
			continue
		}
		merged = append(merged, p)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return laterPublished(&merged[i], &merged[j])
	})

	return merged, nil
}

func laterPublished(a, b *Post) bool {
	at, bt := publishedAt(a), publishedAt(b)
	return at.After(bt)
}

func publishedAt(p *Post) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return time.Time{}
}

func (r *Resolver) Post(ctx context.Context, slug string) (*Post, error) {
	post, err := r.db.Get(ctx, slug)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		r.logger.Warn("database store unavailable, falling back to file store", slog.String("slug", slug), slog.String("error", err.Error()))
	}

	return r.files.Get(ctx, slug)
}

func (r *Resolver) PostsByTag(ctx context.Context, tag string) ([]Post, error) {
	posts, err := r.AllPosts(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Post, 0, len(posts))
	for _, p := range posts {
		if hasTag(&p, tag) {
			matched = append(matched, p)
		}
	}

	return matched, nil
}

func (r *Resolver) AllTags(ctx context.Context) ([]string, error) {
	posts, err := r.AllPosts(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, p := range posts {
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	sort.Strings(tags)
	return tags, nil
}

// RelatedPosts scores every other post by shared-tag count. Zero-overlap
// candidates are excluded no matter how recent they are.
func (r *Resolver) RelatedPosts(ctx context.Context, slug string, limit int) ([]Post, error) {
	if limit < 1 {
		limit = 3
	}

	if cached, ok := r.cache.Get(common.CacheKeyRelatedPosts(slug, limit)); ok {
		return cached.([]Post), nil
	}

	target, err := r.Post(ctx, slug)
	if err != nil {
		return nil, err
	}

	posts, err := r.AllPosts(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		post  Post
		score int
	}

	var candidates []scored
	for _, p := range posts {
		if p.Slug == target.Slug {
			continue
		}
		score := sharedTags(target.Tags, p.Tags)
		if score == 0 {
			continue
		}
		candidates = append(candidates, scored{post: p, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return laterPublished(&candidates[i].post, &candidates[j].post)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	related := make([]Post, 0, len(candidates))
	for _, c := range candidates {
		related = append(related, c.post)
	}

	r.cache.Set(common.CacheKeyRelatedPosts(slug, limit), related, 5*time.Minute)

	return related, nil
}

func hasTag(p *Post, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sharedTags(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}

	count := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			count++
		}
	}
	return count
}
