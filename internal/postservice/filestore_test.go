package postservice

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestFileStore(t *testing.T, files map[string]string) *FileStore {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
		assert.NoError(t, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewFileStore(dir, logger)
}

const samplePost = `---
title: Welcome Post
description: a greeting
tags:
  - Go
  - blog
publishedAt: 2024-03-01
---

# Welcome

This is the first paragraph of the welcome post, used for the excerpt.

## Details
`

func TestFileStoreList(t *testing.T) {
	store := newTestFileStore(t, map[string]string{
		"welcome.md":  samplePost,
		"notes.txt":   "not markdown",
		"no-front.md": "just a body without front matter",
	})

	posts, err := store.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, "welcome", posts[0].Slug)
	assert.Equal(t, "Welcome Post", posts[0].Title)
	assert.Equal(t, []string{"go", "blog"}, posts[0].Tags)
	assert.Equal(t, SourceFile, posts[0].Source)
	assert.Equal(t, StatusPublished, posts[0].Status)
	assert.NotNil(t, posts[0].PublishedAt)
}

func TestFileStoreGet(t *testing.T) {
	store := newTestFileStore(t, map[string]string{"welcome.md": samplePost})

	post, err := store.Get(context.Background(), "welcome")

	assert.NoError(t, err)
	assert.Equal(t, "Welcome Post", post.Title)
	assert.Equal(t, "1 min read", post.ReadingTime)
	assert.Contains(t, post.Excerpt, "first paragraph")
	assert.NotEmpty(t, post.TOC)
	assert.Equal(t, "welcome", post.TOC[0].ID)
}

func TestFileStoreGetMissing(t *testing.T) {
	store := newTestFileStore(t, nil)

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestFileStoreDraftsExcluded(t *testing.T) {
	draft := `---
title: Draft Post
draft: true
---

hidden body
`
	store := newTestFileStore(t, map[string]string{"draft.md": draft})

	posts, err := store.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, posts)

	_, err = store.Get(context.Background(), "draft")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestFileStoreMissingDir(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := NewFileStore("/nonexistent/content", logger)

	posts, err := store.List(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, posts)
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, "1 min read", readingTime("short"))
	assert.Equal(t, "1 min read", readingTime(""))

	long := ""
	for i := 0; i < 450; i++ {
		long += "word "
	}
	assert.Equal(t, "3 min read", readingTime(long))
}

func TestExcerpt(t *testing.T) {
	src := "# Heading\n\nSome **bold** text with a [link](https://x.dev) inside.\n\nsecond paragraph"
	assert.Equal(t, "Some bold text with a link inside.", excerpt(src))

	assert.Equal(t, "", excerpt("# only headings\n\n## here"))
}
