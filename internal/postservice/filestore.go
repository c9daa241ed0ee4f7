package postservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riverfold/inkpress/internal/markdown"
)

var errNoFrontMatter = errors.New("no front matter found")

var (
	markdownImageRx  = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	markdownLinkRx   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownInlineRx = regexp.MustCompile("[*_~`]")
)

// FileStore reads markdown files from a content directory. It keeps no cache:
// every call rescans the directory, so edits on disk show up immediately.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	return &FileStore{dir: dir, logger: logger}
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	PublishedAt string   `yaml:"publishedAt"`
	UpdatedAt   string   `yaml:"updatedAt"`
	Draft       bool     `yaml:"draft"`
}

// List returns all non-draft posts in the content directory, unsorted. A
// missing directory yields an empty list, not an error.
func (s *FileStore) List(ctx context.Context) ([]Post, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Post{}, nil
		}
		return nil, fmt.Errorf("could not read content directory: %w", err)
	}

	posts := make([]Post, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".md" && ext != ".mdx" {
			continue
		}

		post, err := s.load(entry.Name())
		if err != nil {
			s.logger.Warn("skipping unparsable content file", slog.String("file", entry.Name()), slog.String("error", err.Error()))
			continue
		}
		if post.Status == StatusDraft {
			continue
		}

		posts = append(posts, *post)
	}

	return posts, nil
}

func (s *FileStore) Get(ctx context.Context, slug string) (*Post, error) {
	for _, ext := range []string{".md", ".mdx"} {
		name := slug + ext
		if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
			continue
		}

		post, err := s.load(name)
		if err != nil {
			return nil, err
		}
		if post.Status == StatusDraft {
			return nil, ErrRecordNotFound
		}
		return post, nil
	}

	return nil, ErrRecordNotFound
}

func (s *FileStore) load(name string) (*Post, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}

	fm, body, err := parseFrontMatter(raw)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSuffix(name, filepath.Ext(name))
	content := string(body)

	post := &Post{
		Slug:        slug,
		Title:       fm.Title,
		Description: fm.Description,
		Excerpt:     excerpt(content),
		Content:     content,
		Tags:        normalizeTags(fm.Tags),
		Status:      StatusPublished,
		Source:      SourceFile,
		ReadingTime: readingTime(content),
		TOC:         markdown.ExtractTOC(content),
	}
	if post.Title == "" {
		post.Title = slug
	}
	if fm.Draft {
		post.Status = StatusDraft
	}

	if t := parseTime(fm.PublishedAt); !t.IsZero() {
		post.PublishedAt = &t
	}
	post.UpdatedAt = parseTime(fm.UpdatedAt)
	if post.UpdatedAt.IsZero() && post.PublishedAt != nil {
		post.UpdatedAt = *post.PublishedAt
	}

	return post, nil
}

func parseFrontMatter(raw []byte) (frontMatter, []byte, error) {
	var fm frontMatter

	norm := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	norm = bytes.TrimSpace(norm)

	const sep = "---\n"
	if !bytes.HasPrefix(norm, []byte(sep)) {
		return fm, norm, errNoFrontMatter
	}

	rest := norm[len(sep):]
	parts := bytes.SplitN(rest, []byte("\n---"), 2)
	if len(parts) != 2 {
		return fm, norm, errNoFrontMatter
	}

	if err := yaml.Unmarshal(parts[0], &fm); err != nil {
		return fm, norm, err
	}

	return fm, bytes.TrimSpace(parts[1]), nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		time.DateOnly,
		time.DateTime,
		"2006-01-02 15:04",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

const wordsPerMinute = 200

func readingTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

const excerptLen = 160

// excerpt takes the first non-heading paragraph with markdown syntax
// stripped, truncated to a fixed length.
func excerpt(content string) string {
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") || strings.HasPrefix(block, "```") {
			continue
		}

		text := stripMarkdown(block)
		if text == "" {
			continue
		}

		if runes := []rune(text); len(runes) > excerptLen {
			return strings.TrimSpace(string(runes[:excerptLen])) + "…"
		}
		return text
	}
	return ""
}

func stripMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = markdownImageRx.ReplaceAllString(s, "")
	s = markdownLinkRx.ReplaceAllString(s, "$1")
	s = markdownInlineRx.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "> ")
	return strings.TrimSpace(s)
}
