package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/riverfold/inkpress/internal/commentservice"
	"github.com/riverfold/inkpress/internal/common"
	"github.com/riverfold/inkpress/internal/markdown"
	"github.com/riverfold/inkpress/internal/ogimage"
	"github.com/riverfold/inkpress/internal/postservice"
)

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.posts.AllPosts(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := app.posts.AllTags(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"tags": tags}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listPostsByTagHandler(w http.ResponseWriter, r *http.Request) {
	tag := app.readSlugParam(r, "tag")

	posts, err := app.posts.PostsByTag(r.Context(), tag)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readSlugParam(r, "slug")

	post, err := app.posts.Post(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// File-sourced posts carry raw markdown only; render on demand and keep
	// the result warm for repeat reads.
	if post.HTMLContent == "" {
		key := common.CacheKeyPost(post.Slug)

		var result markdown.Result
		if cached, ok := app.cache.Get(key); ok {
			result = cached.(markdown.Result)
		} else {
			result = app.renderer.Render(post.Content)
			app.cache.Set(key, result)
		}

		post.HTMLContent = result.HTML
		if len(post.TOC) == 0 {
			post.TOC = result.TOC
		}
	}

	if post.Source == postservice.SourceDatabase {
		if err := app.editorService.RecordView(r.Context(), slug); err != nil {
			app.logger.Error("could not record view", slog.String("slug", slug), slog.String("error", err.Error()))
		} else {
			post.Views++
		}
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) relatedPostsHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readSlugParam(r, "slug")

	limit, err := app.readLimitParam(r, 3)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, err := app.posts.RelatedPosts(r.Context(), slug, limit)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) likePostHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readSlugParam(r, "slug")

	likes, err := app.editorService.Like(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"likes": likes}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// commentNode is a comment with its replies nested, the shape the frontend
// consumes directly.
type commentNode struct {
	commentservice.Comment
	Replies []commentNode `json:"replies"`
}

func buildCommentTree(thread commentservice.Thread, parent int64) []commentNode {
	nodes := make([]commentNode, 0, len(thread[parent]))
	for _, c := range thread[parent] {
		nodes = append(nodes, commentNode{
			Comment: c,
			Replies: buildCommentTree(thread, c.ID),
		})
	}
	return nodes
}

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		app.badRequestErrorResponse(w, r, errors.New("missing slug parameter"))
		return
	}

	thread, err := app.commentService.Thread(r.Context(), slug)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"data": buildCommentTree(thread, commentservice.RootKey)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type createCommentRequest struct {
	Slug     string `json:"slug"`
	Author   string `json:"author"`
	Body     string `json:"body"`
	ParentID *int64 `json:"parentId"`
}

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	var input createCommentRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &commentservice.CreateCommentRequest{
		Slug:       input.Slug,
		Author:     input.Author,
		Body:       input.Body,
		ParentID:   input.ParentID,
		RemoteAddr: r.RemoteAddr,
	}

	comment, err := app.commentService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.kindErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.commentService.Delete(r.Context(), id)
	if err != nil {
		app.kindErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "comment deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) checkCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.commentService.MarkChecked(r.Context(), id)
	if err != nil {
		app.kindErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "comment checked"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type savePostRequest struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
}

func (r savePostRequest) serviceRequest() *postservice.SavePostRequest {
	return &postservice.SavePostRequest{
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		Tags:        r.Tags,
		Status:      postservice.Status(r.Status),
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input savePostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.editorService.CreatePost(r.Context(), input.serviceRequest())
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrDuplicateSlug):
			app.failedValidationErrorResponse(w, r, map[string]string{"slug": "a post with this slug already exists"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) editPostHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readSlugParam(r, "slug")

	post, err := app.editorService.GetForEdit(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readSlugParam(r, "slug")

	var input savePostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.editorService.UpdatePost(r.Context(), slug, input.serviceRequest())
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, postservice.ErrDuplicateSlug):
			app.failedValidationErrorResponse(w, r, map[string]string{"slug": "a post with this slug already exists"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type setPostStatusRequest struct {
	Status string `json:"status"`
}

func (app *application) setPostStatusHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readSlugParam(r, "slug")

	var input setPostStatusRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.editorService.SetStatus(r.Context(), slug, postservice.Status(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listVersionsHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readSlugParam(r, "slug")

	versions, err := app.editorService.Versions(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"versions": versions}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type previewRequest struct {
	Content string `json:"content"`
}

// previewHandler renders markdown with the lightweight renderer so the editor
// can show live output while typing.
func (app *application) previewHandler(w http.ResponseWriter, r *http.Request) {
	var input previewRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	result := app.preview.Render(input.Content)

	err = app.writeJSON(w, http.StatusOK, envelope{"html": result.HTML, "toc": result.TOC, "math": result.Math}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) ogImageHandler(w http.ResponseWriter, r *http.Request) {
	file := app.readSlugParam(r, "file")

	slug := strings.TrimSuffix(file, ".png")
	if slug == file || slug == "" {
		app.notFoundErrorResponse(w, r)
		return
	}

	post, err := app.posts.Post(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	etag := ogimage.ETag(slug, post.UpdatedAt)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	img, err := app.ogGenerator.Image(r.Context(), slug, post.Title)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(img)
}
