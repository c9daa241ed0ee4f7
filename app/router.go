package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// post catalog. Tags live under their own prefix: the router rejects
	// static segments next to the :slug wildcard.
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/tags", app.listTagsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/tags/:tag", app.listPostsByTagHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug", app.showPostHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug/related", app.relatedPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts/:slug/like", app.likePostHandler)

	// comments
	router.HandlerFunc(http.MethodGet, "/v1/comments", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/comments", app.rateLimit(app.createCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireEditor(app.deleteCommentHandler))
	router.HandlerFunc(http.MethodPut, "/v1/comments/:id/check", app.requireEditor(app.checkCommentHandler))

	// editor
	router.HandlerFunc(http.MethodPost, "/v1/editor/posts", app.requireEditor(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/editor/posts/:slug", app.requireEditor(app.editPostHandler))
	router.HandlerFunc(http.MethodPut, "/v1/editor/posts/:slug", app.requireEditor(app.updatePostHandler))
	router.HandlerFunc(http.MethodPut, "/v1/editor/posts/:slug/status", app.requireEditor(app.setPostStatusHandler))
	router.HandlerFunc(http.MethodGet, "/v1/editor/posts/:slug/versions", app.requireEditor(app.listVersionsHandler))

	// rendering
	router.HandlerFunc(http.MethodPost, "/v1/preview", app.previewHandler)
	router.HandlerFunc(http.MethodGet, "/og/:file", app.ogImageHandler)

	return app.recoverPanic(app.logRequest(app.enableCORS(app.authenticate(router))))
}
