package main

import (
	"context"
	"net/http"
)

type contextKey string

const editorContextKey = contextKey("editor")

func (app *application) createEditorContext(r *http.Request, isEditor bool) *http.Request {
	ctx := context.WithValue(r.Context(), editorContextKey, isEditor)
	return r.WithContext(ctx)
}

func (app *application) isEditorContext(r *http.Request) bool {
	isEditor, ok := r.Context().Value(editorContextKey).(bool)
	if !ok {
		return false
	}
	return isEditor
}
