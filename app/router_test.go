package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesRegister(t *testing.T) {
	app := newBareApplication(&Config{Environment: "test", Version: "test"})

	// httprouter panics at registration on conflicting route patterns, so
	// building the handler at all is the assertion that matters
	var h http.Handler
	require.NotPanics(t, func() { h = app.routes() })

	req := httptest.NewRequest(http.MethodGet, "/v1/healthcheck", nil)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
}
