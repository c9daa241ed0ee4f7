package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/riverfold/inkpress/internal/commentservice"
	"github.com/riverfold/inkpress/internal/common"
	"github.com/riverfold/inkpress/internal/mailservice"
	"github.com/riverfold/inkpress/internal/markdown"
	"github.com/riverfold/inkpress/internal/ogimage"
	"github.com/riverfold/inkpress/internal/postservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

const testFilePost = `---
title: Field Notes
description: Notes from the field.
tags:
  - notes
publishedAt: 2024-03-01
---

## First Section

Some notes written in a plain markdown file.
`

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	rabbitURI := common.TestRabbitMQ(t)
	broker, err := common.NewMessageBroker(rabbitURI)
	assert.NoError(t, err)

	err = common.SetupBlogExchange(broker)
	assert.NoError(t, err)

	contentDir := t.TempDir()
	err = os.WriteFile(filepath.Join(contentDir, "field-notes.md"), []byte(testFilePost), 0o644)
	assert.NoError(t, err)

	cfg := &Config{
		Port:          ":8080",
		Environment:   "test",
		Version:       "test",
		EditorToken:   "test-editor-token",
		CommentSecret: "test-comment-secret",
		SiteName:      "inkpress",
		MailOwner:     "owner@example.com",
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	renderer := markdown.NewPipeline()

	app := &application{
		config:         cfg,
		logger:         logger,
		cache:          cache,
		posts:          postservice.NewResolver(postservice.NewDBStore(db), postservice.NewFileStore(contentDir, logger), cache, logger),
		editorService:  postservice.NewService(db, renderer, broker, logger),
		commentService: commentservice.NewCommentService(db, broker, cfg.CommentSecret, logger),
		ogGenerator:    ogimage.NewGenerator(cfg.OGFontURL, cfg.SiteName, cache, logger),
		mailService:    mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailOwner, cfg.MailPort, logger),
		renderer:       renderer,
		preview:        markdown.NewQuick(),
		broker:         broker,
	}

	return app, db
}

func (ts *testServer) post(t *testing.T, path string, data any, token *string) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) put(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPut, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func strptr(s string) *string {
	return &s
}
