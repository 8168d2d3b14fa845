// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocanhtran/bibliora/internal/catalog/book"
	"github.com/ngocanhtran/bibliora/internal/catalog/inventory"
	"github.com/ngocanhtran/bibliora/internal/catalog/media"
	"github.com/ngocanhtran/bibliora/internal/platform/config"
	"github.com/ngocanhtran/bibliora/internal/platform/sec"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(string) (*sec.AuthClaims, error) {
	return nil, nil
}

func newTestServer(t *testing.T, mediaRoot string) *Server {
	t.Helper()

	cfg := &config.Config{
		ServerPort:  "0",
		Environment: "development",
		MediaRoot:   mediaRoot,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handlers := Handlers{
		Liveness:  func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) },
		Readiness: func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) },
		Book:      book.NewHandler(nil),
		BookAdmin: book.NewAdminHandler(nil),
		Media:     media.NewHandler(nil),
		Inventory: inventory.NewHandler(nil),
	}

	return NewServer(context.Background(), cfg, logger, stubVerifier{}, handlers)
}

func TestStaticMount_ServesMediaRoot(t *testing.T) {
	mediaRoot := t.TempDir()
	payload := []byte("binary-bytes")
	require.NoError(t, os.WriteFile(filepath.Join(mediaRoot, "cover.jpg"), payload, 0o644))

	server := newTestServer(t, mediaRoot)

	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/static/cover.jpg", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, payload, recorder.Body.Bytes())
}

func TestStaticMount_UnknownFileIs404(t *testing.T) {
	server := newTestServer(t, t.TempDir())

	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/static/missing.jpg", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
