// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
	requestutil "github.com/ngocanhtran/bibliora/internal/platform/request"
	"github.com/ngocanhtran/bibliora/internal/platform/respond"
	"github.com/ngocanhtran/bibliora/internal/platform/sec"
	"github.com/ngocanhtran/bibliora/pkg/pagination"
)

// maxUploadBytes caps a single multipart upload (25 MiB).
const maxUploadBytes = 25 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the media endpoints. The caller is expected to have
// applied authentication middleware already.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.upload)
	router.Get("/", handler.listMine)
	router.Delete("/{id}", handler.remove)
}

func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxUploadBytes)

	file, header, err := request.FormFile("file")
	if err != nil {
		// A missing part or an unparseable multipart body is a client
		// mistake, not a server fault.
		respond.Error(writer, request, apperr.ValidationError("file is required"))
		return
	}
	defer file.Close()

	media, err := handler.service.Register(request.Context(), RegisterInput{
		Body:      file,
		Filename:  header.Filename,
		MimeType:  header.Header.Get("Content-Type"),
		SizeBytes: header.Size,
		Type:      request.FormValue("type"),
	}, claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, media)
}

func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	filter := Filter{
		Status: request.URL.Query().Get("status"),
		Type:   request.URL.Query().Get("type"),
	}

	items, total, err := handler.service.ListMine(request.Context(), claims.UserID, filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	mediaID := requestutil.ID(request, "id")
	elevated := sec.UserRole(claims.Role).AtLeast(sec.RoleAdmin)

	if err := handler.service.Remove(request.Context(), mediaID, claims.UserID, elevated); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
