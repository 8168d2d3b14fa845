// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	guuid "github.com/google/uuid"
	requestutil "github.com/ngocanhtran/bibliora/internal/platform/request"
	"github.com/ngocanhtran/bibliora/internal/platform/respond"
	"github.com/ngocanhtran/bibliora/pkg/convert"
	"github.com/ngocanhtran/bibliora/pkg/pagination"
	"github.com/ngocanhtran/bibliora/pkg/query"
)

// # Public Handler

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.list)
	router.Get("/{idOrSlug}", handler.get)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := filterFromQuery(request)

	books, total, err := handler.service.List(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(params.Page, params.Limit, total))
}

// get resolves by id when the path segment parses as a UUID, by slug
// otherwise.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.ID(request, "idOrSlug")

	var entry *Book
	var err error
	if _, parseErr := guuid.Parse(key); parseErr == nil {
		entry, err = handler.service.Get(request.Context(), key)
	} else {
		entry, err = handler.service.GetBySlug(request.Context(), key)
	}

	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

// # Admin Handler

type AdminHandler struct {
	service *AdminService
}

func NewAdminHandler(service *AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes mounts the mutation endpoints. The caller applies the
// seller-role middleware.
func (handler *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Post("/", handler.add)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)
	router.Post("/{id}/restore", handler.restore)
}

func (handler *AdminHandler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := filterFromQuery(request)
	filter.IncludeDeleted = convert.ToBool(request.URL.Query().Get("include_deleted"))
	filter.OnlyDeleted = convert.ToBool(request.URL.Query().Get("only_deleted"))

	books, total, err := handler.service.List(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *AdminHandler) get(writer http.ResponseWriter, request *http.Request) {
	entry, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

func (handler *AdminHandler) add(writer http.ResponseWriter, request *http.Request) {
	uploaderID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input AddInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.AddBook(request.Context(), input, uploaderID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, entry)
}

func (handler *AdminHandler) update(writer http.ResponseWriter, request *http.Request) {
	uploaderID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.UpdateBook(request.Context(), requestutil.ID(request, "id"), input, uploaderID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

func (handler *AdminHandler) remove(writer http.ResponseWriter, request *http.Request) {
	staffID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteBook(request.Context(), requestutil.ID(request, "id"), staffID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *AdminHandler) restore(writer http.ResponseWriter, request *http.Request) {
	staffID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.RestoreBook(request.Context(), requestutil.ID(request, "id"), staffID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

// filterFromQuery parses the filter fields shared by the public and admin
// listings.
func filterFromQuery(request *http.Request) Filter {
	values := request.URL.Query()

	filter := Filter{
		Search:      values.Get("q"),
		CategoryID:  values.Get("category"),
		PublisherID: values.Get("publisher"),
		Sort:        values.Get("sort"),
	}

	filter.Status = query.IntSlice(values["status"])

	return filter
}
