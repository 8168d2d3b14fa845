// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/ngocanhtran/bibliora/internal/platform/request"
	"github.com/ngocanhtran/bibliora/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the warehouse endpoints. The caller applies the
// role-gating middleware.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{bookID}", handler.findByBook)
	router.Post("/{bookID}/adjust", handler.adjust)
	router.Put("/{bookID}/import-price", handler.setImportPrice)
}

func (handler *Handler) findByBook(writer http.ResponseWriter, request *http.Request) {
	stocks, err := handler.service.FindByBook(request.Context(), requestutil.ID(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stocks)
}

func (handler *Handler) adjust(writer http.ResponseWriter, request *http.Request) {
	staffID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input AdjustInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	stock, err := handler.service.Adjust(request.Context(), requestutil.ID(request, "bookID"), input, staffID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stock)
}

func (handler *Handler) setImportPrice(writer http.ResponseWriter, request *http.Request) {
	staffID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input PriceInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	stock, err := handler.service.SetImportPrice(request.Context(), requestutil.ID(request, "bookID"), input, staffID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stock)
}
