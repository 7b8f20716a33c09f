package api

import (
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func (s *Server) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	listing, err := s.inv.ListAll(r.Context())
	if err != nil {
		s.inventoryErrorResponse(w, r, err)
		return
	}

	books := listing.Books
	if books == nil {
		books = []types.Book{}
	}
	if listing.Degraded() {
		s.logger.Warn("serving local-only listing", zap.Error(listing.RemoteErr))
	}

	data := envelope{"books": books, "degraded": listing.Degraded()}
	if err := s.writeJSON(w, http.StatusOK, data, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	book, err := s.inv.Get(r.Context(), id)
	if err != nil {
		s.inventoryErrorResponse(w, r, err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, envelope{"book": book}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input types.Book
	if err := s.readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	input.ID = ""

	if errs := s.inv.Validate(input); len(errs) > 0 {
		s.failedValidationResponse(w, r, errs)
		return
	}

	book, err := s.inv.Create(r.Context(), input)
	if err != nil {
		s.inventoryErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/books/%s", url.PathEscape(book.ID)))

	if err := s.writeJSON(w, http.StatusCreated, envelope{"book": book}, headers); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	var input types.Book
	if err := s.readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	if errs := s.inv.Validate(input); len(errs) > 0 {
		s.failedValidationResponse(w, r, errs)
		return
	}

	book, err := s.inv.Update(r.Context(), id, input)
	if err != nil {
		s.inventoryErrorResponse(w, r, err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, envelope{"book": book}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		s.notFoundResponse(w, r)
		return
	}

	if err := s.inv.Delete(r.Context(), id); err != nil {
		s.inventoryErrorResponse(w, r, err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, envelope{"message": "book successfully deleted"}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) validateBookHandler(w http.ResponseWriter, r *http.Request) {
	var input types.Book
	if err := s.readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	errs := s.inv.Validate(input)
	if errs == nil {
		errs = types.ValidationErrors{}
	}

	if err := s.writeJSON(w, http.StatusOK, envelope{"errors": map[string]string(errs)}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}
