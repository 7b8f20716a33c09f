package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the routed handler wrapped in middleware.
//
// Middleware chain (outermost first): recoverPanic, rateLimit, router.
//
//	GET    /v1/books       merged listing
//	POST   /v1/books       create a local book
//	GET    /v1/books/:id   local book, else remote book
//	PUT    /v1/books/:id   replace a local book
//	DELETE /v1/books/:id   delete a local book
//	POST   /v1/validate    field errors for a candidate book
//	GET    /metrics        Prometheus metrics, when a gatherer is set
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(s.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/books", s.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", s.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", s.showBookHandler)
	router.HandlerFunc(http.MethodPut, "/v1/books/:id", s.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", s.deleteBookHandler)
	router.HandlerFunc(http.MethodPost, "/v1/validate", s.validateBookHandler)

	if s.gatherer != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return s.recoverPanic(s.rateLimit(router))
}
