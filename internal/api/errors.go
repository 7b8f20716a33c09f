package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func (s *Server) logError(r *http.Request, err error) {
	s.logger.Error(err.Error(),
		zap.String("request_method", r.Method),
		zap.String("request_url", r.URL.String()),
	)
}

// errorResponse writes {"error": message} with status.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	if err := s.writeJSON(w, status, envelope{"error": message}, nil); err != nil {
		s.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Server) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)
	s.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (s *Server) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func (s *Server) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusMethodNotAllowed, "the "+r.Method+" method is not supported for this resource")
}

func (s *Server) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (s *Server) failedValidationResponse(w http.ResponseWriter, r *http.Request, errs types.ValidationErrors) {
	s.errorResponse(w, r, http.StatusUnprocessableEntity, map[string]string(errs))
}

func (s *Server) remoteUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)
	s.errorResponse(w, r, http.StatusBadGateway, "the remote book collection is unavailable")
}

func (s *Server) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// inventoryErrorResponse maps an inventory error to its status code.
func (s *Server) inventoryErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var verrs types.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		s.failedValidationResponse(w, r, verrs)
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrInvalidID):
		s.notFoundResponse(w, r)
	case errors.Is(err, types.ErrRemoteUnavailable):
		s.remoteUnavailableResponse(w, r, err)
	default:
		s.serverErrorResponse(w, r, err)
	}
}
