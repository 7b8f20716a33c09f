package api

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// envelope is the top-level JSON object of every response body.
type envelope map[string]any

// readIDParam returns the ":id" route parameter.
func readIDParam(r *http.Request) (string, error) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	if id == "" {
		return "", errors.New("invalid id parameter")
	}
	return id, nil
}

// writeJSON writes data as indented JSON with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(js)
	return nil
}

// readJSON decodes exactly one JSON value from the request body into dst.
// Unknown fields are allowed; books carry them through in Extra.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errors.New("body must not be larger than 1MB")
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		default:
			return errors.New("body contains badly-formed JSON")
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}
