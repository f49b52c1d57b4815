package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a single JSON object from the request body. It returns the
// status to answer with when the body is unusable.
func decodeJSON(r *http.Request, dst any) (int, error) {
	if r.Body == nil {
		return http.StatusBadRequest, errEmptyBody
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return http.StatusRequestEntityTooLarge, err
		case errors.Is(err, io.EOF):
			return http.StatusBadRequest, errEmptyBody
		default:
			return http.StatusBadRequest, fmt.Errorf("decode request body: %w", err)
		}
	}
	if dec.More() {
		return http.StatusBadRequest, errors.New("request body must contain a single JSON object")
	}
	return 0, nil
}
