package http

import (
	"io"
	"net/http"

	apperrors "accountpool/internal/pkg/errors"
	jsonpkg "accountpool/internal/pkg/json"
)

const maxRequestBody = 1 << 20

// WriteJSON encodes v with the project JSON codec and writes it with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := jsonpkg.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// ReadJSON decodes the request body into v. An empty body leaves v untouched.
func ReadJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return apperrors.BadRequest("cannot read request body")
	}
	if len(body) == 0 {
		return nil
	}
	if err := jsonpkg.Unmarshal(body, v); err != nil {
		return apperrors.BadRequest("invalid JSON body")
	}
	return nil
}
