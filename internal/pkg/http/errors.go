package http

import (
	"errors"
	"net/http"

	apperrors "accountpool/internal/pkg/errors"
	jsonpkg "accountpool/internal/pkg/json"
)

// WriteError writes {"error":{"message":...,"type":...}} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoded, _ := jsonpkg.MarshalString(msg)
	_, _ = w.Write([]byte(`{"error":{"message":` + encoded + `,"type":"` + errorType(status) + `"}}`))
}

// WriteHTTPError writes err, using its status when it is an *errors.HTTPError
// and 500 otherwise.
func WriteHTTPError(w http.ResponseWriter, err error) {
	var he *apperrors.HTTPError
	if errors.As(err, &he) {
		WriteError(w, he.StatusCode, he.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error())
}

func errorType(status int) string {
	if status >= 500 {
		return "server_error"
	}
	return "invalid_request_error"
}
