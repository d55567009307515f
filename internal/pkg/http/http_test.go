package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "accountpool/internal/pkg/errors"
)

func TestWriteHTTPError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTTPError(rec, apperrors.NotFound(`no "bob"`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"no \"bob\"","type":"invalid_request_error"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteHTTPError(rec, errors.New("disk full"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"server_error"`)
}

func TestReadJSON(t *testing.T) {
	var v struct {
		Password string `json:"password"`
	}
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"password":"x"}`))
	require.NoError(t, ReadJSON(r, &v))
	assert.Equal(t, "x", v.Password)

	r = httptest.NewRequest(http.MethodPut, "/", nil)
	require.NoError(t, ReadJSON(r, &v))

	r = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{`))
	var he *apperrors.HTTPError
	require.ErrorAs(t, ReadJSON(r, &v), &he)
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)
}
