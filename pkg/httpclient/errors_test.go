package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredNotFound(t *testing.T) {
	err := ParseResponseError(response(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"runner"}}`), "catalog")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
}

func TestParseResponseError_BadRequest(t *testing.T) {
	err := ParseResponseError(response(http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"per_page too large"}}`), "catalog")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "catalog: per_page too large")
}

func TestParseResponseError_Unavailable(t *testing.T) {
	err := ParseResponseError(response(http.StatusServiceUnavailable, `maintenance`), "catalog")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(response(http.StatusInternalServerError, `{"error":{"code":"INTERNAL_ERROR","message":"db"}}`), "catalog")
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "catalog server error (500/INTERNAL_ERROR)")
}

func TestParseResponseError_OtherClientError(t *testing.T) {
	err := ParseResponseError(response(http.StatusForbidden, `nope`), "catalog")
	assert.Equal(t, http.StatusForbidden, apperrors.HTTPStatus(err))

	var appErr *apperrors.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DOWNSTREAM_ERROR", appErr.Code)
}
