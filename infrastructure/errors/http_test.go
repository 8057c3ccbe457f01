package errors_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraerrors "github.com/jonesrussell/intelsleuth/infrastructure/errors"
)

func response(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseHTTPError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		code        int
		body        string
		wantNil     bool
		wantMessage string
	}{
		{name: "success", code: http.StatusOK, wantNil: true},
		{name: "json error field", code: http.StatusUnauthorized, body: `{"error":"bad key"}`, wantMessage: "bad key"},
		{name: "json message field", code: http.StatusBadRequest, body: `{"message":"missing email"}`, wantMessage: "missing email"},
		{name: "plain body", code: http.StatusBadGateway, body: "upstream down"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := infraerrors.ParseHTTPError(response(tc.code, tc.body))
			if tc.wantNil {
				assert.NoError(t, err)
				return
			}

			var httpErr *infraerrors.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tc.code, httpErr.StatusCode)
			assert.Equal(t, tc.body, httpErr.Body)
			assert.Equal(t, tc.wantMessage, httpErr.Message)
		})
	}
}

func TestClassification(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("call: %w", &infraerrors.HTTPError{StatusCode: http.StatusNotFound})
	unavailable := fmt.Errorf("call: %w", &infraerrors.HTTPError{StatusCode: http.StatusServiceUnavailable})

	assert.True(t, infraerrors.IsClientError(notFound))
	assert.False(t, infraerrors.IsServerError(notFound))
	assert.True(t, infraerrors.IsServerError(unavailable))
	assert.False(t, infraerrors.IsClientError(fmt.Errorf("plain")))

	code, ok := infraerrors.StatusCode(unavailable)
	assert.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
