package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to save lead")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save lead: connection reset", err.Error())
	assert.True(t, HasCode(err, CodeInternal))
}

func TestCodeOf(t *testing.T) {
	t.Run("nested coded error", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", New(CodeRateLimited, "too many"))
		assert.Equal(t, CodeRateLimited, CodeOf(err))
	})

	t.Run("plain error defaults to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("nil has no code", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestValidationDetails(t *testing.T) {
	details := []string{"a", "b"}
	err := Validation(details)
	details[0] = "mutated"

	require.True(t, HasCode(err, CodeValidation))
	assert.Equal(t, []string{"a", "b"}, Details(err))
	assert.Nil(t, Details(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeValidation:   http.StatusBadRequest,
		CodeRateLimited:  http.StatusTooManyRequests,
		CodeInvalidInput: http.StatusInternalServerError,
		CodeInternal:     http.StatusInternalServerError,
		CodeUnavailable:  http.StatusServiceUnavailable,
		Code("unknown"):  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
