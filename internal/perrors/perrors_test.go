package perrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrCarriesStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NewErrInvalidRequest("bad", errors.New("bad")), http.StatusBadRequest},
		{NewErrUnauthorized("no", errors.New("no")), http.StatusUnauthorized},
		{NewErrForbidden("denied", errors.New("denied")), http.StatusForbidden},
		{NewErrNotFound("missing", errors.New("missing")), http.StatusNotFound},
		{NewErrConflict("dup", errors.New("dup")), http.StatusConflict},
		{NewErrInternalServerError("boom", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		var perr Err
		require.ErrorAs(t, tc.err, &perr)
		assert.Equal(t, tc.status, perr.HttpStatus())
	}
}

func TestNewCapturesStacktraceAndArgs(t *testing.T) {
	err := New(ErrCodeNotFound, "missing thing", errors.New("gone"), map[string]interface{}{"id": "42"})

	var perr Err
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "gone", perr.Error())
	assert.NotEmpty(t, perr.Stacktrace)
	require.Len(t, perr.Args, 1)
	assert.Equal(t, "42", perr.Args[0]["id"])
}

func TestNewWithNilError(t *testing.T) {
	err := New(ErrCodeInternalServer, "oops", nil)

	var perr Err
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "error missing", perr.Error())
}
