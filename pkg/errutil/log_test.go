package errutil

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogErrorOops(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("STORE_FAILED").With("table", "movies").Wrap(errors.New("disk full"))
	LogError(logger, "create movie", err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"create movie"`)
	assert.Contains(t, out, "STORE_FAILED")
	assert.Contains(t, out, "movies")
	assert.Contains(t, out, "disk full")
}

func TestLogErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogError(logger, "plain", errors.New("boom"))
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestCode(t *testing.T) {
	require.Equal(t, "MAIL_SEND_FAILED", Code(oops.Code("MAIL_SEND_FAILED").Errorf("x")))
	require.Equal(t, "", Code(errors.New("x")))
}
