package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := os.ErrNotExist
	err := StorageError("load record", cause)

	assert.True(t, stderrors.Is(err, os.ErrNotExist))
	assert.Equal(t, CategoryStorage, err.Category)
	assert.Equal(t, SeverityError, err.Severity)
}

func TestGetAppErrorUnwrapsChains(t *testing.T) {
	inner := NotFoundError("record 'x'")
	wrapped := fmt.Errorf("lookup: %w", inner)

	assert.True(t, IsAppError(wrapped))
	assert.Same(t, inner, GetAppError(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeAlreadyExists))

	plain := GetAppError(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternalError, plain.Code)
	assert.Equal(t, SeverityCritical, plain.Severity)
}

func TestMissingFieldError(t *testing.T) {
	err := MissingFieldError("id")
	assert.Equal(t, ErrCodeMissingField, err.Code)
	assert.Equal(t, "id", err.Context["field"])
	assert.Equal(t, "MISSING_FIELD: id is required", err.Error())
}

func TestStatusCode(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeValidation:     http.StatusBadRequest,
		ErrCodeMissingField:   http.StatusBadRequest,
		ErrCodeNotFound:       http.StatusNotFound,
		ErrCodeAlreadyExists:  http.StatusConflict,
		ErrCodeStorageFailure: http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusCode(NewAppError(code, "x")), string(code))
	}
}

func TestWriteHTTPError(t *testing.T) {
	h := NewHTTPErrorHandler(true)
	rec := httptest.NewRecorder()
	h.WriteHTTPError(rec, NotFoundError("record 'x'").WithDetails("no such id"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "record 'x' not found", body.Error.Message)
	assert.Equal(t, "no such id", body.Error.Details)
}

func TestCLIFormatError(t *testing.T) {
	h := NewCLIErrorHandler(false)
	assert.Equal(t, "ℹ️  INFO: record 'x' not found", h.FormatError(NotFoundError("record 'x'")))
	assert.True(t, strings.HasPrefix(h.HandleError(ValidationError("bad")).Error(), "⚠️  WARNING"))
}

func TestTUIHandlerLogsToFile(t *testing.T) {
	dir := t.TempDir()
	h := &TUIErrorHandler{LogDir: dir}
	h.HandleError(StorageError("save draft", stderrors.New("disk full")))

	data, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "STORAGE_FAILURE")
	assert.Contains(t, string(data), "Cause: disk full")
}
