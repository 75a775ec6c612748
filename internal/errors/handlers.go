// Package errors/handlers provides interface-specific error handling implementations.
//
// ERROR FLOW:
// 1. Service or boundary code returns an AppError
// 2. The interface handler logs it
// 3. The handler formats it for the terminal, the HTTP response or the TUI status line
//
// Log destinations: the standard logger for CLI (verbose only) and HTTP, and
// <root>/logs/error.log for the TUI, where stderr is hidden by the alt screen.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool) *CLIErrorHandler {
	return &CLIErrorHandler{
		Verbose: verbose,
	}
}

// HandleError handles errors for CLI interface
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	if h.Verbose {
		log.Printf("[%s] %s: %s", appErr.Severity, appErr.Code, appErr.Error())
		if appErr.Cause != nil {
			log.Printf("Caused by: %v", appErr.Cause)
		}
	}

	return stderrors.New(h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	msg := appErr.Message
	if h.Verbose && appErr.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, appErr.Details)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("❌ CRITICAL: %s", msg)
	case SeverityError:
		return fmt.Sprintf("❌ ERROR: %s", msg)
	case SeverityWarning:
		return fmt.Sprintf("⚠️  WARNING: %s", msg)
	case SeverityInfo:
		return fmt.Sprintf("ℹ️  INFO: %s", msg)
	default:
		return fmt.Sprintf("❌ %s", msg)
	}
}

// HTTPErrorHandler handles errors for HTTP interface
type HTTPErrorHandler struct {
	IncludeDetails bool
}

// NewHTTPErrorHandler creates a new HTTP error handler
func NewHTTPErrorHandler(includeDetails bool) *HTTPErrorHandler {
	return &HTTPErrorHandler{
		IncludeDetails: includeDetails,
	}
}

// HandleError logs an error raised while serving a request
func (h *HTTPErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	log.Printf("[HTTP] [%s] %s: %s", appErr.Severity, appErr.Code, appErr.Error())
	if appErr.Cause != nil {
		log.Printf("Caused by: %v", appErr.Cause)
	}

	return appErr
}

// FormatError formats an error for HTTP response
func (h *HTTPErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	body := map[string]interface{}{
		"code":      appErr.Code,
		"message":   appErr.Message,
		"timestamp": appErr.Timestamp,
	}
	if h.IncludeDetails && appErr.Details != "" {
		body["details"] = appErr.Details
	}
	if h.IncludeDetails && appErr.Context != nil {
		body["context"] = appErr.Context
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{"error": body})
	return string(jsonBytes)
}

// WriteHTTPError writes an error response to HTTP
func (h *HTTPErrorHandler) WriteHTTPError(w http.ResponseWriter, err error) {
	appErr := GetAppError(err)
	h.HandleError(appErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(appErr))
	w.Write([]byte(h.FormatError(appErr)))
}

// StatusCode maps error codes to HTTP status codes
func StatusCode(appErr *AppError) int {
	switch appErr.Code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeCommandNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeInvalidCommand:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// TUIErrorHandler handles errors for TUI interface
type TUIErrorHandler struct {
	ShowDetails bool
	LogDir      string // defaults to <library root>/logs
}

// NewTUIErrorHandler creates a new TUI error handler
func NewTUIErrorHandler(showDetails bool) *TUIErrorHandler {
	return &TUIErrorHandler{
		ShowDetails: showDetails,
	}
}

// HandleError handles errors for TUI interface
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	logToFile(h.logDir(), appErr)
	return appErr
}

// FormatError formats an error for TUI display
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Details != "" {
		message = fmt.Sprintf("%s\nDetails: %s", message, appErr.Details)
	}

	return message
}

// GetErrorStyle returns the icon and color used for the severity
func (h *TUIErrorHandler) GetErrorStyle(err error) (string, string) {
	appErr := GetAppError(err)

	switch appErr.Severity {
	case SeverityCritical:
		return "🔥", "#ff0000"
	case SeverityError:
		return "❌", "#ff6b6b"
	case SeverityWarning:
		return "⚠️", "#feca57"
	case SeverityInfo:
		return "ℹ️", "#48cae4"
	default:
		return "❌", "#ff6b6b"
	}
}

func (h *TUIErrorHandler) logDir() string {
	if h.LogDir != "" {
		return h.LogDir
	}
	root := os.Getenv("QUICK_HB_DIR")
	if root == "" {
		root = os.ExpandEnv("$HOME/.quick-hb")
	}
	return filepath.Join(root, "logs")
}

// logToFile appends an error entry to <dir>/error.log
func logToFile(dir string, appErr *AppError) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return // Fail silently if we can't create log directory
	}

	file, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer file.Close()

	logEntry := fmt.Sprintf("[%s] [%s] [%s] %s: %s",
		appErr.Timestamp.Format("2006-01-02 15:04:05"),
		appErr.Severity,
		appErr.Category,
		appErr.Code,
		appErr.Error())

	if appErr.Cause != nil {
		logEntry += fmt.Sprintf(" | Cause: %v", appErr.Cause)
	}

	if appErr.Context != nil {
		contextJSON, _ := json.Marshal(appErr.Context)
		logEntry += fmt.Sprintf(" | Context: %s", string(contextJSON))
	}

	file.WriteString(logEntry + "\n")
}

// CreateGlobalErrorHandler creates an error handler based on environment
func CreateGlobalErrorHandler() ErrorHandler {
	debug := os.Getenv("DEBUG") == "true"
	if os.Getenv("HTTP_MODE") == "true" {
		return NewHTTPErrorHandler(debug)
	}
	if os.Getenv("TUI_MODE") == "true" {
		return NewTUIErrorHandler(debug)
	}
	return NewCLIErrorHandler(debug || os.Getenv("VERBOSE") == "true")
}
