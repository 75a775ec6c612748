// Package clipboard puts compiled documents on the system clipboard. The
// native clipboard is tried first; inside a terminal without one (SSH, bare
// Linux consoles) the text is sent as an OSC 52 sequence instead.
package clipboard

import (
	"fmt"
	"io"
	"os"
	"runtime"

	sysclip "github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Method tells how a text reached the clipboard
type Method int

const (
	MethodNative Method = iota
	MethodOSC52
)

// Status returns the user-facing confirmation for a method
func (m Method) Status() string {
	if m == MethodOSC52 {
		return "Sent to terminal clipboard (OSC 52)"
	}
	return "Copied to clipboard!"
}

// ClipboardError represents an error when no clipboard utility is available
type ClipboardError struct {
	OS      string
	Message string
}

func (e *ClipboardError) Error() string {
	return e.Message
}

// NewClipboardError creates a ClipboardError with installation instructions
func NewClipboardError() *ClipboardError {
	return &ClipboardError{
		OS:      runtime.GOOS,
		Message: "no clipboard available. " + GetInstallInstructions(),
	}
}

// Clipboard copies text through the native clipboard or a terminal fallback
type Clipboard struct {
	write       func(string) error
	unsupported bool
	terminal    io.Writer // nil when stdout is not a terminal
}

// New returns a clipboard bound to the process's stdout
func New() *Clipboard {
	c := &Clipboard{
		write:       sysclip.WriteAll,
		unsupported: sysclip.Unsupported,
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		c.terminal = os.Stdout
	}
	return c
}

// Copy copies text and reports which method was used
func (c *Clipboard) Copy(text string) (Method, error) {
	if !c.unsupported {
		err := c.write(text)
		if err == nil {
			return MethodNative, nil
		}
		if c.terminal == nil {
			return MethodNative, fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}

	if c.terminal == nil {
		return MethodNative, NewClipboardError()
	}
	termenv.NewOutput(c.terminal).Copy(text)
	return MethodOSC52, nil
}

// Available reports whether any copy method can be used
func (c *Clipboard) Available() bool {
	return !c.unsupported || c.terminal != nil
}

// Copy copies text to the system clipboard
func Copy(text string) error {
	_, err := New().Copy(text)
	return err
}

// CopyWithFallback attempts to copy to clipboard and returns a status message
func CopyWithFallback(text string) (string, error) {
	method, err := New().Copy(text)
	if err != nil {
		return "", err
	}
	return method.Status(), nil
}

// IsClipboardAvailable checks if clipboard functionality is available
func IsClipboardAvailable() bool {
	return New().Available()
}

// GetInstallInstructions returns installation instructions for clipboard utilities
func GetInstallInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", runtime.GOOS)
	}
}
