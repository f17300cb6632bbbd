package clipboard_test

import (
	"os/exec"
	"runtime"
	"testing"

	"github.com/Gudahtt/bolt/clipboard"
)

func hasAny(names ...string) bool {
	for _, name := range names {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func TestCopy(t *testing.T) {
	t.Parallel()

	switch runtime.GOOS {
	case "darwin":
		if !hasAny("pbcopy") {
			t.Skip("pbcopy not found")
		}
	case "linux":
		if !hasAny("wl-copy", "xclip", "xsel") {
			t.Skip("no clipboard tool found")
		}
	default:
		t.Skipf("clipboard test not supported on %s", runtime.GOOS)
	}

	if err := clipboard.Copy(t.Context(), "MATCH (n) RETURN n"); err != nil {
		t.Fatalf("Copy returned error: %v", err)
	}
}

func TestCopyNoToolError(t *testing.T) {
	t.Parallel()

	if runtime.GOOS != "linux" || hasAny("wl-copy", "xclip", "xsel") {
		t.Skip("only meaningful on Linux without a clipboard tool")
	}

	if err := clipboard.Copy(t.Context(), "x"); err == nil {
		t.Fatal("expected an error when no clipboard tool is installed")
	}
}
