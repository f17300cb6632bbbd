// Package clipboard copies text — a Cypher statement, a rendered plan —
// to the system clipboard by shelling out to the platform's tool.
package clipboard

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// tool is one candidate clipboard command for a platform.
type tool struct {
	name string
	args []string
}

// candidates maps GOOS to clipboard commands, tried in order. Linux lists
// several because the right one depends on the display server in use.
var candidates = map[string][]tool{
	"darwin":  {{name: "pbcopy"}},
	"windows": {{name: "clip.exe"}},
	"linux": {
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	},
}

// Copy writes text to the system clipboard using the first available
// tool for the current platform.
func Copy(ctx context.Context, text string) error {
	tools, ok := candidates[runtime.GOOS]
	if !ok {
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}

	for _, tl := range tools {
		if _, err := exec.LookPath(tl.name); err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, tl.name, tl.args...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("clipboard copy via %s: %w", tl.name, err)
		}
		return nil
	}

	names := make([]string, len(tools))
	for i, tl := range tools {
		names[i] = tl.name
	}
	return fmt.Errorf("no clipboard tool found (looked for %s)", strings.Join(names, ", "))
}
