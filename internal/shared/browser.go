package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// browserCommand picks the launcher for url on the given platform. A BROWSER
// environment variable overrides the platform default, the same convention
// other terminal tools honor.
func browserCommand(goos, url string) (*exec.Cmd, error) {
	if override := os.Getenv("BROWSER"); override != "" {
		parts := strings.Fields(override)
		return exec.Command(parts[0], append(parts[1:], url)...), nil
	}

	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// OpenBrowser opens url in the user's default browser.
//
// Supports macOS, Linux, and Windows, plus a BROWSER environment override.
// Callers print the URL themselves when this fails.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
