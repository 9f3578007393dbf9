package utils

import (
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

// OpenBrowser launches the system browser at url. The command is started,
// not waited on; the browser outlives the caller.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return errors.Wrapf(cmd.Start(), "can't open browser at %s", url)
}
