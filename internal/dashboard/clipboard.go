package dashboard

import (
	"fmt"
	"os/exec"
	"strings"
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard shells out to the platform clipboard utility. It tries
// pbcopy (macOS), wl-copy (Wayland) and xclip (X11) in order.
type SystemClipboard struct{}

var clipboardCommands = [][]string{
	{"pbcopy"},
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
}

func (SystemClipboard) Copy(text string) error {
	for _, argv := range clipboardCommands {
		path, err := exec.LookPath(argv[0])
		if err != nil {
			continue
		}
		cmd := exec.Command(path, argv[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrClipboard, argv[0], err)
		}
		return nil
	}
	return fmt.Errorf("%w: no clipboard utility found", ErrClipboard)
}

var _ Clipboard = SystemClipboard{}
