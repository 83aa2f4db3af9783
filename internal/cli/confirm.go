package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrAborted is returned when the user declines a confirmation prompt.
var ErrAborted = errors.New("aborted")

// stdinIsTerminal reports whether prompting is possible at all.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirm asks the user to approve an action. approved short-circuits the
// prompt (--yes flags and confirm=false config). Without a terminal the
// prompt cannot be answered, so the action is refused.
func confirm(in io.Reader, out io.Writer, prompt string, approved, interactive bool) error {
	if approved {
		return nil
	}
	if !interactive {
		return errors.New("refusing to proceed without confirmation; rerun with --yes")
	}

	fmt.Fprintf(out, "%s [y/N] ", strings.TrimSpace(prompt))

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return ErrAborted
	}
}
