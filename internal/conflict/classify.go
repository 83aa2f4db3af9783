// Package conflict classifies failed snapshot applications.
//
// When git refuses to apply a snapshot the failure is either a content
// conflict the user can resolve in the working tree, or a fatal error that
// needs intervention. Classification is by matching the messages git prints
// when the working tree interferes with an apply.
package conflict

import (
	"context"
	"errors"
	"strings"

	"github.com/gitshelf/gitshelf/internal/gitx"
)

// Kind is the category of an apply failure.
type Kind int

const (
	// KindFatal marks failures outside the user's normal control, such as
	// repository corruption, missing refs, or timeouts.
	KindFatal Kind = iota

	// KindConflict marks failures caused by working tree contents
	// interfering with the apply, resolvable by the user.
	KindConflict
)

func (k Kind) String() string {
	if k == KindConflict {
		return "conflict"
	}
	return "fatal"
}

// overwriteSignatures are lowercase fragments of the messages git prints when
// the working tree blocks an apply.
var overwriteSignatures = []string{
	"would be overwritten",
	"could not restore untracked files",
	"conflict (",
}

// Classify categorizes an apply failure. Timeouts are always fatal; message
// text is only consulted for completed commands. Both output streams are
// scanned because git splits conflict reporting across them: overwrite
// refusals go to stderr while merge conflict markers go to stdout.
func Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindFatal
	}

	msg := err.Error()
	var cmdErr *gitx.CommandError
	if errors.As(err, &cmdErr) {
		msg = cmdErr.Stderr + "\n" + cmdErr.Stdout
	}

	msg = strings.ToLower(msg)
	for _, sig := range overwriteSignatures {
		if strings.Contains(msg, sig) {
			return KindConflict
		}
	}
	return KindFatal
}
