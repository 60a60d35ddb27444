// Package errors provides small helpers for error handling around resources.
package errors

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// DeferClose closes an io.Closer and logs a failure.
// Use this in defer statements to avoid suppressing close errors.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// CloseInto closes c and stores its error in *errp unless *errp already
// holds one. It is meant for writers whose Close flushes data.
//
//	f, err := os.Create(path)
//	...
//	defer errors.CloseInto(&err, f)
func CloseInto(errp *error, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("failed to close: %w", err)
	}
}

// Must panics if error is not nil.
// Use only for initialization code where failure should halt the program.
func Must(err error, msg string) {
	if err != nil {
		panic(fmt.Sprintf("%s: %v", msg, err))
	}
}
