package main

import (
	"errors"
	"fmt"
	"io"
)

var errNonPositiveDuration = errors.New("duration must be positive")

// smokeError is a wrapper around an error that adds additional context.
type smokeError struct {
	err    error
	reason string
}

func (m smokeError) Error() string {
	return m.err.Error()
}

func (m smokeError) Reason() string {
	return m.reason
}

func (m smokeError) Unwrap() error {
	return m.err
}

func printError(w io.Writer, s styles, err error) {
	format := "\n%s\n\n"

	var args []any
	var ferr flagParseError
	var serr smokeError
	switch {
	case errors.As(err, &ferr):
		format += "%s\n\n"
		args = []any{
			fmt.Sprintf(
				"Check out %s %s",
				s.InlineCode.Render("mcp-smoke -h"),
				s.Comment.Render("for help."),
			),
			fmt.Sprintf(
				ferr.ReasonFormat(),
				s.InlineCode.Render(ferr.Flag()),
			),
		}
	case errors.As(err, &serr):
		format += "%s\n\n"
		args = []any{
			s.ErrPadding.Render(s.ErrorHeader.String(), serr.reason),
			s.ErrPadding.Render(s.ErrorDetails.Render(err.Error())),
		}
	default:
		args = []any{
			s.ErrPadding.Render(s.ErrorDetails.Render(err.Error())),
		}
	}

	fmt.Fprintf(w, format, args...)
}
