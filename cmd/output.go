package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/contextiq/contextiq-cli/internal/session"
	"github.com/contextiq/contextiq-cli/internal/workspace"
	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func printSuccess(w io.Writer, format string, args ...any) {
	okColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func printWarning(w io.Writer, format string, args ...any) {
	warnColor.Fprint(w, "⚠ Warning: ")
	fmt.Fprintf(w, format+"\n", args...)
}

func printError(w io.Writer, err error) {
	errColor.Fprint(w, "✗ Error: ")
	fmt.Fprintln(w, describeError(err))
}

// describeError turns the typed errors of the lower layers into one line a
// user can act on.
func describeError(err error) string {
	var (
		authErr     *session.AuthError
		valErr      *workspace.ValidationError
		unreachable *api.UnreachableError
		unauth      *api.UnauthorizedError
	)
	switch {
	case errors.Is(err, workspace.ErrAuthRequired):
		return "you must sign in first (run `contextiq login`)"
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &unreachable):
		return fmt.Sprintf("cannot reach the service at %s", unreachable.Host)
	case errors.As(err, &unauth):
		return fmt.Sprintf("%v (try `contextiq login` again)", unauth)
	}
	return err.Error()
}
