package shell

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/contextiq/contextiq-cli/internal/workspace"
)

// Run starts the interactive workspace and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, ctrl *workspace.Controller, debounce time.Duration, log *zap.Logger) error {
	events := NewNotifier()
	ctrl.SetListener(events)
	defer func() {
		ctrl.SetListener(nil)
		events.Close()
	}()

	p := tea.NewProgram(New(ctx, ctrl, events, debounce, log), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
