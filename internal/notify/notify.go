// Package notify delivers reminder notifications to the user.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/rpggio/timeclock/internal/domain/reminder"
)

// DefaultCommandTimeout bounds a single notification command.
const DefaultCommandTimeout = 10 * time.Second

// LogNotifier writes notifications to a structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, note reminder.Notification) error {
	n.logger.Info("reminder",
		"user_id", note.UserID,
		"kind", note.Kind,
		"title", note.Title,
		"message", note.Message,
		"at", note.At)
	return nil
}

// CommandNotifier runs an external program per notification. Arguments may
// contain the placeholders {title}, {message}, {kind} and {user}.
type CommandNotifier struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// NewCommandNotifier parses a command line such as
// `notify-send {title} {message}`. Arguments are split on whitespace.
func NewCommandNotifier(commandLine string) (*CommandNotifier, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("notify: empty command")
	}
	return &CommandNotifier{Name: fields[0], Args: fields[1:], Timeout: DefaultCommandTimeout}, nil
}

// Desktop returns the platform's desktop notifier, or nil if none is known.
func Desktop() *CommandNotifier {
	switch runtime.GOOS {
	case "darwin":
		return &CommandNotifier{
			Name:    "osascript",
			Args:    []string{"-e", `display notification "{message}" with title "timeclock" subtitle "{title}" sound name "Blow"`},
			Timeout: DefaultCommandTimeout,
		}
	case "linux":
		return &CommandNotifier{
			Name:    "notify-send",
			Args:    []string{"--app-name=timeclock", "{title}", "{message}"},
			Timeout: DefaultCommandTimeout,
		}
	}
	return nil
}

func (n *CommandNotifier) Notify(ctx context.Context, note reminder.Notification) error {
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := strings.NewReplacer(
		"{title}", quoteSafe(note.Title),
		"{message}", quoteSafe(note.Message),
		"{kind}", string(note.Kind),
		"{user}", note.UserID,
	)
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = r.Replace(a)
	}

	var errOut bytes.Buffer
	cmd := exec.CommandContext(ctx, n.Name, args...)
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(errOut.String()); msg != "" {
			return fmt.Errorf("notify: %s: %w: %s", n.Name, err, msg)
		}
		return fmt.Errorf("notify: %s: %w", n.Name, err)
	}
	return nil
}

// quoteSafe strips double quotes so text can sit inside an AppleScript string.
func quoteSafe(s string) string {
	return strings.ReplaceAll(s, `"`, `'`)
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []reminder.Notifier

func (m Multi) Notify(ctx context.Context, note reminder.Notification) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
