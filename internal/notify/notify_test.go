package notify_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rpggio/timeclock/internal/domain/reminder"
	"github.com/rpggio/timeclock/internal/notify"
	"github.com/rpggio/timeclock/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var note = reminder.Notification{
	UserID:  "u1",
	Kind:    reminder.KindEyeCare,
	Title:   "Rest your eyes",
	Message: `Look "away"`,
	At:      time.Date(2026, 10, 19, 9, 20, 0, 0, time.UTC),
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, n.Notify(context.Background(), note))
	require.Contains(t, buf.String(), `"kind":"eye_care"`)
	require.Contains(t, buf.String(), `"user_id":"u1"`)
}

func TestNewCommandNotifier(t *testing.T) {
	_, err := notify.NewCommandNotifier("   ")
	require.Error(t, err)

	n, err := notify.NewCommandNotifier("notify-send {title} {message}")
	require.NoError(t, err)
	require.Equal(t, "notify-send", n.Name)
	require.Equal(t, []string{"{title}", "{message}"}, n.Args)
}

func TestCommandNotifier_Runs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	out := filepath.Join(t.TempDir(), "out.txt")
	n := &notify.CommandNotifier{
		Name: "sh",
		Args: []string{"-c", `printf '%s|%s|%s' "$1" "$2" "$3" > ` + out, "sh", "{kind}", "{user}", "{message}"},
	}
	require.NoError(t, n.Notify(context.Background(), note))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "eye_care|u1|Look 'away'", string(got))
}

func TestCommandNotifier_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	n := &notify.CommandNotifier{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}}
	err := n.Notify(context.Background(), note)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")

	missing := &notify.CommandNotifier{Name: "timeclock-no-such-binary"}
	require.Error(t, missing.Notify(context.Background(), note))
}

func TestMulti(t *testing.T) {
	ok := &mocks.Notifier{}
	ok.On("Notify", mock.Anything, note).Return(nil).Once()
	bad := &mocks.Notifier{}
	bad.On("Notify", mock.Anything, note).Return(errors.New("offline")).Once()

	err := notify.Multi{bad, nil, ok}.Notify(context.Background(), note)
	require.ErrorContains(t, err, "offline")
	ok.AssertExpectations(t)
	bad.AssertExpectations(t)
}
