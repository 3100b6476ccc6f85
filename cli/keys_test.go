package main

import (
	"bytes"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeController struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeController) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeController) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeController) TogglePause() bool {
	f.record("pause")
	return true
}

func (f *fakeController) SkipForward() time.Duration {
	f.record("next")
	return 0
}

func (f *fakeController) SkipBackward() time.Duration {
	f.record("back")
	return 0
}

func (f *fakeController) Cancel() {
	f.record("cancel")
}

func TestHandleKey(t *testing.T) {
	tests := []struct {
		key  byte
		want []string
		quit bool
	}{
		{'p', []string{"pause"}, false},
		{' ', []string{"pause"}, false},
		{'N', []string{"next"}, false},
		{'b', []string{"back"}, false},
		{'q', []string{"cancel"}, true},
		{3, []string{"cancel"}, true},
		{'x', nil, false},
	}

	for _, tt := range tests {
		t.Run(string(rune(tt.key)), func(t *testing.T) {
			ctrl := &fakeController{}
			assert.Equal(t, tt.quit, handleKey(ctrl, tt.key))
			assert.Equal(t, tt.want, ctrl.snapshot())
		})
	}
}

func TestKeyboardReadsLines(t *testing.T) {
	k := openKeyboard(strings.NewReader("p\n\nnext\nquit\nb\n"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer k.Close()

	ctrl := &fakeController{}
	k.Listen(ctrl)

	// reading stops at the first quit key
	assert.Eventually(t, func() bool { return len(ctrl.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"pause", "next", "cancel"}, ctrl.snapshot())
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	k := &keyboard{raw: true}
	w := k.Writer(&buf)

	n, err := io.WriteString(w, "a\nb\n")
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\r\nb\r\n", buf.String())

	plain := &keyboard{}
	assert.Same(t, &buf, plain.Writer(&buf))
}
