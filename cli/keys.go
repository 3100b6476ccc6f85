package main

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// controller is the part of a session the keyboard drives.
type controller interface {
	TogglePause() bool
	SkipForward() time.Duration
	SkipBackward() time.Duration
	Cancel()
}

// keyboard reads run controls from stdin. A terminal is put into raw mode
// so single key presses arrive without Enter; other input is read a line at
// a time and the first character of each line counts.
type keyboard struct {
	in      io.Reader
	logger  *slog.Logger
	raw     bool
	restore func()
}

func openKeyboard(in io.Reader, logger *slog.Logger) *keyboard {
	k := &keyboard{in: in, logger: logger, restore: func() {}}

	f, ok := in.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return k
	}
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		logger.Warn("keyboard controls unavailable", "error", err)
		return k
	}
	k.raw = true
	k.restore = func() { _ = term.Restore(fd, state) }
	return k
}

// Writer returns out, translating "\n" to "\r\n" while the terminal is raw.
func (k *keyboard) Writer(out io.Writer) io.Writer {
	if !k.raw {
		return out
	}
	return crlfWriter{out}
}

// Listen dispatches key presses to c until input ends. The reading
// goroutine may outlive the run; controls on a finished session are no-ops.
func (k *keyboard) Listen(c controller) {
	go func() {
		if k.raw {
			buf := make([]byte, 1)
			for {
				if _, err := k.in.Read(buf); err != nil {
					return
				}
				if handleKey(c, buf[0]) {
					return
				}
			}
		}

		scanner := bufio.NewScanner(k.in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if handleKey(c, line[0]) {
				return
			}
		}
	}()
}

// Close restores the terminal.
func (k *keyboard) Close() { k.restore() }

// handleKey applies one key press and reports whether it ended the run.
func handleKey(c controller, key byte) (quit bool) {
	switch key {
	case 'p', 'P', ' ':
		c.TogglePause()
	case 'n', 'N':
		c.SkipForward()
	case 'b', 'B':
		c.SkipBackward()
	case 'q', 'Q', 3, 4: // ^C and ^D arrive as bytes in raw mode
		c.Cancel()
		return true
	}
	return false
}

type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(c.w, strings.ReplaceAll(string(p), "\n", "\r\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}
