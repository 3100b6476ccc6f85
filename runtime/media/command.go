package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aledsdavies/cadence/runtime/executor"
)

// Placeholders substituted into command arguments.
const (
	TextPlaceholder = "{text}"
	FilePlaceholder = "{file}"
)

// ErrNoCommand is returned when a command template is empty.
var ErrNoCommand = errors.New("empty command")

// Command is an argv template. Every argument containing the placeholder
// has it replaced before the command runs; if no argument contains it, the
// value is appended as a final argument.
type Command []string

func (c Command) expand(placeholder, value string) ([]string, error) {
	if len(c) == 0 {
		return nil, ErrNoCommand
	}
	args := make([]string, len(c))
	found := false
	for i, arg := range c {
		if strings.Contains(arg, placeholder) {
			found = true
			arg = strings.ReplaceAll(arg, placeholder, value)
		}
		args[i] = arg
	}
	if !found {
		args = append(args, value)
	}
	return args, nil
}

func (c Command) run(ctx context.Context, placeholder, value string) error {
	args, err := c.expand(placeholder, value)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

// CommandSpeaker speaks by running an external text-to-speech command,
// e.g. []string{"espeak", "{text}"}.
type CommandSpeaker struct {
	Command Command
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	return s.Command.run(ctx, TextPlaceholder, text)
}

// CommandPlayer plays audio by running an external player command, e.g.
// []string{"paplay", "{file}"}. Logical sound names are looked up in
// Resources first; anything else is passed through as a file path.
type CommandPlayer struct {
	Command   Command
	Resources map[string]string
}

func (p *CommandPlayer) Play(ctx context.Context, resource string) error {
	return p.Command.run(ctx, FilePlaceholder, p.Resolve(resource))
}

// Resolve maps a logical sound name to its configured file.
func (p *CommandPlayer) Resolve(resource string) string {
	if file, ok := p.Resources[resource]; ok {
		return file
	}
	return resource
}

var (
	_ executor.Speaker     = (*CommandSpeaker)(nil)
	_ executor.AudioPlayer = (*CommandPlayer)(nil)
)
