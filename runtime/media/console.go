package media

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aledsdavies/cadence/runtime/executor"
)

// Console prints speech and audio cues instead of producing sound. It is
// the fallback when no speech or audio command is configured.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Speak(ctx context.Context, text string) error {
	return c.print(ctx, "» %s\n", text)
}

func (c *Console) Play(ctx context.Context, resource string) error {
	return c.print(ctx, "♪ %s\n", resource)
}

func (c *Console) print(ctx context.Context, format string, arg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, format, arg)
	return err
}

var (
	_ executor.Speaker     = (*Console)(nil)
	_ executor.AudioPlayer = (*Console)(nil)
)
