package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoDays = `# Monday

## Squats
* 2 sets x 5 reps
* before:
  * say "squats"
* after set ^last:
  * break for 3s

# Tuesday

## Plank
* 1 set x 1 rep
* during rep:
  * wait for 30s with prompt "hold"
`

const quickDay = `# Quick
## Jumps
* 1 set x 1 rep
* before:
  * say "jump"
  * play "whistle"
`

// runCLI executes the root command with a fresh config and history location.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("CADENCE_HISTORY_PATH", filepath.Join(home, "history.db"))
	return runCLIIn(t, home, stdin, args...)
}

func runCLIIn(t *testing.T, home, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", filepath.Join(home, "config.yaml"), "--no-color"}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func writeRoutine(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routine.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckCommand(t *testing.T) {
	good := writeRoutine(t, twoDays)
	out, err := runCLI(t, "", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+good+": 2 programs, 2 exercises")

	bad := writeRoutine(t, "# P\n## E\n* during:\n")
	out, err = runCLI(t, "", "check", good, bad)
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "1 of 2 files failed to parse", cliErr.Message)
	assert.Contains(t, out, "Error: "+bad+":3:")
	assert.Contains(t, out, "^")
}

func TestCheckStdin(t *testing.T) {
	out, err := runCLI(t, quickDay, "check", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "-: 1 program, 1 exercise")
}

func TestFmtCommand(t *testing.T) {
	messy := "# Quick\n## Jumps\n* 1 SET X 1 REP\n* BEFORE:\n  * Say 'jump'\n"
	path := writeRoutine(t, messy)

	out, err := runCLI(t, "", "fmt", path)
	require.NoError(t, err)
	assert.Equal(t, "# Quick\n\n## Jumps\n* 1 set x 1 rep\n* before:\n  * say \"jump\"\n", out)

	_, err = runCLI(t, "", "fmt", "--check", path)
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Contains(t, cliErr.Message, "is not formatted")

	_, err = runCLI(t, "", "fmt", "-w", path)
	require.NoError(t, err)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(written))

	_, err = runCLI(t, "", "fmt", "--check", path)
	assert.NoError(t, err)
}

func TestShowCommand(t *testing.T) {
	path := writeRoutine(t, twoDays)

	out, err := runCLI(t, "", "show", path, "-p", "Tuesday")
	require.NoError(t, err)
	assert.Contains(t, out, "Tuesday  30s")
	assert.Contains(t, out, "Plank")
	assert.Contains(t, out, "1 set x 1 rep")
	assert.NotContains(t, out, "Squats")
}

func TestRunDryRun(t *testing.T) {
	path := writeRoutine(t, twoDays)

	out, err := runCLI(t, "", "run", path, "--program", "Monday", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "▶ Squats")
	assert.Contains(t, out, "» squats")
	assert.Contains(t, out, "» break")
	assert.Contains(t, out, "completed")
}

func TestRunProgramSelection(t *testing.T) {
	path := writeRoutine(t, twoDays)

	_, err := runCLI(t, "", "run", path, "--dry-run")
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "Choose one with --program", cliErr.Hint)

	_, err = runCLI(t, "", "run", path, "--dry-run", "-p", "monday")
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, `Did you mean "Monday"?`, cliErr.Hint)
}

func TestRunInvalidSkip(t *testing.T) {
	path := writeRoutine(t, quickDay)

	_, err := runCLI(t, "", "run", path, "--dry-run", "--skip", "soon")
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Contains(t, cliErr.Message, "invalid --skip")
}

func TestRunRecordsHistory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CADENCE_HISTORY_PATH", filepath.Join(home, "history.db"))
	path := writeRoutine(t, quickDay)

	out, err := runCLIIn(t, home, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")

	out, err = runCLIIn(t, home, "", "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "» jump")
	assert.Contains(t, out, "♪ whistle")

	out, err = runCLIIn(t, home, "", "run", path, "--resume")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to resume")

	out, err = runCLIIn(t, home, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "STARTED")
	assert.Equal(t, 2, strings.Count(out, "Quick"))
	assert.Contains(t, out, "completed")
}

func TestHistoryDisabled(t *testing.T) {
	t.Setenv("CADENCE_HISTORY_ENABLED", "false")
	_, err := runCLI(t, "", "history")
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "run history is disabled", cliErr.Message)
}

func TestFindClosestMatch(t *testing.T) {
	candidates := []string{"Monday", "Tuesday", "Leg day"}

	tests := []struct {
		target string
		want   string
	}{
		{"monday", "Monday"},
		{"tues", "Tuesday"},
		{"Mondya", "Monday"},
		{"legday", "Leg day"},
		{"xyzzy", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, findClosestMatch(tt.target, candidates))
		})
	}
	assert.Empty(t, findClosestMatch("x", nil))
}

func TestFormatError(t *testing.T) {
	var buf bytes.Buffer
	FormatError(&buf, &CLIError{Message: "broken", Details: "more", Hint: "fix it"}, false)
	assert.Equal(t, "Error: broken\n\nmore\nHint: fix it\n", buf.String())
}
