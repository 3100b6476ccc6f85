package routine

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProgram() *Program {
	squats := NewExercise("Squats", 3, 1, []MatcherAction{
		{
			Matcher: NewTypedMatcher(BeforeExercise),
			Action:  NewSequence(NewPrepare(10*time.Second), NewSay("go")),
		},
		{
			Matcher: NewNumberedMatcher(DuringRepetition, Constraint{Atoms: []Atom{Range(Literal(1), Literal(3))}}),
			Action: NewSequence(
				NewParallel(
					NewMetronome(Tick{PeriodBefore: time.Second}, Tick{PeriodBefore: 500 * time.Millisecond, Kind: TickBell}),
					NewWaitWithPrompt(3*time.Second, `say "hi"`),
				),
				NewFireAndForget(NewSequence(NewAudioCue(`c:\beep.wav`))),
			),
		},
		{
			Matcher: NewNumberedMatcher(AfterSet, Constraint{Negated: true, Atoms: []Atom{Single(Last(0))}}),
			Action:  NewSequence(NewBreak(90 * time.Second)),
		},
	})
	return NewProgram([]*ExerciseProgram{
		NewExerciseProgram("Monday", []*Exercise{squats}),
		NewExerciseProgram("Rest", nil),
	})
}

func TestFormat(t *testing.T) {
	want := `# Monday

## Squats
* 3 sets x 1 rep
* before:
  * prepare for 10s
  * say "go"
* during rep 1..3:
  * parallel:
    * metronome at 1s, 0.5s*
    * wait for 3s with prompt "say \"hi\""
  * don't wait:
    * play "c:\\beep.wav"
* after set ^last:
  * break for 1m30s

# Rest
`
	got := Format(sampleProgram())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Format mismatch (-want +got):\n%s", diff)
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `""`, Quote(""))
	assert.Equal(t, `"a \"b\" \\ c"`, Quote(`a "b" \ c`))
}

func TestOutline(t *testing.T) {
	want := Shape{Programs: []ProgramShape{
		{
			Name: "Monday",
			Exercises: []ExerciseShape{{
				Name:         "Squats",
				Sets:         3,
				Repetitions:  1,
				Matchers:     []string{"before", "during rep 1..3", "after set ^last"},
				ActionCounts: []int{2, 2, 1},
			}},
		},
		{Name: "Rest", Exercises: []ExerciseShape{}},
	}}

	if diff := cmp.Diff(want, Outline(sampleProgram())); diff != "" {
		t.Errorf("Outline mismatch (-want +got):\n%s", diff)
	}
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(sampleProgram().ExercisePrograms()[0])
	require.NoError(t, err)
	b, err := Fingerprint(sampleProgram().ExercisePrograms()[0])
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b, "same structure must hash the same")

	other := NewExerciseProgram("Monday", []*Exercise{
		NewExercise("Squats", 4, 1, nil),
	})
	c, err := Fingerprint(other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
