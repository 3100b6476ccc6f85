package routine

import (
	"encoding/hex"
	"fmt"

	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// canonicalExerciseProgram is the intermediate form for deterministic
// hashing. Only structure and timing are included; the order of every list
// is the declaration order.
type canonicalExerciseProgram struct {
	Version   uint8
	Name      string
	Exercises []canonicalExercise
}

type canonicalExercise struct {
	Name   string
	Sets   int
	Reps   int
	Blocks []canonicalBlock
}

type canonicalBlock struct {
	Matcher string
	Action  canonicalAction
}

type canonicalAction struct {
	Kind     string
	Nanos    int64
	Text     string
	Ticks    []canonicalTick
	Children []canonicalAction
}

type canonicalTick struct {
	Nanos int64
	Kind  uint8
}

// Fingerprint returns a stable hex digest of an exercise program's structure.
// Two programs with the same exercises, matchers and actions share a
// fingerprint regardless of formatting in the source document.
func Fingerprint(ep *ExerciseProgram) (string, error) {
	cp := canonicalExerciseProgram{Version: 1, Name: ep.name}
	for _, ex := range ep.exercises {
		ce := canonicalExercise{Name: ex.name, Sets: ex.sets, Reps: ex.reps}
		for _, pair := range ex.pairs {
			ce.Blocks = append(ce.Blocks, canonicalBlock{
				Matcher: FormatMatcher(pair.Matcher),
				Action:  canonicalize(pair.Action),
			})
		}
		cp.Exercises = append(cp.Exercises, ce)
	}

	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return "", fmt.Errorf("cbor mode: %w", err)
	}
	data, err := encMode.Marshal(cp)
	if err != nil {
		return "", fmt.Errorf("encoding %q: %w", ep.name, err)
	}

	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalize(action Action) canonicalAction {
	switch a := action.(type) {
	case *Sequence:
		return canonicalAction{Kind: "sequence", Children: canonicalizeAll(a.children)}
	case *Parallel:
		return canonicalAction{Kind: "parallel", Children: canonicalizeAll(a.children)}
	case *FireAndForget:
		return canonicalAction{Kind: "dont_wait", Children: []canonicalAction{canonicalize(a.inner)}}
	case *Wait:
		return canonicalAction{Kind: "wait", Nanos: int64(a.delay)}
	case *WaitWithPrompt:
		return canonicalAction{Kind: "wait_prompt", Nanos: int64(a.length), Text: a.prompt}
	case *Break:
		return canonicalAction{Kind: "break", Nanos: int64(a.length)}
	case *Prepare:
		return canonicalAction{Kind: "prepare", Nanos: int64(a.length)}
	case *Say:
		return canonicalAction{Kind: "say", Text: a.text}
	case *AudioCue:
		return canonicalAction{Kind: "play", Text: a.resource}
	case *Metronome:
		ticks := make([]canonicalTick, len(a.ticks))
		for i, tick := range a.ticks {
			ticks[i] = canonicalTick{Nanos: int64(tick.PeriodBefore), Kind: uint8(tick.Kind)}
		}
		return canonicalAction{Kind: "metronome", Ticks: ticks}
	default:
		invariant.Invariant(false, "unknown action type: %T", action)
		return canonicalAction{}
	}
}

func canonicalizeAll(actions []Action) []canonicalAction {
	out := make([]canonicalAction, len(actions))
	for i, a := range actions {
		out[i] = canonicalize(a)
	}
	return out
}
