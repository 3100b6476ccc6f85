package routine

import (
	"slices"
	"time"

	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/aledsdavies/cadence/core/types"
)

// Action is an executable unit of a routine.
//
// The set of actions is closed: Sequence, Parallel, Wait, Break, Say,
// AudioCue, Metronome, Prepare, WaitWithPrompt and FireAndForget. Interpreters
// switch over the concrete type and treat anything else as an invariant
// violation. Every action's duration is computed once, at construction.
//
// Composite actions own their children exclusively: handing the same child to
// two composites panics.
type Action interface {
	// Duration is the amount of routine time the action accounts for.
	Duration() time.Duration

	base() *node
}

// node carries the ownership flag shared by every action.
type node struct {
	owned bool
}

func (n *node) base() *node { return n }

func claim(children []Action, owner string) {
	for i, child := range children {
		invariant.NotNil(child, owner+" child")
		b := child.base()
		invariant.Precondition(!b.owned, "%s child %d (%T) already belongs to another action", owner, i, child)
		b.owned = true
	}
}

// ReadyThreshold is the minimum length of a prompted wait that receives a
// second "ready?" prompt two seconds before it ends.
const ReadyThreshold = 2 * time.Second

// Prompts spoken by the compound actions.
const (
	BreakPrompt   = "break"
	PreparePrompt = "prepare"
	ReadyPrompt   = "ready?"
)

// Logical sound names played by metronome ticks. Audio players map them to
// concrete resources.
const (
	SoundClick = "click"
	SoundBell  = "bell"
)

// Sequence runs its children one after another.
type Sequence struct {
	node
	children []Action
	duration time.Duration
}

// NewSequence creates a sequence owning children.
func NewSequence(children ...Action) *Sequence {
	children = slices.Clone(children)
	claim(children, "sequence")

	var total time.Duration
	for _, child := range children {
		total = types.SaturatingAdd(total, child.Duration())
	}
	return &Sequence{children: children, duration: total}
}

// Duration is the sum of the children's durations.
func (s *Sequence) Duration() time.Duration { return s.duration }

// Children returns the children in execution order.
func (s *Sequence) Children() []Action { return slices.Clone(s.children) }

// Parallel runs its children concurrently.
type Parallel struct {
	node
	children []Action
	duration time.Duration
}

// NewParallel creates a parallel action owning children.
func NewParallel(children ...Action) *Parallel {
	children = slices.Clone(children)
	claim(children, "parallel")

	var longest time.Duration
	for _, child := range children {
		longest = max(longest, child.Duration())
	}
	return &Parallel{children: children, duration: longest}
}

// Duration is the longest child's duration.
func (p *Parallel) Duration() time.Duration { return p.duration }

// Children returns the children in declaration order.
func (p *Parallel) Children() []Action { return slices.Clone(p.children) }

// Wait pauses the routine for a fixed delay.
type Wait struct {
	node
	delay time.Duration
}

// NewWait creates a wait. Panics if delay is negative.
func NewWait(delay time.Duration) *Wait {
	invariant.NonNegativeDuration(delay, "wait delay")
	return &Wait{delay: delay}
}

func (w *Wait) Duration() time.Duration { return w.delay }

// Say speaks a phrase. Spoken time is not modelled.
type Say struct {
	node
	text string
}

// NewSay creates a say action.
func NewSay(text string) *Say {
	return &Say{text: text}
}

func (s *Say) Duration() time.Duration { return 0 }

// Text returns the phrase to speak.
func (s *Say) Text() string { return s.text }

// AudioCue plays an audio resource.
type AudioCue struct {
	node
	resource string
}

// NewAudioCue creates an audio cue for resource.
func NewAudioCue(resource string) *AudioCue {
	invariant.Precondition(resource != "", "audio resource must not be empty")
	return &AudioCue{resource: resource}
}

func (a *AudioCue) Duration() time.Duration { return 0 }

// Resource returns the resource identifier to play.
func (a *AudioCue) Resource() string { return a.resource }

// TickKind selects the sound a metronome tick makes.
type TickKind uint8

const (
	TickClick TickKind = iota
	TickBell
	TickNone
)

func (k TickKind) String() string {
	switch k {
	case TickClick:
		return "click"
	case TickBell:
		return "bell"
	case TickNone:
		return "none"
	default:
		return "unknown"
	}
}

// Sound returns the logical sound name for k, or "" for TickNone.
func (k TickKind) Sound() string {
	switch k {
	case TickClick:
		return SoundClick
	case TickBell:
		return SoundBell
	default:
		return ""
	}
}

// Tick is one metronome beat: a period of silence followed by a sound.
type Tick struct {
	PeriodBefore time.Duration
	Kind         TickKind
}

// Metronome plays a series of ticks.
type Metronome struct {
	node
	ticks []Tick
	body  *Sequence
}

// NewMetronome creates a metronome. Panics if a tick period is negative.
func NewMetronome(ticks ...Tick) *Metronome {
	ticks = slices.Clone(ticks)
	steps := make([]Action, 0, len(ticks)*2)
	for i, tick := range ticks {
		invariant.NonNegativeDuration(tick.PeriodBefore, "metronome tick period")
		invariant.Precondition(tick.Kind <= TickNone, "metronome tick %d has unknown kind %d", i, tick.Kind)
		steps = append(steps, NewWait(tick.PeriodBefore))
		if sound := tick.Kind.Sound(); sound != "" {
			steps = append(steps, NewAudioCue(sound))
		}
	}
	return &Metronome{ticks: ticks, body: NewSequence(steps...)}
}

func (m *Metronome) Duration() time.Duration { return m.body.Duration() }

// Ticks returns the configured ticks.
func (m *Metronome) Ticks() []Tick { return slices.Clone(m.ticks) }

// Body returns the wait/cue sequence the metronome expands to.
func (m *Metronome) Body() *Sequence { return m.body }

// promptedWait expands to: say prompt, wait; with a "ready?" prompt two
// seconds before the end when length reaches ReadyThreshold.
func promptedWait(prompt string, length time.Duration) *Sequence {
	if length >= ReadyThreshold {
		return NewSequence(
			NewSay(prompt),
			NewWait(length-ReadyThreshold),
			NewSay(ReadyPrompt),
			NewWait(ReadyThreshold),
		)
	}
	return NewSequence(NewSay(prompt), NewWait(length))
}

// Break announces a break and waits it out.
type Break struct {
	node
	length time.Duration
	body   *Sequence
}

// NewBreak creates a break. Panics if length is negative.
func NewBreak(length time.Duration) *Break {
	invariant.NonNegativeDuration(length, "break length")
	return &Break{length: length, body: promptedWait(BreakPrompt, length)}
}

func (b *Break) Duration() time.Duration { return b.body.Duration() }

// Length returns the configured break length.
func (b *Break) Length() time.Duration { return b.length }

// Body returns the expanded sequence.
func (b *Break) Body() *Sequence { return b.body }

// Prepare announces preparation time and waits it out.
type Prepare struct {
	node
	length time.Duration
	body   *Sequence
}

// NewPrepare creates a prepare action. Panics if length is negative.
func NewPrepare(length time.Duration) *Prepare {
	invariant.NonNegativeDuration(length, "prepare length")
	return &Prepare{length: length, body: promptedWait(PreparePrompt, length)}
}

func (p *Prepare) Duration() time.Duration { return p.body.Duration() }

// Length returns the configured preparation length.
func (p *Prepare) Length() time.Duration { return p.length }

// Body returns the expanded sequence.
func (p *Prepare) Body() *Sequence { return p.body }

// WaitWithPrompt speaks a custom prompt and then waits.
type WaitWithPrompt struct {
	node
	length time.Duration
	prompt string
	body   *Sequence
}

// NewWaitWithPrompt creates a prompted wait. Panics if length is negative.
func NewWaitWithPrompt(length time.Duration, prompt string) *WaitWithPrompt {
	invariant.NonNegativeDuration(length, "prompted wait length")
	return &WaitWithPrompt{length: length, prompt: prompt, body: promptedWait(prompt, length)}
}

func (w *WaitWithPrompt) Duration() time.Duration { return w.body.Duration() }

// Length returns the configured wait length.
func (w *WaitWithPrompt) Length() time.Duration { return w.length }

// Prompt returns the custom prompt.
func (w *WaitWithPrompt) Prompt() string { return w.prompt }

// Body returns the expanded sequence.
func (w *WaitWithPrompt) Body() *Sequence { return w.body }

// FireAndForget starts its inner action without waiting for it. It never
// accounts for any routine time.
type FireAndForget struct {
	node
	inner Action
}

// NewFireAndForget wraps inner.
func NewFireAndForget(inner Action) *FireAndForget {
	claim([]Action{inner}, "don't wait")
	return &FireAndForget{inner: inner}
}

func (f *FireAndForget) Duration() time.Duration { return 0 }

// Inner returns the wrapped action.
func (f *FireAndForget) Inner() Action { return f.inner }
