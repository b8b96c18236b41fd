package consultation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/curo/internal/advice"
	"github.com/fdg312/curo/internal/ai"
	"github.com/fdg312/curo/internal/theme"
)

var (
	ErrSymptomsRequired  = errors.New("symptoms required")
	ErrCredentialMissing = errors.New("credential missing")
	ErrAdviceUnavailable = errors.New("advice unavailable")
	ErrBusy              = errors.New("consultation is submitting")
	ErrNotEditable       = errors.New("consultation has a result, start a new one to edit")
	ErrClosed            = errors.New("consultation closed")
)

// CredentialSource supplies the completion key for a client. An empty key
// with a nil error means none is configured.
type CredentialSource interface {
	Lookup(ctx context.Context, clientID string) (string, error)
}

// Controller drives one consultation: Idle -> Submitting -> Resulted -> Idle.
// Input is editable only while Idle, and at most one request is in flight.
type Controller struct {
	mu          sync.Mutex
	clientID    string
	provider    ai.Provider
	credentials CredentialSource
	doc         *theme.Document
	scope       *theme.Scope

	input  advice.Input
	phase  Phase
	result *advice.Parsed
	notice *Notice
	closed bool
	// pending is set while Submit reads the credential; the phase stays Idle.
	pending bool

	lastActive   time.Time
	now          func() time.Time
	onTransition func(from, to Phase)
}

type Option func(*Controller)

// WithTransitionHook registers fn to run after every phase change, outside
// the controller lock.
func WithTransitionHook(fn func(from, to Phase)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// WithClock overrides time.Now, for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController enters a theme scope on doc; Close must be called to revert it.
func NewController(clientID string, provider ai.Provider, credentials CredentialSource, doc *theme.Document, opts ...Option) *Controller {
	if doc == nil {
		doc = theme.NewDocument()
	}
	c := &Controller{
		clientID:    clientID,
		provider:    provider,
		credentials: credentials,
		doc:         doc,
		scope:       theme.Enter(doc),
		phase:       PhaseIdle,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastActive = c.now()
	c.scope.Apply(theme.None)
	return c
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) SetSymptoms(text string) (Snapshot, error) {
	return c.Update(Patch{Symptoms: &text})
}

func (c *Controller) SetIncludeDiet(on bool) (Snapshot, error) {
	return c.Update(Patch{IncludeDiet: &on})
}

func (c *Controller) SetIncludeExercise(on bool) (Snapshot, error) {
	return c.Update(Patch{IncludeExercise: &on})
}

// Update applies p while Idle and re-applies the theme for the new toggles.
func (c *Controller) Update(p Patch) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return c.snapshotLocked(), err
	}

	c.touchLocked()
	c.notice = nil
	if p.Symptoms != nil {
		c.input.Symptoms = *p.Symptoms
	}
	if p.IncludeDiet != nil {
		c.input.IncludeDiet = *p.IncludeDiet
	}
	if p.IncludeExercise != nil {
		c.input.IncludeExercise = *p.IncludeExercise
	}
	c.scope.Apply(theme.Select(c.input.IncludeDiet, c.input.IncludeExercise))

	return c.snapshotLocked(), nil
}

// Submit runs the advice pipeline once. Blank symptoms or a missing
// credential leave the controller Idle with a notice and make no request.
// A provider failure returns to Idle with an error notice; the caller may
// submit again.
func (c *Controller) Submit(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	c.touchLocked()
	c.notice = nil

	if !c.input.HasSymptoms() {
		c.notice = &noticeSymptomsRequired
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrSymptomsRequired
	}

	c.pending = true
	c.mu.Unlock()

	credential, err := c.credentials.Lookup(ctx, c.clientID)

	c.mu.Lock()
	c.pending = false
	if c.closed {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrClosed
	}
	if err != nil {
		c.notice = &noticeAdviceFailed
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, fmt.Errorf("lookup credential: %w", err)
	}
	if strings.TrimSpace(credential) == "" {
		c.notice = &noticeCredentialMissing
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrCredentialMissing
	}

	input := c.input
	c.phase = PhaseSubmitting
	c.mu.Unlock()
	c.notify(PhaseIdle, PhaseSubmitting)

	// The request runs to completion even if the caller goes away.
	raw, sendErr := c.provider.Send(context.WithoutCancel(ctx), advice.BuildPrompt(input), credential)

	c.mu.Lock()
	c.touchLocked()
	if sendErr != nil {
		c.phase = PhaseIdle
		c.notice = &noticeAdviceFailed
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(PhaseSubmitting, PhaseIdle)

		log.Printf("WARN consultation: client=%s kind=%s err=%v", c.clientID, failureKind(sendErr), sendErr)
		return snap, fmt.Errorf("%w: %w", ErrAdviceUnavailable, sendErr)
	}

	parsed := advice.Parse(raw)
	c.result = &parsed
	c.phase = PhaseResulted
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(PhaseSubmitting, PhaseResulted)

	if parsed.Degraded() {
		log.Printf("INFO consultation: client=%s reply not structured, using fallback", c.clientID)
	}
	return snap, nil
}

// NewConsultation discards the result and clears the input and toggles.
func (c *Controller) NewConsultation() (Snapshot, error) {
	c.mu.Lock()
	if c.closed {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrClosed
	}
	if c.busyLocked() {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrBusy
	}

	from := c.phase
	c.touchLocked()
	c.input = advice.Input{}
	c.result = nil
	c.notice = nil
	c.phase = PhaseIdle
	c.scope.Apply(theme.None)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if from != PhaseIdle {
		c.notify(from, PhaseIdle)
	}
	return snap, nil
}

// Close tears the view down and restores the document's prior theme.
// It is safe to call more than once and from any phase.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.scope.Close()
}

// expire closes the controller if it has been idle since before cutoff and
// nothing is in flight. It reports whether it closed.
func (c *Controller) expire(cutoff time.Time) bool {
	c.mu.Lock()
	if c.closed || c.busyLocked() || c.lastActive.After(cutoff) {
		c.mu.Unlock()
		return false
	}
	c.closed = true
	c.mu.Unlock()
	c.scope.Close()
	return true
}

func (c *Controller) editableLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.busyLocked():
		return ErrBusy
	case c.phase == PhaseResulted:
		return ErrNotEditable
	}
	return nil
}

func (c *Controller) busyLocked() bool {
	return c.phase == PhaseSubmitting || c.pending
}

// touch marks the controller active. It returns false once closed.
func (c *Controller) touch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.touchLocked()
	return true
}

func (c *Controller) touchLocked() {
	c.lastActive = c.now()
}

func (c *Controller) notify(from, to Phase) {
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	id := c.scope.Current()
	snap := Snapshot{
		Phase:      c.phase,
		Editable:   c.phase == PhaseIdle && !c.pending && !c.closed,
		Input:      c.input,
		Theme:      id,
		ThemeClass: c.doc.Class(),
	}
	if c.result != nil {
		a := c.result.Advice
		snap.Advice = &a
		snap.Tone = a.Tone()
		snap.Degraded = c.result.Degraded()
	}
	if c.notice != nil {
		n := *c.notice
		snap.Notice = &n
	}
	return snap
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ai.ErrAuthMissing):
		return "auth_missing"
	case errors.Is(err, ai.ErrServiceRejected):
		return "service_rejected"
	case errors.Is(err, ai.ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
