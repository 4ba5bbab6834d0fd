package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"azdo-cli/internal/azdo"
)

// Envelope is the uniform result of a dispatch. Exactly one of Payload or
// ErrorMessage is meaningful, selected by OK. Callers that transport the
// envelope as JSON always see the ok flag, even when false.
type Envelope struct {
	OK           bool   `json:"ok"`
	Payload      any    `json:"payload,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Invocation is the audit record of one dispatched call.
type Invocation struct {
	ID         string
	SessionID  string
	Tool       string
	Arguments  string
	OK         bool
	Error      string
	DurationMs int64
	Timestamp  time.Time
}

// Recorder persists invocation records. Implementations run on the
// dispatch path and must never fail the call they observe.
type Recorder interface {
	Record(ctx context.Context, inv Invocation)
}

type multiRecorder []Recorder

func (m multiRecorder) Record(ctx context.Context, inv Invocation) {
	for _, r := range m {
		r.Record(ctx, inv)
	}
}

// MultiRecorder fans each invocation record out to every recorder given,
// skipping nils.
func MultiRecorder(rs ...Recorder) Recorder {
	var out multiRecorder
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Dispatcher resolves named calls against a registry and wraps every
// outcome, including handler panics, in an Envelope. The three failure
// shapes keep distinct message prefixes so callers can tell an unknown
// name from bad arguments from an upstream failure.
type Dispatcher struct {
	registry  *Registry
	client    *azdo.Client
	recorder  Recorder
	sessionID string
}

// NewDispatcher builds a dispatcher over reg. Each dispatcher carries a
// session ID stamped on every invocation record it emits.
func NewDispatcher(reg *Registry, client *azdo.Client) *Dispatcher {
	return &Dispatcher{
		registry:  reg,
		client:    client,
		sessionID: uuid.NewString(),
	}
}

// WithRecorder attaches an invocation recorder and returns the dispatcher.
func (d *Dispatcher) WithRecorder(r Recorder) *Dispatcher {
	d.recorder = r
	return d
}

// SessionID returns the identifier stamped on this dispatcher's records.
func (d *Dispatcher) SessionID() string {
	return d.sessionID
}

// Registry exposes the catalog backing this dispatcher.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// ListOperations returns the discovery listing for every operation.
func (d *Dispatcher) ListOperations() []OperationInfo {
	return d.registry.List()
}

// Call dispatches one named operation with raw arguments and records the
// outcome. It never returns an error: every failure is an envelope.
func (d *Dispatcher) Call(ctx context.Context, name string, raw map[string]any) Envelope {
	start := time.Now()
	env := d.dispatch(ctx, name, raw)
	d.record(ctx, name, raw, env, time.Since(start))
	return env
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, raw map[string]any) (env Envelope) {
	op, ok := d.registry.Lookup(name)
	if !ok {
		return Envelope{ErrorMessage: "Unknown tool: " + name}
	}

	args, err := op.Validate(raw)
	if err != nil {
		return Envelope{ErrorMessage: "Invalid arguments: " + err.Error()}
	}

	// A panicking handler is reported like any other execution failure.
	defer func() {
		if r := recover(); r != nil {
			env = Envelope{ErrorMessage: fmt.Sprintf("Error executing %s: %v", name, r)}
		}
	}()

	payload, err := op.Handler(ctx, d.client, args)
	if err != nil {
		return Envelope{ErrorMessage: fmt.Sprintf("Error executing %s: %v", name, err)}
	}
	return Envelope{OK: true, Payload: payload}
}

func (d *Dispatcher) record(ctx context.Context, name string, raw map[string]any, env Envelope, elapsed time.Duration) {
	if d.recorder == nil {
		return
	}
	argsJSON, err := json.Marshal(raw)
	if err != nil {
		argsJSON = []byte("{}")
	}
	d.recorder.Record(ctx, Invocation{
		ID:         uuid.NewString(),
		SessionID:  d.sessionID,
		Tool:       name,
		Arguments:  string(argsJSON),
		OK:         env.OK,
		Error:      env.ErrorMessage,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	})
}
