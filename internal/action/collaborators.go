package action

import "context"

// Backend sends one request and returns the decoded envelope. Transport
// failures are reported as *TransportError; a decoded success:false answer is
// returned with a nil error.
type Backend interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "success"
}

// Notifier displays a message. Implementations replace any previous message
// and dismiss it on their own.
type Notifier interface {
	Notify(message string, severity Severity)
}

type NotifierFunc func(message string, severity Severity)

func (f NotifierFunc) Notify(message string, severity Severity) { f(message, severity) }

// Confirmer asks the user to confirm a destructive action. proceed is called
// (on the UI goroutine) only if the user accepts; declining never calls it.
type Confirmer interface {
	Confirm(prompt string, proceed func())
}

type ConfirmerFunc func(prompt string, proceed func())

func (f ConfirmerFunc) Confirm(prompt string, proceed func()) { f(prompt, proceed) }

// AlwaysConfirm accepts every prompt immediately.
var AlwaysConfirm = ConfirmerFunc(func(_ string, proceed func()) { proceed() })

// NeverConfirm declines every prompt.
var NeverConfirm = ConfirmerFunc(func(string, func()) {})

// EditSurface is the modal used to edit a complaint's text.
type EditSurface interface {
	Open(id, email, text string)
	Close()
}

// Fader removes a row with a transition. remove must eventually be called on
// the UI goroutine.
type Fader interface {
	FadeOut(id string, remove func())
}

type FaderFunc func(id string, remove func())

func (f FaderFunc) FadeOut(id string, remove func()) { f(id, remove) }

// Dispatcher runs a flight's network round-trip and hands the outcome back to
// Flight.Settle on the UI goroutine.
type Dispatcher interface {
	Dispatch(f *Flight)
}

type DispatcherFunc func(f *Flight)

func (d DispatcherFunc) Dispatch(f *Flight) { d(f) }

// Inline runs the round-trip on the calling goroutine. Used by the CLI and
// tests, where there is no event loop to return to.
func Inline(ctx context.Context) Dispatcher {
	return DispatcherFunc(func(f *Flight) {
		f.Settle(f.Send(ctx))
	})
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, Severity) {}

type noopEditSurface struct{}

func (noopEditSurface) Open(string, string, string) {}
func (noopEditSurface) Close()                      {}

var immediateFade = FaderFunc(func(_ string, remove func()) { remove() })
