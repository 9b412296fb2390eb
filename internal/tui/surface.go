package tui

import (
	"context"
	"time"

	"complaint-desk/internal/action"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

const fadeDuration = 300 * time.Millisecond

type toast struct {
	text     string
	severity action.Severity
}

type confirmState struct {
	prompt  string
	proceed func()
	focus   confirmModalFocus
}

type editState struct {
	open  bool
	id    string
	email string
}

// surface is the dashboard side of the controller's collaborators. The
// controller calls into it synchronously from Update; anything that has to
// happen later is queued as a tea.Cmd and drained at the end of Update.
//
// It lives behind a pointer so the copies bubbletea makes of appModel share
// one instance.
type surface struct {
	ctx  context.Context
	ttl  time.Duration
	fade time.Duration

	toast    toast
	toastSeq int

	confirm *confirmState
	edit    editState
	editor  textarea.Model

	fading map[string]func()

	cmds []tea.Cmd
}

func newSurface(ctx context.Context, ttl time.Duration) *surface {
	if ctx == nil {
		ctx = context.Background()
	}
	ed := textarea.New()
	ed.Placeholder = "Describe the issue…"
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.SetWidth(modalBodyWidth(80))
	ed.SetHeight(6)
	return &surface{
		ctx:    ctx,
		ttl:    ttl,
		fade:   fadeDuration,
		editor: ed,
		fading: map[string]func(){},
	}
}

func (s *surface) queue(cmd tea.Cmd) {
	if cmd != nil {
		s.cmds = append(s.cmds, cmd)
	}
}

func (s *surface) drain() tea.Cmd {
	if len(s.cmds) == 0 {
		return nil
	}
	cmds := s.cmds
	s.cmds = nil
	return tea.Batch(cmds...)
}

// Notify replaces the current toast and schedules its dismissal.
func (s *surface) Notify(message string, severity action.Severity) {
	s.toastSeq++
	seq := s.toastSeq
	s.toast = toast{text: message, severity: severity}
	s.queue(tea.Tick(s.ttl, func(time.Time) tea.Msg { return toastDoneMsg{seq: seq} }))
}

func (s *surface) Confirm(prompt string, proceed func()) {
	s.confirm = &confirmState{prompt: prompt, proceed: proceed, focus: confirmFocusConfirm}
}

func (s *surface) answerConfirm(accept bool) {
	c := s.confirm
	s.confirm = nil
	if accept && c != nil && c.proceed != nil {
		c.proceed()
	}
}

func (s *surface) Open(id, email, text string) {
	s.edit = editState{open: true, id: id, email: email}
	s.editor.SetValue(text)
	s.queue(s.editor.Focus())
}

func (s *surface) Close() {
	s.edit = editState{}
	s.editor.Blur()
	s.editor.Reset()
}

func (s *surface) FadeOut(id string, remove func()) {
	s.fading[id] = remove
	s.queue(tea.Tick(s.fade, func(time.Time) tea.Msg { return fadeDoneMsg{id: id} }))
}

func (s *surface) finishFade(id string) {
	remove, ok := s.fading[id]
	if !ok {
		return
	}
	delete(s.fading, id)
	remove()
}

// Dispatch sends the flight from a tea.Cmd goroutine; the response comes back
// as a flightDoneMsg and is settled in Update.
func (s *surface) Dispatch(f *action.Flight) {
	ctx := s.ctx
	s.queue(func() tea.Msg {
		return flightDoneMsg{flight: f, resp: f.Send(ctx)}
	})
}
