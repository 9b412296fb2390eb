package tui

import (
	"errors"
	"strings"

	"complaint-desk/internal/action"
	"complaint-desk/internal/api"
	"complaint-desk/internal/model"
	"complaint-desk/internal/perm"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	msgSubmitted     = "Complaint submitted successfully!"
	msgSubmitFailed  = "Error submitting complaint: "
	msgLoadFailed    = "Error loading complaints: "
	msgAdminRequired = "Only admins can change a complaint's status."
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ui.editor.SetWidth(modalBodyWidth(msg.Width))
		m.compose.SetWidth(modalBodyWidth(msg.Width))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case complaintsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Warn("load complaints failed", zap.Error(msg.err))
			m.ui.Notify(msgLoadFailed+errorText(msg.err), action.SeverityError)
			break
		}
		// Replace keeps rows whose controls are still in flight.
		m.ctrl.Rows().Replace(msg.complaints)
		m.clampSelection()

	case flightDoneMsg:
		st := msg.flight.Settle(msg.resp)
		m.log.Debug("flight settled",
			zap.String("kind", st.Kind.String()),
			zap.String("complaint_id", st.ComplaintID),
			zap.String("outcome", st.Outcome.String()),
		)
		m.clampSelection()

	case toastDoneMsg:
		if msg.seq == m.ui.toastSeq {
			m.ui.toast = toast{}
		}

	case fadeDoneMsg:
		m.ui.finishFade(msg.id)
		m.clampSelection()

	case submittedMsg:
		m.composeBusy = false
		if msg.err != nil {
			m.ui.Notify(msgSubmitFailed+errorText(msg.err), action.SeverityError)
			break
		}
		m.composing = false
		m.compose.Reset()
		m.compose.Blur()
		if _, exists := m.ctrl.Rows().Lookup(msg.complaint.ID); !exists {
			m.ctrl.Rows().Prepend(msg.complaint)
		}
		m.selected = 0
		m.ui.Notify(msgSubmitted, action.SeveritySuccess)

	case subscribedMsg:
		if msg.err != nil {
			m.log.Warn("change feed unavailable", zap.Error(msg.err))
			break
		}
		m.events = msg.events
		cmds = append(cmds, waitForEvent(msg.events))

	case feedMsg:
		if !msg.ok {
			m.events = nil
			break
		}
		m.log.Debug("change event", zap.String("id", msg.event.Data.ID), zap.String("kind", msg.event.Data.Kind))
		cmds = append(cmds, m.reload(), waitForEvent(m.events))

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.updateKey(msg)
		cmds = append(cmds, cmd)

	default:
		// Cursor blinks and other component messages.
		if m.ui.edit.open {
			var cmd tea.Cmd
			m.ui.editor, cmd = m.ui.editor.Update(msg)
			cmds = append(cmds, cmd)
		} else if m.composing {
			var cmd tea.Cmd
			m.compose, cmd = m.compose.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.ui.drain())
	return m, tea.Batch(cmds...)
}

func (m appModel) updateKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.modal() {
	case modalConfirm:
		return m.updateConfirm(msg)
	case modalEdit:
		return m.updateEdit(msg)
	case modalCompose:
		return m.updateCompose(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < m.ctrl.Rows().Len()-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Details):
		m.showDetail = !m.showDetail
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.reload()
	case key.Matches(msg, m.keys.New):
		m.composing = true
		m.compose.Reset()
		return m, m.compose.Focus()
	case msg.String() == "t" && !perm.CanToggleStatus(m.user):
		m.ui.Notify(msgAdminRequired, action.SeverityError)
	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.selectedRow(); ok {
			m.handle(action.ToggleStatus(row.ID, row.Status))
		}
	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.selectedRow(); ok && perm.CanEditComplaint(m.user, model.Complaint{UserEmail: row.Email}) {
			m.handle(action.Delete(row.ID))
		}
	case key.Matches(msg, m.keys.Edit):
		if row, ok := m.selectedRow(); ok && !row.Fading && perm.CanEditComplaint(m.user, model.Complaint{UserEmail: row.Email}) {
			if err := m.ctrl.OpenEdit(row.ID); err != nil {
				m.log.Debug("open edit", zap.Error(err))
			}
		}
	}
	return m, nil
}

// handle runs an intent. Busy controls are simply ignored, as a disabled
// button would be; validation failures were already shown as a toast.
func (m appModel) handle(in action.Intent) {
	err := m.ctrl.Handle(in)
	switch {
	case err == nil, errors.Is(err, action.ErrControlBusy), action.IsValidation(err):
	default:
		m.log.Debug("intent rejected", zap.String("kind", in.Kind.String()), zap.Error(err))
	}
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (appModel, tea.Cmd) {
	c := m.ui.confirm
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		c.focus = c.focus.next()
	case "y":
		m.ui.answerConfirm(true)
	case "n", "esc", "ctrl+g":
		m.ui.answerConfirm(false)
	case "enter":
		m.ui.answerConfirm(c.focus == confirmFocusConfirm)
	}
	return m, nil
}

func (m appModel) updateEdit(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.CloseEdit()
		return m, nil
	case "ctrl+s":
		if submit := m.ctrl.Submit(); !submit.Busy() {
			m.handle(action.Update(m.ctrl.Editing(), m.ui.editor.Value()))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.ui.editor, cmd = m.ui.editor.Update(msg)
	return m, cmd
}

func (m appModel) updateCompose(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !m.composeBusy {
			m.composing = false
			m.compose.Blur()
		}
		return m, nil
	case "ctrl+s":
		if m.composeBusy {
			return m, nil
		}
		text, err := model.ValidateComplaintText(m.compose.Value())
		if err != nil {
			m.ui.Notify(action.TextProblem(err), action.SeverityError)
			return m, nil
		}
		m.composeBusy = true
		return m, m.submitComplaint(text)
	}
	if m.composeBusy {
		return m, nil
	}
	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return m, cmd
}

// errorText prefers the server's message when there is one.
func errorText(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && strings.TrimSpace(se.Message) != "" {
		return se.Message
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return action.UnknownErrorText
	}
	return msg
}
