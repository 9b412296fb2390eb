package tui

import (
	"fmt"
	"strings"

	"complaint-desk/internal/action"
	"complaint-desk/internal/model"
	"complaint-desk/internal/perm"

	"github.com/charmbracelet/lipgloss"
)

const (
	colStatus  = 10
	colAuthor  = 16
	colCreated = 16
	colActions = 30
	colGap     = 2

	minTextCol   = 12
	detailHeight = 10
	dateLayout   = "2006-01-02 15:04"
)

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}

	if m.modal() != modalNone {
		return m.viewModal(width)
	}

	parts := []string{m.viewHeader(width), m.viewTable(width)}
	if m.showDetail {
		if d := m.viewDetail(width); d != "" {
			parts = append(parts, d)
		}
	}
	if t := m.viewToast(width); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n\n")
}

func (m appModel) viewHeader(width int) string {
	who := m.user.DisplayName()
	if who == "" {
		who = "-"
	}
	role := "user"
	if m.user.IsAdmin {
		role = "admin"
	}
	title := styleTitle().Render("Complaints")
	meta := styleMuted().Render(fmt.Sprintf("%s (%s)  %d shown", who, role, m.ctrl.Rows().Len()))
	line := title + "  " + meta
	if m.loading {
		line += "  " + m.spinner.View() + " " + styleMuted().Render("loading")
	}
	return fitCell(line, width)
}

func textColWidth(width int) int {
	w := width - colStatus - colAuthor - colCreated - colActions - 4*colGap - 2
	if w < minTextCol {
		w = minTextCol
	}
	return w
}

func (m appModel) viewTable(width int) string {
	textW := textColWidth(width)
	gap := strings.Repeat(" ", colGap)

	head := lipgloss.NewStyle().Bold(true).Render(strings.Join([]string{
		"  " + fitCell("STATUS", colStatus),
		fitCell("AUTHOR", colAuthor),
		fitCell("CREATED", colCreated),
		fitCell("COMPLAINT", textW),
		fitCell("ACTIONS", colActions),
	}, gap))

	lines := []string{head}
	for i, line := range m.ctrl.Rows().Body() {
		if line.Row == nil {
			lines = append(lines, styleMuted().Render("  "+line.Placeholder))
			continue
		}
		lines = append(lines, m.viewRow(line.Row, i == m.selected, textW))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewRow(r *action.Row, selected bool, textW int) string {
	gap := strings.Repeat(" ", colGap)
	cursor := "  "
	if selected {
		cursor = "> "
	}
	cells := []string{
		cursor + fitCell(styleStatus(r.Status.Resolved()).Render(r.StatusCell()), colStatus),
		fitCell(r.Author, colAuthor),
		fitCell(r.CreatedAt.Local().Format(dateLayout), colCreated),
		fitCell(oneLine(r.Text), textW),
		fitCell(m.viewControls(r), colActions),
	}
	out := strings.Join(cells, gap)
	switch {
	case r.Fading:
		out = lipgloss.NewStyle().Faint(true).Strikethrough(true).Render(out)
	case selected:
		out = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Render(out)
	}
	return out
}

// viewControls renders the row's buttons. Admins get the status toggle;
// delete shows on rows the user may change.
func (m appModel) viewControls(r *action.Row) string {
	var btns []string
	if perm.CanToggleStatus(m.user) {
		btns = append(btns, m.renderControl(&r.Toggle.Control))
	}
	if perm.CanEditComplaint(m.user, model.Complaint{UserEmail: r.Email}) {
		btns = append(btns, m.renderControl(&r.Delete))
	}
	return strings.Join(btns, " ")
}

func (m appModel) renderControl(c *action.Control) string {
	label := c.Label
	if c.State == action.ControlPending {
		label = m.spinner.View() + " " + label
	}
	return renderButton(label, false, c.Disabled)
}

func (m appModel) viewDetail(width int) string {
	row, ok := m.selectedRow()
	if !ok {
		return ""
	}
	meta := []string{
		fmt.Sprintf("ID       %s", row.ID),
		fmt.Sprintf("Author   %s <%s>", row.Author, row.Email),
		fmt.Sprintf("Status   %s", row.StatusCell()),
		fmt.Sprintf("Created  %s", row.CreatedAt.Local().Format(dateLayout)),
	}
	if !row.UpdatedAt.Equal(row.CreatedAt) {
		meta = append(meta, fmt.Sprintf("Updated  %s", row.UpdatedAt.Local().Format(dateLayout)))
	}
	body := normalizePane(renderMarkdown(row.Text, width-4), width, detailHeight)
	return styleMuted().Render(strings.Join(meta, "\n")) + "\n\n" + body
}

func (m appModel) viewToast(width int) string {
	t := m.ui.toast
	if t.text == "" {
		return ""
	}
	bg := colorToastSuccessBg
	if t.severity == action.SeverityError {
		bg = colorToastErrorBg
	}
	st := lipgloss.NewStyle().Padding(0, 1).Foreground(colorToastFg).Background(bg)
	text := oneLine(t.text)
	if lipgloss.Width(text) > width-2 {
		text = fitCell(text, width-2)
	}
	return st.Render(text)
}

func (m appModel) viewModal(width int) string {
	var box string
	switch m.modal() {
	case modalConfirm:
		c := m.ui.confirm
		box = renderConfirmModal(width, "Delete complaint", c.prompt, "Delete", "Cancel", c.focus)
	case modalEdit:
		box = m.viewEditModal(width)
	case modalCompose:
		box = m.viewComposeModal(width)
	}
	if t := m.viewToast(width); t != "" {
		box = lipgloss.JoinVertical(lipgloss.Left, box, "", t)
	}
	if m.height <= 0 {
		return box
	}
	return lipgloss.Place(width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m appModel) viewEditModal(width int) string {
	submit := m.ctrl.Submit()
	label := submit.Label
	if submit.State == action.ControlPending {
		label = m.spinner.View() + " " + label
	}
	bodyW := modalBodyWidth(width)
	content := strings.Join([]string{
		styleMuted().Width(bodyW).Render("From " + m.ui.edit.email),
		"",
		m.ui.editor.View(),
		"",
		renderButton(label, true, submit.Disabled),
		"",
		styleMuted().Width(bodyW).Render("ctrl+s: save   esc: cancel"),
	}, "\n")
	return renderModalBox(width, "Edit complaint", content)
}

func (m appModel) viewComposeModal(width int) string {
	label := "Submit"
	if m.composeBusy {
		label = m.spinner.View() + " Submitting..."
	}
	bodyW := modalBodyWidth(width)
	content := strings.Join([]string{
		m.compose.View(),
		"",
		renderButton(label, true, m.composeBusy),
		"",
		styleMuted().Width(bodyW).Render("ctrl+s: submit   esc: cancel"),
	}, "\n")
	return renderModalBox(width, "New complaint", content)
}
