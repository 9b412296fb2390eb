package format

import (
	"strings"
	"time"

	"complaint-desk/internal/model"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"
)

var (
	headerStyle   = color.New(color.Bold)
	resolvedStyle = color.New(color.FgGreen)
	pendingStyle  = color.New(color.FgYellow)
	mutedStyle    = color.New(color.Faint)
)

// TextColumnWidth caps the complaint text column in table output.
const TextColumnWidth = 60

// StatusLabel returns the coloured status word.
func StatusLabel(s model.Status) string {
	if s.Resolved() {
		return resolvedStyle.Sprint(s.Label())
	}
	return pendingStyle.Sprint(s.Label())
}

// Complaints renders as a table of id, status, author, created, text.
type Complaints []model.Complaint

func (Complaints) Columns() []string {
	return []string{"ID", "STATUS", "AUTHOR", "CREATED", "COMPLAINT"}
}

func (cs Complaints) Rows() [][]string {
	out := make([][]string, 0, len(cs))
	for _, c := range cs {
		text := strings.Join(strings.Fields(c.Text), " ")
		out = append(out, []string{
			mutedStyle.Sprint(c.ID),
			StatusLabel(c.Status()),
			c.UserEmail,
			c.CreatedAt.Local().Format(time.DateTime),
			xansi.Truncate(text, TextColumnWidth, "…"),
		})
	}
	return out
}
