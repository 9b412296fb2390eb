package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"complaint-desk/internal/action"
	"complaint-desk/internal/api"
	"complaint-desk/internal/format"
	"complaint-desk/internal/model"

	"github.com/spf13/cobra"
)

func newComplaintsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complaints",
		Aliases: []string{"c"},
		Short:   "List, file and act on complaints",
	}
	cmd.AddCommand(newComplaintsListCmd(app))
	cmd.AddCommand(newComplaintsSubmitCmd(app))
	cmd.AddCommand(newComplaintsStatusCmd(app, "resolve", model.StatusResolved))
	cmd.AddCommand(newComplaintsStatusCmd(app, "reopen", model.StatusPending))
	cmd.AddCommand(newComplaintsDeleteCmd(app))
	cmd.AddCommand(newComplaintsEditCmd(app))
	return cmd
}

func newComplaintsListCmd(app *App) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List complaints (admins see all, others their own)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var want model.Status
			if strings.TrimSpace(status) != "" {
				s, err := model.ParseStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				want = s
			}
			c, _, err := app.session(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			list, err := c.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make(format.Complaints, 0, len(list))
			for _, it := range list {
				if want == "" || it.Status() == want {
					out = append(out, it)
				}
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show complaints with this status (pending|resolved)")
	return cmd
}

func newComplaintsSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <text>...",
		Short: "File a new complaint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := model.ValidateComplaintText(strings.Join(args, " "))
			if err != nil {
				return writeErr(cmd, actionError{message: action.TextProblem(err)})
			}
			c, _, err := app.session(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			created, err := c.Submit(cmd.Context(), text)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Complaints{created})
		},
	}
}

// newComplaintsStatusCmd builds resolve/reopen. Both go through the toggle
// action: the intent carries the opposite of the target, so the controller
// sends the target.
func newComplaintsStatusCmd(app *App, use string, target model.Status) *cobra.Command {
	short := "Mark a complaint as resolved (admin)"
	if !target.Resolved() {
		short = "Reopen a resolved complaint (admin)"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, app, action.ToggleStatus(args[0], target.Toggle()), action.NeverConfirm)
		},
	}
}

func newComplaintsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a complaint (owner or admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirm action.Confirmer = action.AlwaysConfirm
			if !yes {
				confirm = promptConfirmer(cmd)
			}
			return runAction(cmd, app, action.Delete(args[0]), confirm)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newComplaintsEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>...",
		Short: "Replace a complaint's text (owner or admin)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, app, action.Update(args[0], strings.Join(args[1:], " ")), action.NeverConfirm)
		},
	}
}

// actionOutcome is printed after a successful action.
type actionOutcome struct {
	ID      string `json:"id"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (o actionOutcome) Columns() []string { return []string{"ID", "ACTION", "RESULT"} }

func (o actionOutcome) Rows() [][]string { return [][]string{{o.ID, o.Action, o.Message}} }

// runAction drives one intent through the same controller the dashboard
// uses. Flights run inline, so the notification is final when Handle
// returns; no notification means the prompt was declined.
func runAction(cmd *cobra.Command, app *App, in action.Intent, confirm action.Confirmer) error {
	ctx := cmd.Context()
	c, _, err := app.session(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	rows, err := loadRows(cmd, c)
	if err != nil {
		return writeErr(cmd, err)
	}

	var last struct {
		msg string
		sev action.Severity
	}
	ctrl := action.New(c, rows,
		action.WithNotifier(action.NotifierFunc(func(msg string, sev action.Severity) {
			last.msg, last.sev = msg, sev
		})),
		action.WithConfirmer(confirm),
		action.WithDispatcher(action.Inline(ctx)),
		action.WithLogger(app.log.Named("action")),
	)

	if err := ctrl.Handle(in); err != nil {
		switch {
		case errors.Is(err, action.ErrRowNotFound):
			return writeErr(cmd, errNotFound("complaint", in.ComplaintID))
		case action.IsValidation(err) && last.msg != "":
			return writeErr(cmd, actionError{message: last.msg})
		default:
			return writeErr(cmd, err)
		}
	}

	switch {
	case last.msg == "":
		fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
		return nil
	case last.sev == action.SeverityError:
		return writeErr(cmd, actionError{message: last.msg})
	}
	return writeOut(cmd, app, actionOutcome{
		ID:      strings.TrimSpace(in.ComplaintID),
		Action:  in.Kind.String(),
		Success: true,
		Message: last.msg,
	})
}

// loadRows fetches the visible complaints so the controller has rows to act
// on. Update does not need a row; the others report an unknown id locally.
func loadRows(cmd *cobra.Command, c *api.Client) (*action.Registry, error) {
	list, err := c.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	return action.NewRegistry(list), nil
}

func promptConfirmer(cmd *cobra.Command) action.Confirmer {
	return action.ConfirmerFunc(func(prompt string, proceed func()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n[y/N]: ", prompt)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			proceed()
		}
	})
}
