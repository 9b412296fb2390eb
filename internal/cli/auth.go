package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"complaint-desk/internal/model"

	"github.com/spf13/cobra"
)

// userView is what login/signup/users print.
type userView model.User

func (u userView) Columns() []string { return []string{"EMAIL", "NAME", "ROLE"} }

func (u userView) Rows() [][]string {
	role := "user"
	if u.IsAdmin {
		role = "admin"
	}
	return [][]string{{u.Email, model.User(u).DisplayName(), role}}
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the backend and save the session",
		Example: strings.TrimSpace(`
  complaint-desk login --email ana@example.com
  echo "$PASSWORD" | complaint-desk login --email ana@example.com
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				email = app.cfg.Email
			}
			if strings.TrimSpace(email) == "" {
				return writeErr(cmd, errors.New("missing --email"))
			}
			if password == "" {
				password = app.cfg.Password
			}
			if password == "" {
				p, err := readSecret(cmd, "Password: ")
				if err != nil {
					return writeErr(cmd, err)
				}
				password = p
			}

			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			u, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.saveSession(c); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, userView(u))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email (default: email from config)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (default: config, then stdin)")
	return cmd
}

func newSignupCmd(app *App) *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new (non-admin) account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return writeErr(cmd, errors.New("missing --email"))
			}
			if password == "" {
				p, err := readSecret(cmd, "Password: ")
				if err != nil {
					return writeErr(cmd, err)
				}
				password = p
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			u, err := c.Signup(cmd.Context(), email, name, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.saveSession(c); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, userView(u))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: the part of the email before @)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (default: read from stdin)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token := app.readSession(); token != "" {
				c, err := app.client()
				if err != nil {
					return writeErr(cmd, err)
				}
				c.SetSessionToken(token)
				// The local session is dropped even if the backend is gone.
				if err := c.Logout(cmd.Context()); err != nil {
					app.log.Debug("logout request failed")
				}
			}
			if err := app.clearSession(); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// readSecret reads one line from stdin, prompting on stderr.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}
