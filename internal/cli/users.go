package cli

import (
	"errors"

	"complaint-desk/internal/store"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage backend accounts (works on the local database)",
	}
	cmd.AddCommand(newUsersCreateCmd(app))
	return cmd
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var name, password, dbPath string
	var admin bool
	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("db") {
				app.cfg.DBPath = dbPath
			}
			if password == "" {
				p, err := readSecret(cmd, "Password: ")
				if err != nil {
					return writeErr(cmd, err)
				}
				password = p
			}

			st, err := store.Open(cmd.Context(), app.cfg.DBPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			u, err := st.CreateUser(cmd.Context(), args[0], name, password, admin)
			if err != nil {
				if errors.Is(err, store.ErrUserExists) {
					return writeErr(cmd, errAlreadyExists("user", args[0]))
				}
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, userView(u))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: the part of the email before @)")
	cmd.Flags().StringVar(&password, "password", "", "Password (default: read from stdin)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant admin rights")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides db_path)")
	return cmd
}
