package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"complaint-desk/internal/server"
	"complaint-desk/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, dbPath string
	var secure bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the complaint backend (JSON API + websocket change feed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				app.cfg.ListenAddr = addr
			}
			if cmd.Flags().Changed("db") {
				app.cfg.DBPath = dbPath
			}

			st, err := store.Open(cmd.Context(), app.cfg.DBPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			secret := strings.TrimSpace(app.cfg.SessionSecret)
			if secret == "" {
				secret, err = randomSecret()
				if err != nil {
					return writeErr(cmd, err)
				}
				app.log.Warn("session_secret not set; sessions will not survive a restart")
			}

			srv, err := server.New(server.Config{
				Addr:         app.cfg.ListenAddr,
				Secret:       secret,
				SecureCookie: secure,
			}, st, app.log.Named("server"))
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("serving", zap.String("db", app.cfg.DBPath))
			if err := srv.ListenAndServe(cmd.Context()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "listen", "", "Listen address (overrides listen_addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides db_path)")
	cmd.Flags().BoolVar(&secure, "secure-cookie", false, "Mark the session cookie Secure (behind TLS)")
	return cmd
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
