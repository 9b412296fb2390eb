package cli

import (
	"fmt"

	"complaint-desk/internal/config"
	"complaint-desk/internal/docs"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

type topicList []string

func (t topicList) Columns() []string { return []string{"TOPIC"} }

func (t topicList) Rows() [][]string {
	out := make([][]string, 0, len(t))
	for _, s := range t {
		out = append(out, []string{s})
	}
	return out
}

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show short reference docs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, topicList(docs.Topics()))
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `complaint-desk docs` to list topics)", topic))
			}

			switch {
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			case app.cfg.Format == config.FormatJSON:
				return writeOut(cmd, app, map[string]string{"topic": topic, "markdown": body})
			}
			out, err := glamour.Render(body, "notty")
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown")

	return cmd
}
