package custody

import (
	"github.com/spf13/cobra"

	"github.com/liftedinit/custody/internal/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start an interactive session",
	Long:  `Start an interactive session. Type help for a list of commands.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return console.New(s.ctrl, s.view, cmd.InOrStdin()).Run(cmd.Context())
	},
}
