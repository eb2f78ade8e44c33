package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newShowCommand(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print your log file (or that of another user)",
		Long: `Prints your log file (or that of the specified user). The file is a TSV
file with the three columns CHECKINTIME, CHECKOUTTIME and MESSAGE. All times
have timezone information attached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.engine.Show(cmd.Context(), user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, data)
			if data != "" && !strings.HasSuffix(data, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User to retrieve the log for")
	return cmd
}
