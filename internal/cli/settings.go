package cli

import (
	"github.com/spf13/cobra"
)

func NewSettings(r *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the parish settings document",
	}
	var output string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the settings, seeding the defaults when none are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := r.session
			if err := s.connect(cmd.Context()); err != nil {
				return err
			}
			return writeFormat(s.out, output, s.reg.Settings().ToMap())
		},
	}
	show.Flags().StringVarP(&output, "output", "o", "yaml", "Output format (json, yaml)")
	cmd.AddCommand(show)
	return cmd
}
