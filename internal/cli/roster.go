package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lojf/parish/internal/controller"
)

func NewRoster(r *Root) *cobra.Command {
	var (
		asCSV            bool
		status, ageGroup string
		query            string
		unpaid           bool
	)
	cmd := &cobra.Command{
		Use:   "roster EVENT_ID",
		Short: "Print or export the roster of an event",
		Example: `
parishctl roster E:REG --status confirmed --csv > roster.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := r.session
			if err := s.load(cmd.Context(), families, events, registrations); err != nil {
				return err
			}
			ros := controller.NewRosters(s.regs, s.reg, controller.Options{Debounce: s.cfg.Debounce, Log: s.log})
			if err := ros.Open(args[0]); err != nil {
				return err
			}
			v := ros.View()
			defer v.Close()
			v.SetQuery(query)
			v.FlushQuery()
			v.SetFilter("status", strings.ToUpper(status))
			v.SetFilter("ageGroup", ageGroup)
			v.SetFilter("unpaid", unpaid)

			if asCSV {
				return ros.WriteCSV(s.out)
			}
			rows := make([][]string, 0)
			for _, row := range v.Filtered() {
				rows = append(rows, []string{
					row.Status, row.FamilyName, orDash(row.ChildName), orDash(row.AgeGroup),
					orDash(row.Phone), money(row.Total), yesNo(row.Paid),
				})
			}
			return writeTable(s.out, []string{"STATUS", "FAMILY", "CHILD", "AGE GROUP", "PHONE", "TOTAL", "PAID"}, rows)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&asCSV, "csv", false, "Write CSV instead of a table")
	f.StringVar(&status, "status", "", "Only rows with this status")
	f.StringVar(&ageGroup, "age-group", "", "Only children in this age group")
	f.BoolVar(&unpaid, "unpaid", false, "Only unpaid rows")
	f.StringVarP(&query, "query", "q", "", "Quick filter (all words must match)")
	return cmd
}
