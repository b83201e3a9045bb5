package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func NewRegistrations(r *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "registrations",
		Aliases: []string{"registration", "reg", "r"},
		Short:   "List and apply registrations",
	}
	cmd.AddCommand(
		newRegistrationsList(r),
		newApply(r, "registrations", func(s *session) applier { return s.regs.Apply },
			families, events, registrations),
	)
	return cmd
}

func newRegistrationsList(r *Root) *cobra.Command {
	var (
		eventID, query, output string
		status                 []string
		unpaid                 bool
		pageSize, pageNo       int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := r.session
			if err := s.load(cmd.Context(), families, events, registrations); err != nil {
				return err
			}
			v := s.regs.View()
			v.SetQuery(query)
			v.FlushQuery()
			v.SetFilter("eventId", eventID)
			for i := range status {
				status[i] = strings.ToUpper(status[i])
			}
			v.SetFilter("status", status)
			v.SetFilter("unpaid", unpaid)
			items := page(v, pageSize, pageNo)

			if output != "" {
				docs := make([]map[string]any, 0, len(items))
				for _, x := range items {
					docs = append(docs, s.regs.Schema().ToAPI(x))
				}
				return writeFormat(s.out, output, docs)
			}
			rows := make([][]string, 0, len(items))
			for _, x := range items {
				rows = append(rows, []string{
					x.ID, x.EventID, orDash(x.FamilyName), x.Status,
					strconv.Itoa(len(x.Children)), money(x.Total()), yesNo(x.Paid()),
				})
			}
			return writeTable(s.out, []string{"ID", "EVENT", "FAMILY", "STATUS", "CHILDREN", "TOTAL", "PAID"}, rows)
		},
	}
	f := cmd.Flags()
	f.StringVar(&eventID, "event", "", "Only registrations for this event")
	f.StringSliceVar(&status, "status", nil, "Only these statuses (PENDING, CONFIRMED, CANCELLED)")
	f.BoolVar(&unpaid, "unpaid", false, "Only registrations with unpaid lines")
	f.StringVarP(&query, "query", "q", "", "Quick filter (all words must match)")
	f.StringVarP(&output, "output", "o", "", "Output format (json, yaml)")
	f.IntVar(&pageSize, "page-size", 0, "Rows per page (0 for all)")
	f.IntVar(&pageNo, "page", 1, "Page to show")
	return cmd
}
