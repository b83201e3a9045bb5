package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lojf/parish/internal/domain"
)

func NewFamilies(r *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "families",
		Aliases: []string{"family", "f"},
		Short:   "List and apply families",
	}
	cmd.AddCommand(newFamiliesList(r), newApply(r, "families", func(s *session) applier {
		return func(ctx context.Context, doc map[string]any) (bool, error) { return s.fams.Apply(ctx, doc) }
	}, families))
	return cmd
}

type familiesList struct {
	Query    string
	City     string
	Member   bool
	Output   string
	PageSize int
	Page     int
}

func newFamiliesList(r *Root) *cobra.Command {
	o := &familiesList{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := r.session
			if err := s.load(cmd.Context(), families); err != nil {
				return err
			}
			v := s.fams.View()
			v.SetQuery(o.Query)
			v.FlushQuery()
			v.SetFilter("city", o.City)
			v.SetFilter("parishMember", o.Member)
			items := page(v, o.PageSize, o.Page)

			if o.Output != "" {
				docs := make([]map[string]any, 0, len(items))
				for _, f := range items {
					docs = append(docs, s.fams.Schema().ToAPI(f))
				}
				return writeFormat(s.out, o.Output, docs)
			}
			rows := make([][]string, 0, len(items))
			for _, f := range items {
				rows = append(rows, familyRow(f))
			}
			return writeTable(s.out, []string{"ID", "NAME", "PHONE", "CITY", "MEMBER", "CHILDREN"}, rows)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Query, "query", "q", "", "Quick filter (all words must match)")
	f.StringVar(&o.City, "city", "", "Only families whose city contains this text")
	f.BoolVar(&o.Member, "member", false, "Only parish members")
	f.StringVarP(&o.Output, "output", "o", "", "Output format (json, yaml)")
	f.IntVar(&o.PageSize, "page-size", 0, "Rows per page (0 for all)")
	f.IntVar(&o.Page, "page", 1, "Page to show")
	return cmd
}

func familyRow(f *domain.Family) []string {
	phone := ""
	if len(f.Contacts) > 0 {
		phone = f.Contacts[0].Phone
	}
	return []string{f.ID, f.DisplayName(), orDash(phone), orDash(f.Address.City), yesNo(f.ParishMember), strconv.Itoa(len(f.Children))}
}

// newApply builds "<noun> apply -f FILE". The controllers named by deps are
// listed before the documents are applied.
func newApply(r *Root, noun string, fn func(*session) applier, deps ...func(*session) loadable) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Create or update " + noun + " from a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := r.session
			if err := s.load(cmd.Context(), deps...); err != nil {
				return err
			}
			return s.apply(cmd.Context(), file, cmd.ErrOrStderr(), fn(s))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Documents to apply (- for stdin)")
	return cmd
}
