package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lojf/parish/internal/eligibility"
)

func NewEvents(r *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event", "e"},
		Short:   "List events and inspect prerequisites",
	}
	cmd.AddCommand(
		newEventsList(r),
		newEventsPrereqs(r),
		newApply(r, "events", func(s *session) applier {
			return func(ctx context.Context, doc map[string]any) (bool, error) { return s.evs.Apply(ctx, doc) }
		}, events),
	)
	return cmd
}

func newEventsList(r *Root) *cobra.Command {
	var typ, output string
	var year int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events ordered by open date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := r.session
			if err := s.load(cmd.Context(), events); err != nil {
				return err
			}
			list := s.evs.ByType(strings.ToUpper(typ))
			if year > 0 {
				kept := list[:0]
				for _, ev := range list {
					if ev.Year == year {
						kept = append(kept, ev)
					}
				}
				list = kept
			}
			if output != "" {
				docs := make([]map[string]any, 0, len(list))
				for _, ev := range list {
					docs = append(docs, s.evs.Schema().ToAPI(ev))
				}
				return writeFormat(s.out, output, docs)
			}
			rows := make([][]string, 0, len(list))
			for _, ev := range list {
				ids := make([]string, 0, len(ev.Prerequisites))
				for _, p := range ev.Prerequisites {
					ids = append(ids, p.EventID)
				}
				rows = append(rows, []string{
					ev.ID, ev.EventType, ev.Title, strconv.Itoa(ev.Year), ev.Level,
					eligibility.NormalizeDate(ev.OpenDate), orDash(strings.Join(ids, ",")),
				})
			}
			return writeTable(s.out, []string{"ID", "TYPE", "TITLE", "YEAR", "LEVEL", "OPENS", "PREREQS"}, rows)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&typ, "type", "t", "", "Only events of this type (ADM, REG, EVT)")
	f.IntVar(&year, "year", 0, "Only events of this year")
	f.StringVarP(&output, "output", "o", "", "Output format (json, yaml)")
	return cmd
}

func newEventsPrereqs(r *Root) *cobra.Command {
	var familyID string
	cmd := &cobra.Command{
		Use:   "prereqs EVENT_ID",
		Short: "Show an event's prerequisites and the events that could be added",
		Example: `
parishctl events prereqs E:REG --family F:0001-0001-0001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := r.session
			if err := s.load(cmd.Context(), families, events, registrations); err != nil {
				return err
			}
			ev := s.evs.Find(args[0])
			if ev == nil {
				return errors.Errorf("event %s not found", args[0])
			}
			if !eligibility.CanHavePrereqs(ev.EventType) {
				fmt.Fprintf(s.out, "%s events have no prerequisites\n", ev.EventType)
				return nil
			}

			missing := map[string]bool{}
			if familyID != "" {
				for _, id := range eligibility.MissingPrereqs(ev, familyID, s.regs.Items()) {
					missing[id] = true
				}
			}
			rows := make([][]string, 0, len(ev.Prerequisites))
			for _, p := range ev.Prerequisites {
				title := "-"
				if pe := s.evs.Find(p.EventID); pe != nil {
					title = pe.Title
				}
				state := "-"
				if familyID != "" {
					state = "met"
					if missing[p.EventID] {
						state = "missing"
					}
				}
				rows = append(rows, []string{p.EventID, title, state})
			}
			if err := writeTable(s.out, []string{"PREREQUISITE", "TITLE", "FAMILY"}, rows); err != nil {
				return err
			}

			avail := s.evs.AvailablePrereqsFor(ev, len(ev.Prerequisites))
			names := make([]string, 0, len(avail))
			for _, a := range avail {
				names = append(names, a.ID)
			}
			fmt.Fprintf(s.out, "\nAvailable: %s\n", orDash(strings.Join(names, ", ")))
			return nil
		},
	}
	cmd.Flags().StringVar(&familyID, "family", "", "Check whether this family meets the prerequisites")
	return cmd
}
