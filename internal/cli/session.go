package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lojf/parish/internal/client"
	"github.com/lojf/parish/internal/config"
	"github.com/lojf/parish/internal/controller"
	"github.com/lojf/parish/internal/listview"
	"github.com/lojf/parish/internal/settings"
	"github.com/lojf/parish/internal/validate"
)

// session is the state shared by the commands of one invocation.
type session struct {
	cfg *config.Config
	api *client.Client
	log *logrus.Entry
	out io.Writer

	reg  *settings.Registry
	fams *controller.Families
	evs  *controller.Events
	regs *controller.Registrations
}

// connect loads the settings document (seeding it on first use) and builds
// the controllers. Nothing is listed yet.
func (s *session) connect(ctx context.Context) error {
	if s.reg != nil {
		return nil
	}
	st, err := s.api.Settings().Bootstrap(ctx, nil)
	if err != nil {
		return err
	}
	if s.cfg.ReadOnly {
		st.ReadOnly = true
	}
	s.reg = settings.NewRegistry(st)
	v := validate.New()
	opts := controller.Options{PageSize: listview.All, Debounce: s.cfg.Debounce, Log: s.log}
	s.fams = controller.NewFamilies(s.api.Families(), s.reg, v, opts)
	s.evs = controller.NewEvents(s.api.Events(), s.reg, v, opts)
	s.regs = controller.NewRegistrations(s.api.Registrations(), s.reg, v, s.fams, s.evs, opts)
	return nil
}

type loadable interface {
	Load(ctx context.Context) error
}

// load connects and lists the given controllers, in order.
func (s *session) load(ctx context.Context, pick ...func(*session) loadable) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	for _, p := range pick {
		if err := p(s).Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

func families(s *session) loadable      { return s.fams }
func events(s *session) loadable        { return s.evs }
func registrations(s *session) loadable { return s.regs }

type applier func(ctx context.Context, doc map[string]any) (bool, error)

// apply upserts every document in path ("-" is stdin) and reports one line
// per document. Failures do not stop the run; they are counted in the error.
func (s *session) apply(ctx context.Context, path string, errOut io.Writer, fn applier) error {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open documents")
		}
		defer f.Close()
		in = f
	}
	docs, err := readDocuments(in)
	if err != nil {
		return err
	}
	failed := 0
	for i, doc := range docs {
		name := fmt.Sprint(doc["id"])
		if doc["id"] == nil {
			name = fmt.Sprintf("#%d", i+1)
		}
		created, err := fn(ctx, doc)
		switch {
		case errors.Is(err, controller.ErrNoChanges):
			fmt.Fprintf(s.out, "%s unchanged\n", name)
		case err != nil:
			failed++
			fmt.Fprintf(errOut, "%s: %v\n", name, err)
		case created:
			fmt.Fprintf(s.out, "%s created\n", name)
		default:
			fmt.Fprintf(s.out, "%s updated\n", name)
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

// page narrows v to one page when size is set.
func page[R any](v *listview.View[R], size, n int) []R {
	v.SetPageSize(size)
	v.SetPage(n)
	return v.Rows()
}
