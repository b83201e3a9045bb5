// Package cli implements parishctl, a command line front end to the parish
// backend built on the same controllers as the admin screens.
package cli

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lojf/parish/internal/client"
	"github.com/lojf/parish/internal/config"
)

type CommandContext struct {
	StdOut io.Writer
	StdErr io.Writer
	// NewClient builds the API client; nil uses client.New.
	NewClient func(base string, log *logrus.Entry) *client.Client
}

type Root struct {
	API      string
	EnvFile  string
	LogLevel string

	cc      CommandContext
	session *session
}

func New(cc CommandContext) *cobra.Command {
	if cc.StdOut == nil {
		cc.StdOut = os.Stdout
	}
	if cc.StdErr == nil {
		cc.StdErr = os.Stderr
	}
	if cc.NewClient == nil {
		cc.NewClient = func(base string, log *logrus.Entry) *client.Client {
			return client.New(base, client.WithLogger(log))
		}
	}
	r := &Root{cc: cc}
	root := &cobra.Command{
		Use:           "parishctl",
		Short:         "Manage parish families, events and registrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `
# List member families in San Jose
parishctl families list --member --city "san jose"

# Export the roster of an event
parishctl roster E:REG --csv > roster.csv`,
		PersistentPreRunE: r.PersistentPre,
	}
	root.SetOut(cc.StdOut)
	root.SetErr(cc.StdErr)
	root.PersistentFlags().StringVar(&r.API, "api", "", "Backend base URL (default from PARISH_APIBASE)")
	root.PersistentFlags().StringVar(&r.EnvFile, "env-file", ".env", "Optional dotenv file")
	root.PersistentFlags().StringVar(&r.LogLevel, "log-level", "", "Log level (default from PARISH_LOGLEVEL)")

	root.AddCommand(
		NewFamilies(r),
		NewEvents(r),
		NewRegistrations(r),
		NewRoster(r),
		NewSettings(r),
	)
	return root
}

func (r *Root) PersistentPre(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(r.EnvFile)
	if err != nil {
		return err
	}
	if r.API != "" {
		cfg.APIBase = r.API
	}
	if r.LogLevel != "" {
		cfg.LogLevel = r.LogLevel
	}
	log := cfg.Logger()
	log.SetOutput(r.cc.StdErr)
	entry := logrus.NewEntry(log)
	r.session = &session{
		cfg: cfg,
		api: r.cc.NewClient(cfg.APIBase, entry),
		log: entry,
		out: r.cc.StdOut,
	}
	return nil
}
