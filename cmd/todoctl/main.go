// Command todoctl manages todos on the remote todo API from a terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/todo-1m/webclient/internal/platform/env"
	"github.com/todo-1m/webclient/internal/platform/logging"
	"github.com/todo-1m/webclient/internal/remote"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.New("error", os.Stderr).Error(err.Error())
		stop()
		os.Exit(1)
	}
}

// options are the global flags shared by every subcommand.
type options struct {
	apiURL   string
	timeout  time.Duration
	logLevel string
	timezone string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "todoctl",
		Short:         "Manage todos on the todo API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.apiURL, "api", env.String("API_BASE_URL", env.DefaultAPIBaseURL), "base URL of the todo API")
	pf.DurationVar(&opts.timeout, "timeout", env.Duration("REQUEST_TIMEOUT", 10*time.Second), "timeout for each API call")
	pf.StringVar(&opts.logLevel, "log-level", env.String("LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")
	pf.StringVar(&opts.timezone, "timezone", env.String("TIMEZONE", env.DefaultTimezone), "zone deadlines are entered and shown in")

	root.AddCommand(
		newListCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newToggleCmd(opts),
		newDeleteCmd(opts),
		newUsersCmd(opts),
		newWeatherCmd(opts),
	)
	return root
}

func (o *options) client() *remote.Client {
	return remote.New(o.apiURL, nil)
}

func (o *options) logger(cmd *cobra.Command) *log.Logger {
	return logging.New(o.logLevel, cmd.ErrOrStderr())
}

func (o *options) location() (*time.Location, error) {
	if o.timezone == "" || o.timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(o.timezone)
}

// callContext bounds one API call by --timeout.
func (o *options) callContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}
