package commands

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/commands/options"
	"tableflip.dev/ordo/pkg/logging"
	"tableflip.dev/ordo/pkg/runner/show"
	"tableflip.dev/ordo/pkg/session"
	"tableflip.dev/ordo/pkg/store"
)

// env is what a command needs to reach the store as the configured owner.
type env struct {
	cfg     store.Config
	svc     *app.Service
	logger  *log.Logger
	session *session.Session
}

func (e *env) Close() {
	if err := e.svc.Close(); err != nil {
		e.logger.Warn("close store", "err", err)
	}
	e.session.SignOut()
}

func connect() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg = store.WithOverrides(cfg, global.Backend, global.As)
	logger := logging.New(os.Stderr, cfg.LogLevel())

	remote, err := store.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("store open", "backend", cfg.Backend(), "path", cfg.BasePath())

	sess := session.Current()
	sess.SignIn(session.Principal{ID: cfg.Owner(), Name: cfg.Owner()})
	return &env{
		cfg:     cfg,
		svc:     app.New(remote, sess, logger),
		logger:  logger,
		session: sess,
	}, nil
}

// run connects, hands the service to fn and closes it afterwards.
func run(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	cmd.SilenceUsage = true
	e, err := connect()
	if err != nil {
		return output.HandleError(err)
	}
	defer e.Close()
	return output.HandleError(fn(cmd.Context(), e))
}

func printer(cmd *cobra.Command, ids *options.IDOptions) show.Output {
	return show.Output{JSON: output.JSON, ShowID: ids.ShowID, Out: cmd.OutOrStdout()}
}
