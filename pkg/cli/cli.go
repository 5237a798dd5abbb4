package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/cli/config"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var closer func()

	app := &cli.Command{
		Name:    "mnemo",
		Usage:   "Per-profile memory core: encrypted storage, episodic events and vector retrieval",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("Starting mnemo", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdEvent(),
			cmdIndex(),
			cmdStatus(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
