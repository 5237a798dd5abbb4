package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/cli/config"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/episodic"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/keyring"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/storage"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/vector"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/worker"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/usecase"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var storageCfg config.Storage
	var profilesCfg config.Profiles
	var embeddingCfg config.Embedding
	var unlockCfg config.Unlock
	var busCfg config.Bus
	var unlockUser string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "unlock-user",
			Usage:       "Pre-unlock this profile with --passphrase at startup (optional)",
			Sources:     cli.EnvVars("MNEMO_UNLOCK_USER"),
			Destination: &unlockUser,
		},
	}
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, profilesCfg.Flags()...)
	flags = append(flags, embeddingCfg.Flags()...)
	flags = append(flags, unlockCfg.Flags()...)
	flags = append(flags, busCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the memory worker pool on the configured bus",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			dataDir, sink, err := storageCfg.Configure()
			if err != nil {
				return err
			}

			profiles, err := profilesCfg.Configure()
			if err != nil {
				return err
			}

			factory, err := embeddingCfg.Configure(ctx)
			if err != nil {
				return err
			}

			keys := keyring.NewCache()
			if unlockUser != "" {
				if err := unlockCfg.Apply(keys, profiles, unlockUser); err != nil {
					if !errors.Is(err, config.ErrPassphraseMissing) {
						return err
					}
					logging.Default().Warn("cannot pre-unlock encrypted profile without a passphrase",
						"username", unlockUser)
				}
			}

			bus, err := busCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := bus.Close(); err != nil {
					logging.Default().Error("failed to close bus", "error", err)
				}
			}()

			router := storage.New(dataDir, profiles, keys, storage.WithAuditSink(sink))
			uc := usecase.New(router, episodic.New(router), vector.New(router, factory), factory)

			sup := worker.NewSupervisor(bus, worker.NewActor(uc), busCfg.Workers())
			sup.Start(ctx)

			logging.Default().Info("mnemo serving",
				"data_dir", dataDir,
				"workers", busCfg.Workers())

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				logging.Default().Info("shutting down", "signal", sig.String())
			case <-ctx.Done():
			}

			// Stop closes the intake and waits for in-flight work
			sup.Stop()
			return nil
		},
	}
}
