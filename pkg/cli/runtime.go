package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/cli/config"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/episodic"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/keyring"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/storage"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/vector"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/worker"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/usecase"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

// stack carries the shared configuration of every command that touches
// profile storage. One-shot commands run their operation through an
// in-process worker, the same boundary external producers cross over Redis.
type stack struct {
	storageCfg   config.Storage
	profilesCfg  config.Profiles
	embeddingCfg config.Embedding
	unlockCfg    config.Unlock

	username string
}

func (s *stack) flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u", "profile"},
			Usage:       "Profile username the operation runs against",
			Required:    true,
			Sources:     cli.EnvVars("MNEMO_USER"),
			Destination: &s.username,
		},
	}
	flags = append(flags, s.storageCfg.Flags()...)
	flags = append(flags, s.profilesCfg.Flags()...)
	flags = append(flags, s.embeddingCfg.Flags()...)
	flags = append(flags, s.unlockCfg.Flags()...)
	return flags
}

// runtime is the assembled memory core plus its worker boundary
type runtime struct {
	uc       *usecase.UseCases
	bus      interfaces.Bus
	sup      *worker.Supervisor
	username string
}

func (s *stack) build(ctx context.Context, workers int) (*runtime, error) {
	dataDir, sink, err := s.storageCfg.Configure()
	if err != nil {
		return nil, err
	}

	profiles, err := s.profilesCfg.Configure()
	if err != nil {
		return nil, err
	}

	factory, err := s.embeddingCfg.Configure(ctx)
	if err != nil {
		return nil, err
	}

	keys := keyring.NewCache()
	if s.username != "" {
		if err := s.unlockCfg.Apply(keys, profiles, s.username); err != nil {
			if !errors.Is(err, config.ErrPassphraseMissing) {
				return nil, err
			}
			// Sealed reads and writes will fail individually; plain
			// categories of the profile stay usable.
			logging.From(ctx).Warn("profile is encrypted but no passphrase was given",
				"username", s.username)
		}
	}

	router := storage.New(dataDir, profiles, keys, storage.WithAuditSink(sink))
	uc := usecase.New(router, episodic.New(router), vector.New(router, factory), factory)

	bus := worker.NewInProcBus(16)
	sup := worker.NewSupervisor(bus, worker.NewActor(uc), workers)
	sup.Start(ctx)

	return &runtime{uc: uc, bus: bus, sup: sup, username: s.username}, nil
}

func (r *runtime) close() {
	r.sup.Stop()
	_ = r.bus.Close()
}

// call runs one operation through the worker boundary and prints the result
func (r *runtime) call(ctx context.Context, op types.WorkOp, payload any) error {
	resp, err := worker.Call(ctx, r.bus, op, r.username, payload)
	if err != nil {
		return err
	}

	if !resp.Success {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ %s\n", resp.Error.Kind)
		fmt.Fprintln(os.Stderr, resp.Error.Message)
		return goerr.New("operation failed",
			goerr.V("op", op.String()),
			goerr.V("kind", string(resp.Error.Kind)))
	}

	return printJSON(resp.Result)
}

func printJSON(raw json.RawMessage) error {
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return goerr.Wrap(err, "unparsable result")
	}
	out, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to render result")
	}
	fmt.Println(string(out))
	return nil
}
