package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

func cmdStatus() *cli.Command {
	var s stack

	return &cli.Command{
		Name:  "status",
		Usage: "Show the resolved storage root and unlock state of a profile",
		Flags: s.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpStorageStatus, nil)
		},
	}
}
