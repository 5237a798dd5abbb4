package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// StorageStatus reports the resolved root, encryption policy and unlock
// state of a profile
func (uc *UseCases) StorageStatus(ctx context.Context, username string) (*model.StorageStatus, error) {
	if username == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "username is required")
	}
	return uc.router.Status(ctx, username)
}
