package usecase

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/repository"
	"convertbox/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase manages the temporary per-session users.
type UserUseCase interface {
	// GetOrCreate resolves the session's user. An empty or stale id yields a
	// freshly created user; callers must re-issue the session cookie when the
	// returned id differs from the claimed one.
	GetOrCreate(ctx context.Context, id string) (*model.User, error)
	// Delete removes the user; the schema cascades their uploads and jobs.
	Delete(ctx context.Context, id string) error
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, tm: tm, log: logger}
}

func (u *userUC) GetOrCreate(ctx context.Context, id string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetOrCreate")()

	if id != "" {
		usr, err := u.users.FindByID(ctx, repository.NoTX, id)
		if err == nil {
			return usr, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	var user *model.User
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		nu := model.NewUser("")
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		user = nu
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", user.ID).Msg("temporary user created")
	return user, nil
}

func (u *userUC) Delete(ctx context.Context, id string) error {
	defer logging.TraceDuration(u.log, "UserUC.Delete")()
	if id == "" {
		return domain.ErrInvalidArgument
	}
	err := u.users.Delete(ctx, repository.NoTX, id)
	if err == nil {
		u.log.Info().Str("user_id", id).Msg("user deleted with cascading uploads")
	}
	return err
}
