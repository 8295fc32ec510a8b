package repository

import (
	"context"

	"convertbox/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	// Delete removes the user; uploads cascade at the schema level.
	Delete(ctx context.Context, tx Tx, id string) error
}
