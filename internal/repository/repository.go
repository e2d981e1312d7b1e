// Package repository declares the persistence interfaces the stores and
// services depend on. Implementations live in sub-packages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/civic-sync/internal/model"
)

// SnapshotRepository stores opaque serialized snapshots under a fixed key,
// the way a browser keeps one JSON blob per localStorage key.
//
// LoadSnapshot returns apperror.ErrNotFound when nothing has been saved
// under key yet.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, key string, data []byte) error
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
}

// UserRepository persists registered accounts for strict auth mode.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}
