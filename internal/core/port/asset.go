package port

import (
	"context"

	"fileflow/internal/core/domain"

	"github.com/google/uuid"
)

// FileAssetRepository persists finalized file assets
type FileAssetRepository interface {
	Insert(ctx context.Context, asset domain.FileAsset) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.FileAsset, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID) (*domain.FileAsset, error)
}
