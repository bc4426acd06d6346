package http

import (
	"context"

	"wellpulse/internal/services"
)

// DataServiceInterface defines the interface for artifact operations
type DataServiceInterface interface {
	ListArtifacts(ctx context.Context) ([]services.ArtifactInfo, error)
	ResolveDownload(ctx context.Context, name string) (string, error)
}
