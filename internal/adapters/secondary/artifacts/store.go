package artifacts

import (
	"context"
	"fmt"

	"pos-nfc-api/internal/config"
	"pos-nfc-api/internal/core/ports/output"
)

// New returns the store selected by ARTIFACT_BACKEND.
func New(ctx context.Context, cfg config.ArtifactConfig) (ports.ArtifactStore, error) {
	switch cfg.Backend {
	case config.ArtifactBackendFS:
		return NewFSStore(cfg.Dir)
	case config.ArtifactBackendS3:
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
}
