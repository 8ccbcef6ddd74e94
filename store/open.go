package store

import (
	"context"
	"fmt"
	"log/slog"

	"configbot"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Open returns the backend configured for kind: S3 when a bucket is set,
// the local directory otherwise.
func Open(ctx context.Context, cfg configbot.StoreConfig, kind Kind) (Store, error) {
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		slog.Info("STORE: Using S3 backend", "kind", kind.Name, "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix, kind), nil
	}

	dir := cfg.SchemaDir
	if kind.Name == Values.Name {
		dir = cfg.ValuesDir
	}
	slog.Info("STORE: Using file backend", "kind", kind.Name, "dir", dir)
	return NewFileStore(dir, kind), nil
}
