package extract

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"resume-analyzer/internal/shared/storage/object"
	"resume-analyzer/internal/shared/telemetry"
)

const releaseTimeout = 5 * time.Second

// FromUpload extracts text from a staged upload and releases it.
// The upload is deleted exactly once whether extraction succeeds, fails or panics.
// A failed delete is logged and never replaces the extraction outcome.
func FromUpload(ctx context.Context, store object.ObjectStore, key string, fileName string) (string, error) {
	release := releaser(ctx, store, key)
	defer release()

	if _, err := DetectFormat(fileName); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open upload key=%s: %w", key, err)
	}
	data, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return "", fmt.Errorf("read upload key=%s: %w", key, err)
	}

	return ExtractText(ctx, data, fileName)
}

func releaser(ctx context.Context, store object.ObjectStore, key string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			if err := store.Delete(rctx, key); err != nil {
				telemetry.Warn("upload.cleanup_failed", map[string]any{
					"key": key,
					"err": err,
				})
			}
		})
	}
}
