package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gogotex/gogotex/backend/course-service/internal/course/repository"
	"github.com/gogotex/gogotex/backend/course-service/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Uploader stores one object. *MinIOStorage implements it.
type Uploader interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// Snapshotter returns the serialized collections as one consistent view.
type Snapshotter interface {
	Snapshot(ctx context.Context) (map[repository.Kind][]byte, error)
}

const snapshotPrefix = "snapshots"

// Exporter copies the three collections to object storage.
type Exporter struct {
	source Snapshotter
	up     Uploader
	now    func() time.Time
}

func NewExporter(source Snapshotter, up Uploader) *Exporter {
	return &Exporter{source: source, up: up, now: time.Now}
}

// Export uploads every collection under snapshots/<UTC timestamp>/<kind>.json
// and returns the written keys in collection order.
func (e *Exporter) Export(ctx context.Context) ([]string, error) {
	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stamp := e.now().UTC().Format("20060102T150405Z")

	keys := make([]string, len(repository.AllKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range repository.AllKinds {
		data := snap[kind]
		key := fmt.Sprintf("%s/%s/%s.json", snapshotPrefix, stamp, kind)
		keys[i] = key
		g.Go(func() error {
			if err := e.up.UploadFile(gctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Errorf("snapshot export failed: %v", err)
		return nil, err
	}
	logger.Infof("snapshot exported: %s/%s", snapshotPrefix, stamp)
	return keys, nil
}
