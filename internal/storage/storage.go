package storage

import (
	"context"
	"io"
)

// Uploader archives original uploaded documents so the chunk store never
// has to be the system of record for raw bytes.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}
