package port

import "context"

// WatermarkStore persists the last fully processed block height.
// Read reports ok=false when nothing has been stored yet.
type WatermarkStore interface {
	Read(ctx context.Context) (height uint64, ok bool, err error)
	Write(ctx context.Context, height uint64) error
}
