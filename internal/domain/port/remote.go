package port

import (
	"context"

	"perfi.com/internal/domain/entity"
)

// Record is any value a collection store can hold.
type Record interface {
	RecordID() entity.ID
}

// RemoteAPI is the port for the backend REST API
type RemoteAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Put(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string) error
}
