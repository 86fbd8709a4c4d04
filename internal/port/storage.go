package port

import "context"

// FetchOutput contains a downloaded document.
type FetchOutput struct {
	Bytes       []byte
	ContentType string
}

// ObjectStorage abstracts the object store holding uploaded documents.
// Callers may hand the engine a storage key instead of raw bytes; the
// engine resolves it through this interface.
type ObjectStorage interface {
	Fetch(ctx context.Context, bucket, key string) (*FetchOutput, error)
}
