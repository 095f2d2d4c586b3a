package providers

import "context"

// AssetStore defines the interface for uploaded image assets. Keys are
// opaque names returned by Save.
type AssetStore interface {
	// Save validates and persists an asset, returning its stored name.
	// The original filename is only used for extension validation.
	Save(ctx context.Context, filename string, data []byte) (string, error)

	// SaveNamed validates and persists an asset under the given base name
	// plus the upload's extension. Saving the same base again overwrites.
	SaveNamed(ctx context.Context, base, filename string, data []byte) (string, error)

	// Release removes an asset. Releasing a missing asset is not an error.
	Release(ctx context.Context, name string) error

	// URL returns the public URL for a stored asset name
	URL(name string) string
}
