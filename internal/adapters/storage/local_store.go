package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mdsetiawan/facility-directory/internal/domain/providers"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// MaxAssetSize is the per-asset byte ceiling. Uploads above it are rejected
// before anything touches disk.
const MaxAssetSize = 5_000_000

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// LocalStore implements the AssetStore interface on a local directory.
// Save stores under a content-addressed name, so re-uploading identical
// bytes is idempotent; SaveNamed stores under a caller-chosen name.
type LocalStore struct {
	dir     string
	baseURL string
}

// Ensure LocalStore implements AssetStore
var _ providers.AssetStore = (*LocalStore)(nil)

// NewLocalStore creates an asset store rooted at dir. The directory is
// created if it does not exist.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save validates and persists an asset, returning its stored name
func (s *LocalStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	ext, err := validateAsset(filename, data)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + ext

	target := filepath.Join(s.dir, name)
	if _, err := os.Stat(target); err == nil {
		return name, nil
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", apperrors.NewInternalError("failed to write asset", err)
	}

	return name, nil
}

// SaveNamed validates and persists an asset under a caller-chosen base name.
// Re-saving the same base overwrites the previous bytes, last writer wins.
func (s *LocalStore) SaveNamed(ctx context.Context, base, filename string, data []byte) (string, error) {
	ext, err := validateAsset(filename, data)
	if err != nil {
		return "", err
	}

	if base == "" || path.Base(base) != base {
		return "", apperrors.NewInternalError("invalid asset name", fmt.Errorf("asset base name %q is not a plain name", base))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := base + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", apperrors.NewInternalError("failed to write asset", err)
	}

	return name, nil
}

func validateAsset(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", apperrors.NewAssetRejectedError(
			apperrors.AssetRejectInvalidType,
			fmt.Sprintf("unsupported image type %q, allowed types are .png, .jpg and .jpeg", ext),
		)
	}

	if len(data) > MaxAssetSize {
		return "", apperrors.NewAssetRejectedError(
			apperrors.AssetRejectTooLarge,
			fmt.Sprintf("image exceeds the %d byte limit", MaxAssetSize),
		)
	}

	return ext, nil
}

// Release removes an asset. A missing asset is not an error.
func (s *LocalStore) Release(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}

	// Reject names that escape the store directory.
	if path.Base(name) != name {
		return apperrors.NewInternalError("invalid asset name", fmt.Errorf("asset name %q contains a path separator", name))
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return apperrors.NewInternalError("failed to remove asset", err)
	}

	return nil
}

// URL returns the public URL for a stored asset name
func (s *LocalStore) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + "/" + name
}
