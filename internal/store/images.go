package store

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/emarket/emarket/pkg/helpers"
)

// UploadListingImage uploads a product image to GCS and returns its public
// URL, suitable as the imageUrl of a new listing.
func (a *Adapter) UploadListingImage(ctx context.Context, sellerID string, r io.Reader, filename, contentType string) (string, error) {
	if a.GCS == nil || a.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("listings", sellerID, id+ext))
	return helpers.UploadImageToGCS(ctx, a.GCS, a.GCSBucket, objectPath, contentType, r)
}
