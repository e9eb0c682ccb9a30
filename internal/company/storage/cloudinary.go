package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Cloudinary uploads files to a Cloudinary folder. The stored path is the
// secure URL of the asset.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary connects with a cloudinary:// URL.
func NewCloudinary(url, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Save(ctx context.Context, dir, _ string, r io.Reader) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       path.Join(c.folder, dir),
		PublicID:     uuid.NewString(),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload failed: %w", errors.New(res.Error.Message))
	}
	return res.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, secureURL string) error {
	resourceType, publicID, ok := parseAssetURL(secureURL)
	if !ok {
		return fmt.Errorf("not a cloudinary asset URL: %s", secureURL)
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy failed: %w", errors.New(res.Error.Message))
	}
	return nil
}

// parseAssetURL splits a delivery URL of the form
// .../<resource_type>/upload/v<version>/<public_id>.<ext> into its resource
// type and public id. Raw assets keep their extension in the public id.
func parseAssetURL(raw string) (resourceType, publicID string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 1; i < len(parts)-1; i++ {
		if parts[i] != "upload" {
			continue
		}
		resourceType = parts[i-1]
		rest := parts[i+1:]
		if len(rest) > 1 && strings.HasPrefix(rest[0], "v") && strings.Trim(rest[0][1:], "0123456789") == "" {
			rest = rest[1:]
		}
		publicID = strings.Join(rest, "/")
		if resourceType != "raw" {
			publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
		}
		return resourceType, publicID, publicID != ""
	}
	return "", "", false
}
