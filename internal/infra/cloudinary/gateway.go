package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"greenmart/internal/infra"
)

type Gateway struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewGateway(cloudName, apiKey, apiSecret, folder string) (*Gateway, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Gateway{cld: cld, folder: folder}, nil
}

// Upload stores the image under <root folder>/<folder>.
func (g *Gateway) Upload(ctx context.Context, file io.Reader, folder string) (*infra.UploadedImage, error) {
	res, err := g.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: path.Join(g.folder, folder)})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("upload image: %s", res.Error.Message)
	}
	return &infra.UploadedImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (g *Gateway) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("empty public id")
	}
	res, err := g.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("destroy %s: %s", publicID, res.Error.Message)
	}
	return nil
}

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = errors.New("image storage is not configured")

// Disabled stands in for Gateway when no Cloudinary credentials are set.
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string) (*infra.UploadedImage, error) {
	return nil, ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error { return ErrNotConfigured }

var (
	_ infra.ImageGatewayInterface = (*Gateway)(nil)
	_ infra.ImageGatewayInterface = Disabled{}
)
