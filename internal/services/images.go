package services

import (
	"bytes"
	"context"
	"fmt"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"greenmart/internal/domain"
	"greenmart/internal/infra"
)

const (
	MaxProductImages = 5

	productsFolder   = "products"
	categoriesFolder = "categories"
)

// ImageUpload is an already validated image file held in memory.
type ImageUpload struct {
	Name string
	Data []byte
}

// uploadImages pushes all files in parallel and returns them in input order.
// If any upload fails the ones that succeeded are removed again.
func uploadImages(ctx context.Context, gw infra.ImageGatewayInterface, files []ImageUpload, folder string) ([]infra.UploadedImage, error) {
	out := make([]infra.UploadedImage, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			img, err := gw.Upload(gctx, bytes.NewReader(f.Data), folder)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			out[i] = *img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, img := range out {
			if img.PublicID != "" {
				deleteImage(context.WithoutCancel(ctx), gw, img.PublicID)
			}
		}
		return nil, err
	}
	return out, nil
}

func productImages(uploaded []infra.UploadedImage, firstPrimary bool) []domain.Image {
	images := make([]domain.Image, len(uploaded))
	for i, u := range uploaded {
		images[i] = domain.Image{URL: u.URL, PublicID: u.PublicID, IsPrimary: firstPrimary && i == 0}
	}
	return images
}

func deleteImage(ctx context.Context, gw infra.ImageGatewayInterface, publicID string) {
	if publicID == "" {
		return
	}
	if err := gw.Delete(ctx, publicID); err != nil {
		zlog.Warn().Err(err).Str("public_id", publicID).Msg("failed to delete image")
	}
}
