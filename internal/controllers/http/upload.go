package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"greenmart/internal/domain"
	"greenmart/internal/services"
)

const maxImageSize = 5 << 20

// readImages returns the image files sent under field. A request that is not
// multipart carries no files.
func readImages(c *gin.Context, field string, max int) ([]services.ImageUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, domain.Validation("Invalid multipart form")
	}
	headers := form.File[field]
	if len(headers) > max {
		return nil, domain.Validation("You can upload at most %d images", max)
	}

	out := make([]services.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		img, err := readImage(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func readImage(fh *multipart.FileHeader) (services.ImageUpload, error) {
	if fh.Size > maxImageSize {
		return services.ImageUpload{}, domain.Validation("File %s is larger than 5MB", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return services.ImageUpload{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return services.ImageUpload{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if len(data) > maxImageSize {
		return services.ImageUpload{}, domain.Validation("File %s is larger than 5MB", fh.Filename)
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return services.ImageUpload{}, domain.Validation("Only image files are allowed!")
	}
	return services.ImageUpload{Name: fh.Filename, Data: data}, nil
}
