package products

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"calufestas/globals"
	"calufestas/storage"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	thumbWidth    = 300
	thumbTTL      = 24 * time.Hour
	maxImageBytes = 10 << 20
)

var ErrNoImage = errors.New("products: product has no image")

// Thumbnail returns a 300px wide JPEG of the product's cover image,
// cached per product.
func (s *Service) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	key := globals.Slot(globals.ThumbPrefix, id)
	if data, err := s.cache.Get(ctx, key); err == nil {
		return data, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("thumbnail cache read failed", zap.Error(err))
	}

	p, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	src := p.FirstImage()
	if src == "" {
		return nil, ErrNoImage
	}

	img, err := s.fetchImage(ctx, src)
	if err != nil {
		return nil, err
	}
	data, err := EncodeThumbnail(img)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, data, thumbTTL); err != nil {
		s.log.Warn("thumbnail cache write failed", zap.Error(err))
	}
	return data, nil
}

func (s *Service) fetchImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.images.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	img, err := imaging.Decode(io.LimitReader(resp.Body, maxImageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodeThumbnail scales img to the thumbnail width and encodes it as JPEG.
func EncodeThumbnail(img image.Image) ([]byte, error) {
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
