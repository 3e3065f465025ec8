package processing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/microscope-measure/pkg/geometry"
)

// ErrMissingImage means an operation that needs an image was invoked
// without one.
var ErrMissingImage = errors.New("no image loaded")

// Processor handles image loading, saving and display mapping.
type Processor struct {
	config Config
}

// Config holds processor limits and defaults.
type Config struct {
	// MinImageSize rejects images too small to measure anything on.
	MinImageSize int
	// DefaultQuality is the JPEG/WebP quality used when none is given.
	DefaultQuality int
}

// NewProcessor creates a processor with default configuration.
func NewProcessor() *Processor {
	return &Processor{config: Config{MinImageSize: 16, DefaultQuality: 90}}
}

// NewProcessorWithConfig creates a processor with custom configuration.
func NewProcessorWithConfig(config Config) *Processor {
	if config.MinImageSize <= 0 {
		config.MinImageSize = 16
	}
	if config.DefaultQuality <= 0 {
		config.DefaultQuality = 90
	}
	return &Processor{config: config}
}

// LoadImage loads an image from a file path with WebP support.
func (p *Processor) LoadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, ErrMissingImage
	}

	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	if _, err := f.Seek(0, 0); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}

	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// LoadImageFromURL downloads and loads an image from a URL.
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequest("GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Microscope-Measure/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return p.decodeImageFromBytes(data)
}

// LoadImageSmart loads an image from either a file path or URL.
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// SaveImage saves an image to a file with the specified format and quality.
// An empty format is derived from the path extension.
func (p *Processor) SaveImage(img image.Image, path, format string, quality int) error {
	if img == nil {
		return ErrMissingImage
	}
	if quality <= 0 {
		quality = p.config.DefaultQuality
	}
	if format == "" {
		if i := strings.LastIndex(path, "."); i >= 0 {
			format = path[i+1:]
		}
	}

	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Quality: float32(quality)})
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ImageInfo contains basic image metadata.
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

// Info returns basic information about an image.
func (p *Processor) Info(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	return ImageInfo{
		Width:       width,
		Height:      height,
		AspectRatio: float64(width) / float64(height),
		Area:        width * height,
	}
}

// ValidateImage checks if an image meets minimum requirements.
func (p *Processor) ValidateImage(img image.Image) error {
	if img == nil {
		return ErrMissingImage
	}
	bounds := img.Bounds()
	if bounds.Dx() < p.config.MinImageSize || bounds.Dy() < p.config.MinImageSize {
		return fmt.Errorf("image too small to measure: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), p.config.MinImageSize)
	}
	return nil
}

// DisplayTransform maps canvas coordinates back to image pixels after the
// image has been downsized to fit the drawing surface.
type DisplayTransform struct {
	ScaleX float64
	ScaleY float64
}

// Apply maps a shape drawn on the display back into image pixel space.
func (t DisplayTransform) Apply(s geometry.Shape) geometry.Shape {
	return geometry.ScaleShape(s, t.ScaleX, t.ScaleY)
}

// FitToDisplay returns the image resized to at most maxWidth pixels wide,
// plus the transform that maps shapes drawn on the resized image back to
// source pixels. Images already narrow enough pass through unchanged.
func (p *Processor) FitToDisplay(img image.Image, maxWidth int) (image.Image, DisplayTransform) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img, DisplayTransform{ScaleX: 1, ScaleY: 1}
	}

	display := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	db := display.Bounds()

	return display, DisplayTransform{
		ScaleX: float64(w) / float64(db.Dx()),
		ScaleY: float64(h) / float64(db.Dy()),
	}
}

// PrepareImageForModel converts an image to base64 for sending to vision
// models, optionally downsized to keep the payload reasonable.
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if img == nil {
		return "", ErrMissingImage
	}
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}
	if quality <= 0 {
		quality = p.config.DefaultQuality
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
