package scalebar

import (
	"image"
	"image/color"

	"github.com/menta2k/microscope-measure/pkg/types"
)

// FinderConfig tunes the pixel-contrast scan.
type FinderConfig struct {
	// ContrastThreshold is the minimum luminance deviation from the band
	// mean for a pixel to count as part of the bar, in [0,1].
	ContrastThreshold float64
	// MinRunRatio is the shortest acceptable bar, as a fraction of the
	// image width.
	MinRunRatio float64
	// SearchBand is the fraction of the image height scanned, measured up
	// from the bottom edge where micrographs place their bar.
	SearchBand float64
}

// DefaultFinderConfig returns the scan tuning that works for typical
// micrograph overlays.
func DefaultFinderConfig() FinderConfig {
	return FinderConfig{
		ContrastThreshold: 0.25,
		MinRunRatio:       0.05,
		SearchBand:        0.35,
	}
}

// Finder locates scale bars without a model, by scanning the lower part of
// the image for a long horizontal run of pixels that stand out from their
// surroundings. It only finds horizontal bars, which covers the common case.
type Finder struct {
	config FinderConfig
}

// NewFinder creates a finder with default tuning.
func NewFinder() *Finder {
	return &Finder{config: DefaultFinderConfig()}
}

// NewFinderWithConfig creates a finder with custom tuning. Zero fields fall
// back to the defaults.
func NewFinderWithConfig(config FinderConfig) *Finder {
	def := DefaultFinderConfig()
	if config.ContrastThreshold <= 0 {
		config.ContrastThreshold = def.ContrastThreshold
	}
	if config.MinRunRatio <= 0 {
		config.MinRunRatio = def.MinRunRatio
	}
	if config.SearchBand <= 0 || config.SearchBand > 1 {
		config.SearchBand = def.SearchBand
	}
	return &Finder{config: config}
}

// FindBar scans the image and returns the longest qualifying run as a
// normalized result, or ErrNotFound. The returned LengthUm is always zero:
// the heuristic sees pixels, not the printed annotation.
func (f *Finder) FindBar(img image.Image) (*types.ScaleBarResult, error) {
	if img == nil {
		return nil, ErrNotFound
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, ErrNotFound
	}

	bandTop := b.Max.Y - int(float64(h)*f.config.SearchBand)
	if bandTop < b.Min.Y {
		bandTop = b.Min.Y
	}

	mean := bandMeanLuminance(img, bandTop)

	bestLen := 0
	bestRow, bestStart := 0, 0
	for y := bandTop; y < b.Max.Y; y++ {
		runLen, runStart := 0, 0
		for x := b.Min.X; x < b.Max.X; x++ {
			if absDiff(luminance(img.At(x, y)), mean) >= f.config.ContrastThreshold {
				if runLen == 0 {
					runStart = x
				}
				runLen++
				if runLen > bestLen {
					bestLen = runLen
					bestRow = y
					bestStart = runStart
				}
			} else {
				runLen = 0
			}
		}
	}

	minRun := int(float64(w) * f.config.MinRunRatio)
	if minRun < 2 {
		minRun = 2
	}
	if bestLen < minRun {
		return nil, ErrNotFound
	}

	return &types.ScaleBarResult{
		Found:      true,
		Confidence: float64(bestLen) / float64(w),
		X1:         float64(bestStart-b.Min.X) / float64(w),
		Y1:         float64(bestRow-b.Min.Y) / float64(h),
		X2:         float64(bestStart-b.Min.X+bestLen-1) / float64(w),
		Y2:         float64(bestRow-b.Min.Y) / float64(h),
	}, nil
}

// bandMeanLuminance averages luminance over the search band, subsampled for
// speed on large images.
func bandMeanLuminance(img image.Image, bandTop int) float64 {
	b := img.Bounds()
	step := (b.Max.X - b.Min.X) / 256
	if step < 1 {
		step = 1
	}

	var sum float64
	var n int
	for y := bandTop; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x += step {
			sum += luminance(img.At(x, y))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return float64(r+g+b) / (3 * 65535)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
