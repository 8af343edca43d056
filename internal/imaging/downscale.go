// Package imaging shrinks photos before they are embedded in operation
// records, keeping the persisted list well under the storage quota.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultMaxWidth  = 400
	DefaultMaxHeight = 400
	DefaultQuality   = 70
	DefaultTimeout   = 5 * time.Second

	// maxSourcePixels caps the decoded size of an input image.
	maxSourcePixels = 64 << 20
)

const outputMediaType = "image/jpeg"

var (
	// ErrUndecodable is returned when the payload is not an image any
	// registered decoder understands.
	ErrUndecodable = errors.New("image could not be decoded")

	// ErrTimeout is returned when decoding and re-encoding did not finish
	// within Options.Timeout.
	ErrTimeout = errors.New("image processing timed out")
)

// Options bounds the output of Downscale.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // JPEG quality, 1-100
	Timeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Result is a downscaled, re-encoded image.
type Result struct {
	Payload      string `json:"-"`
	SourceFormat string `json:"source_format"`
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`
	SourceBytes  int    `json:"source_bytes"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Bytes        int    `json:"bytes"`
}

// FitWithin returns the largest dimensions with the aspect ratio of w×h that
// fit inside maxW×maxH. Images that already fit are never enlarged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := math.Min(1, math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h)))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	return clamp(nw, 1, maxW), clamp(nh, 1, maxH)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// Downscale decodes payload, shrinks it to fit within the configured bounds
// and re-encodes it as a JPEG data URI. The work runs on its own goroutine;
// Downscale returns when it finishes, when ctx is done, or when
// Options.Timeout elapses, whichever comes first.
func Downscale(ctx context.Context, payload string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := downscale(payload, opts)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, opts.Timeout)
		}
		return nil, ctx.Err()
	}
}

func downscale(payload string, opts Options) (*Result, error) {
	_, data, err := DecodeDataURI(payload)
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, fmt.Errorf("%w: unsupported dimensions %dx%d", ErrUndecodable, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	sb := src.Bounds()
	w, h := FitWithin(sb.Dx(), sb.Dy(), opts.MaxWidth, opts.MaxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha channel; flatten onto white.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	return &Result{
		Payload:      EncodeDataURI(outputMediaType, buf.Bytes()),
		SourceFormat: format,
		SourceWidth:  sb.Dx(),
		SourceHeight: sb.Dy(),
		SourceBytes:  len(data),
		Width:        w,
		Height:       h,
		Bytes:        buf.Len(),
	}, nil
}
