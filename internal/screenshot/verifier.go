// Package screenshot fetches screenshot URLs and checks the decoded images
// against the declared size and the configured resolution bounds.
package screenshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"strconv"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog"

	"github.com/jonathan/appdata-validator/internal/config"
	"github.com/jonathan/appdata-validator/internal/fetch"
	"github.com/jonathan/appdata-validator/internal/types"
)

// Reporter receives the problems found while verifying one screenshot.
type Reporter interface {
	Add(kind types.ProblemKind, message string)
}

// Declared is the size given by the width and height attributes; zero means
// not declared.
type Declared struct {
	Width  int
	Height int
}

// Verifier checks remote screenshots. It is safe for concurrent use as long
// as the Reporters passed to Verify are distinct.
type Verifier struct {
	rules  config.Rules
	opts   *fetch.Options
	logger zerolog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClient makes the verifier send requests through client.
func WithClient(client *http.Client) Option {
	return func(v *Verifier) { v.opts.Client = client }
}

// WithLogger sets the logger used for per-fetch debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// NewVerifier returns a verifier bound to rules.
func NewVerifier(rules config.Rules, options ...Option) *Verifier {
	v := &Verifier{
		rules: rules,
		opts: &fetch.Options{
			Timeout:   rules.Timeout(),
			UserAgent: rules.UserAgent,
			MaxBytes:  fetch.DefaultMaxBytes,
		},
		logger: zerolog.Nop(),
	}
	for _, o := range options {
		o(v)
	}
	return v
}

// Enabled reports whether screenshots are fetched at all.
func (v *Verifier) Enabled() bool { return v.rules.HasNetworkAccess }

// Verify fetches rawURL and checks the image. It returns false when the
// screenshot could not be fetched or decoded, in which case it must not be
// added to the accepted set. Size and aspect problems do not reject it.
// Without network access every screenshot is accepted unchecked.
func (v *Verifier) Verify(ctx context.Context, rawURL string, declared Declared, report Reporter) bool {
	if !v.Enabled() {
		return true
	}

	result, err := fetch.URL(ctx, rawURL, v.opts)
	if err != nil {
		var urlErr *fetch.InvalidURLError
		if errors.As(err, &urlErr) {
			report.Add(types.KindURLNotFound, "<screenshot> url not valid")
			return false
		}
		ev := v.logger.Debug().Err(err).Str("url", rawURL)
		if result != nil {
			ev = ev.Int("status", result.StatusCode)
		}
		ev.Msg("screenshot fetch failed")
		report.Add(types.KindURLNotFound, "<screenshot> url not found")
		return false
	}

	v.logger.Debug().
		Str("url", rawURL).
		Int("status", result.StatusCode).
		Int("bytes", len(result.Body)).
		Dur("elapsed", result.Elapsed).
		Msg("screenshot fetched")

	if len(result.Body) == 0 {
		report.Add(types.KindFileInvalid, "<screenshot> url is a zero length file")
		return false
	}

	img, format, err := image.Decode(bytes.NewReader(result.Body))
	if err != nil {
		v.logger.Debug().Err(err).Str("url", rawURL).Msg("screenshot decode failed")
		report.Add(types.KindFileInvalid, "<screenshot> failed to load image")
		return false
	}

	bounds := img.Bounds()
	v.logger.Debug().
		Str("url", rawURL).
		Str("format", format).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Msg("screenshot decoded")

	v.checkSize(bounds.Dx(), bounds.Dy(), declared, report)
	return true
}

func (v *Verifier) checkSize(width, height int, declared Declared, report Reporter) {
	if declared.Width != 0 && declared.Width != width {
		report.Add(types.KindAttributeInvalid, "<screenshot> width did not match specified")
	}
	if declared.Height != 0 && declared.Height != height {
		report.Add(types.KindAttributeInvalid, "<screenshot> height did not match specified")
	}

	r := v.rules
	if width < r.ScreenshotWidthMin {
		report.Add(types.KindAttributeInvalid, "<screenshot> width was too small")
	}
	if height < r.ScreenshotHeightMin {
		report.Add(types.KindAttributeInvalid, "<screenshot> height was too small")
	}
	if width > r.ScreenshotWidthMax {
		report.Add(types.KindAttributeInvalid, "<screenshot> width was too large")
	}
	if height > r.ScreenshotHeightMax {
		report.Add(types.KindAttributeInvalid, "<screenshot> height was too large")
	}

	if !r.RequireCorrectAspectRatio || height == 0 {
		return
	}
	aspect := float64(width) / float64(height)
	if math.Abs(aspect-r.DesiredAspectRatio) > r.AspectRatioTolerance {
		v.logger.Debug().
			Float64("aspect", aspect).
			Float64("wanted", r.DesiredAspectRatio).
			Msg("screenshot aspect ratio out of tolerance")
		report.Add(types.KindAspectRatioInvalid, fmt.Sprintf("<screenshot> aspect ratio was not %s", formatRatio(r.DesiredAspectRatio)))
	}
}

// formatRatio writes a ratio as w:h when small whole numbers express it,
// so 1.7777 becomes "16:9".
func formatRatio(ratio float64) string {
	for h := 1; h <= 32; h++ {
		w := math.Round(ratio * float64(h))
		if w >= 1 && math.Abs(w/float64(h)-ratio) < 1e-6 {
			return fmt.Sprintf("%d:%d", int(w), h)
		}
	}
	return strconv.FormatFloat(ratio, 'f', -1, 64)
}
