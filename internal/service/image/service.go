package image

import (
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"image/draw"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/worker"
	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/shopkit/service/image")
	serviceMeter  = otel.Meter("github.com/Additional-Code/shopkit/service/image")
)

const (
	watermarkMargin  = 20
	watermarkScale   = 3
	watermarkOpacity = 0.5
)

// Module provides the image pipeline to Fx.
var Module = fx.Provide(NewService)

// Service resizes and watermarks product images in a directory.
type Service struct {
	cfg       config.Images
	logger    *zap.Logger
	pool      *worker.Pool
	processed metric.Int64Counter
}

// NewService wires a new Service instance.
func NewService(cfg config.Config, logger *zap.Logger) (*Service, error) {
	processed, err := serviceMeter.Int64Counter("shopkit.images.processed",
		metric.WithDescription("Images written by the resize pipeline"))
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:       cfg.Images,
		logger:    logger,
		pool:      worker.NewPool(cfg.Images.Workers, logger),
		processed: processed,
	}, nil
}

// Process fits every recognised image in inputDir inside width x height,
// keeping aspect ratio and never enlarging, and writes it to outputDir under
// the same name. It returns the number of images written.
func (s *Service) Process(ctx context.Context, inputDir, outputDir string, width, height int) (int, error) {
	ctx, span := serviceTracer.Start(ctx, "ImageService.Process", trace.WithAttributes(
		attribute.String("image.input_dir", inputDir),
		attribute.String("image.output_dir", outputDir),
		attribute.Int("image.width", width),
		attribute.Int("image.height", height),
	))
	defer span.End()

	if width <= 0 || height <= 0 {
		return 0, errorbank.Validation(fmt.Sprintf("image size must be positive (got %dx%d)", width, height))
	}

	files, err := s.images(inputDir)
	if err != nil {
		span.SetStatus(codes.Error, "list input failed")
		return 0, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		span.RecordError(err)
		return 0, errorbank.IO(fmt.Sprintf("create output directory %s", outputDir), errorbank.WithCause(err))
	}

	var written atomic.Int64
	err = s.pool.Run(ctx, len(files), func(ctx context.Context, i int) error {
		name := files[i]
		src := filepath.Join(inputDir, name)
		img, err := imaging.Open(src, imaging.AutoOrientation(true))
		if err != nil {
			return errorbank.IO(fmt.Sprintf("decode image %s", src), errorbank.WithCause(err))
		}

		fitted := fit(img, width, height)
		dst := filepath.Join(outputDir, name)
		if err := s.save(dst, fitted); err != nil {
			return errorbank.IO(fmt.Sprintf("write image %s", dst), errorbank.WithCause(err))
		}

		s.logger.Debug("image resized",
			zap.String("file", name),
			zap.Int("width", fitted.Bounds().Dx()),
			zap.Int("height", fitted.Bounds().Dy()),
		)
		written.Add(1)
		return nil
	})
	count := int(written.Load())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resize failed")
		return count, err
	}

	s.processed.Add(ctx, int64(count))
	span.SetAttributes(attribute.Int("image.count", count))
	return count, nil
}

// Watermark draws text at the bottom-right corner of every recognised image
// in dir, rewriting the files in place. It returns the number of images marked.
func (s *Service) Watermark(ctx context.Context, dir, text string) (int, error) {
	ctx, span := serviceTracer.Start(ctx, "ImageService.Watermark", trace.WithAttributes(
		attribute.String("image.dir", dir),
	))
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return 0, errorbank.Validation("watermark text must not be empty")
	}

	files, err := s.images(dir)
	if err != nil {
		span.SetStatus(codes.Error, "list directory failed")
		return 0, err
	}

	label := renderText(text)
	var marked atomic.Int64
	err = s.pool.Run(ctx, len(files), func(ctx context.Context, i int) error {
		path := filepath.Join(dir, files[i])
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return errorbank.IO(fmt.Sprintf("decode image %s", path), errorbank.WithCause(err))
		}

		bounds := img.Bounds()
		pos := stdimage.Pt(
			bounds.Dx()-label.Bounds().Dx()-watermarkMargin,
			bounds.Dy()-label.Bounds().Dy()-watermarkMargin,
		)
		if err := s.save(path, imaging.Overlay(img, label, pos, watermarkOpacity)); err != nil {
			return errorbank.IO(fmt.Sprintf("write image %s", path), errorbank.WithCause(err))
		}
		marked.Add(1)
		return nil
	})
	count := int(marked.Load())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "watermark failed")
		return count, err
	}

	s.logger.Info("images watermarked", zap.String("dir", dir), zap.Int("count", count))
	return count, nil
}

// fit scales img down to fit inside width x height with a Lanczos filter.
// Images already inside the box are copied unchanged.
func fit(img stdimage.Image, width, height int) *stdimage.NRGBA {
	b := img.Bounds()
	w, h := fitSize(b.Dx(), b.Dy(), width, height)
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// fitSize keeps the aspect ratio of w x h and rounds to the nearest pixel.
func fitSize(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(math.Round(float64(w)*ratio))), max(1, int(math.Round(float64(h)*ratio)))
}

// images lists the recognised image files directly inside dir, sorted by name.
func (s *Service) images(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errorbank.NotFound(fmt.Sprintf("image directory %s does not exist", dir))
	}
	if err != nil {
		return nil, errorbank.IO(fmt.Sprintf("read image directory %s", dir), errorbank.WithCause(err))
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !slices.Contains(s.cfg.Extensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (s *Service) save(path string, img stdimage.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".webp") {
		err = webp.Encode(f, img, &webp.Options{Quality: float32(s.cfg.Quality)})
	} else {
		var format imaging.Format
		format, err = imaging.FormatFromFilename(path)
		if err == nil {
			err = imaging.Encode(f, img, format, imaging.JPEGQuality(s.cfg.Quality))
		}
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// renderText draws text in white on a transparent canvas using the built-in
// bitmap face, scaled up to roughly 36px tall.
func renderText(text string) stdimage.Image {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Height

	canvas := stdimage.NewNRGBA(stdimage.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), stdimage.Transparent, stdimage.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  canvas,
		Src:  stdimage.White,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	return imaging.Resize(canvas, width*watermarkScale, height*watermarkScale, imaging.NearestNeighbor)
}
