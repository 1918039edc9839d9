package metadata

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
	"go.uber.org/zap"

	"photo-archive/model"
)

// ErrNotImage is returned for files that do not decode as an image.
var ErrNotImage = errors.New("not a decodable image")

func init() {
	exif.RegisterParsers(mknote.All...)
}

// Reader decodes images and extracts their EXIF tags.
type Reader struct {
	Log *zap.Logger
}

// Read returns the metadata of the image at path. An image without an EXIF
// block yields empty metadata. Files that cannot be read or decoded return
// an error and should be skipped.
func (r *Reader) Read(path string) (model.ImageMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ImageMetadata{}, fmt.Errorf("read image: %w", err)
	}
	defer f.Close()

	// Only the header is decoded; pixel data is never loaded.
	if _, _, err := image.DecodeConfig(f); err != nil {
		return model.ImageMetadata{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return model.ImageMetadata{}, fmt.Errorf("read image: %w", err)
	}

	md, err := Decode(f)
	if err != nil {
		r.logger().Debug("no usable EXIF block", zap.String("file", path), zap.Error(err))
	}
	return md, nil
}

func (r *Reader) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// Decode extracts EXIF tags from an image stream. On a critical parse
// failure it returns empty metadata together with the cause.
func Decode(rd io.Reader) (model.ImageMetadata, error) {
	x, err := exif.Decode(rd)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return model.ImageMetadata{}, err
	}

	w := &tagCollector{md: model.ImageMetadata{Tags: map[string][]string{}}}
	if werr := x.Walk(w); werr != nil {
		return model.ImageMetadata{}, werr
	}
	return w.md, err
}

type tagCollector struct {
	md model.ImageMetadata
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	field := string(name)
	switch {
	case name == exif.GPSInfoIFDPointer:
		c.gps()
	case strings.HasPrefix(field, "GPS"):
		c.gps()[field] = tagValues(tag)
	default:
		c.md.Tags[field] = tagValues(tag)
	}
	return nil
}

func (c *tagCollector) gps() map[string][]string {
	if c.md.GPS == nil {
		c.md.GPS = map[string][]string{}
	}
	return c.md.GPS
}

func tagValues(tag *tiff.Tag) []string {
	n := int(tag.Count)
	var vals []string

	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return nil
		}
		return []string{s}
	case tiff.RatVal:
		for i := 0; i < n; i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				break
			}
			vals = append(vals, strconv.FormatInt(num, 10)+"/"+strconv.FormatInt(den, 10))
		}
	case tiff.IntVal:
		for i := 0; i < n; i++ {
			v, err := tag.Int64(i)
			if err != nil {
				break
			}
			vals = append(vals, strconv.FormatInt(v, 10))
		}
	case tiff.FloatVal:
		for i := 0; i < n; i++ {
			v, err := tag.Float(i)
			if err != nil {
				break
			}
			vals = append(vals, strconv.FormatFloat(v, 'f', -1, 64))
		}
	default:
		vals = []string{tag.String()}
	}
	return vals
}
