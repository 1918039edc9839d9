package metadata

import (
	"fmt"
	"strings"
	"time"

	"github.com/djherbis/times"

	"photo-archive/model"
)

type DateSource string

const (
	SourceExif    DateSource = "exif"
	SourceModTime DateSource = "mtime"
)

const exifDateLayout = "2006:01:02"

// ResolveDate returns the capture date from the DateTime tag, or from the
// file's modification time when the tag is absent or unusable.
func ResolveDate(md model.ImageMetadata, path string) (model.CaptureDate, DateSource, error) {
	if v, ok := md.Tag("DateTime"); ok {
		if d, ok := ParseDateTime(v); ok {
			return d, SourceExif, nil
		}
	}

	ts, err := times.Stat(path)
	if err != nil {
		return model.CaptureDate{}, "", fmt.Errorf("stat for modification time: %w", err)
	}
	return FromTime(ts.ModTime()), SourceModTime, nil
}

// ParseDateTime splits an EXIF "YYYY:MM:DD HH:MM:SS" value. Blank,
// truncated and zeroed placeholder values are rejected.
func ParseDateTime(v string) (model.CaptureDate, bool) {
	v = strings.TrimSpace(v)
	if len(v) < len(exifDateLayout) {
		return model.CaptureDate{}, false
	}
	prefix := v[:len(exifDateLayout)]

	t, err := time.Parse(exifDateLayout, prefix)
	if err != nil || t.Year() == 0 {
		return model.CaptureDate{}, false
	}
	return model.CaptureDate{
		Year:  prefix[0:4],
		Month: prefix[5:7],
		Day:   prefix[8:10],
	}, true
}

func FromTime(t time.Time) model.CaptureDate {
	t = t.Local()
	return model.CaptureDate{
		Year:  t.Format("2006"),
		Month: t.Format("01"),
		Day:   t.Format("02"),
	}
}
