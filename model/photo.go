package model

import (
	"strconv"
	"time"
)

// ImageMetadata is the decoded EXIF content of one image. Values are kept
// in their textual form; rationals are rendered as "num/den".
type ImageMetadata struct {
	Tags map[string][]string
	// GPS is nil when the image carries no GPSInfo block.
	GPS map[string][]string
}

func (m ImageMetadata) Empty() bool {
	return len(m.Tags) == 0 && m.GPS == nil
}

// Tag returns the first value recorded for name.
func (m ImageMetadata) Tag(name string) (string, bool) {
	vals, ok := m.Tags[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

type CaptureDate struct {
	Year  string `bson:"year"`
	Month string `bson:"month"`
	Day   string `bson:"day"`
}

func (d CaptureDate) String() string {
	return d.Year + ":" + d.Month + ":" + d.Day
}

// GeoCoordinate holds signed decimal degrees, south and west negative.
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
}

func (c GeoCoordinate) LatitudeString() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}

func (c GeoCoordinate) LongitudeString() string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// BackupRecord is the catalog entry written after an object is stored.
type BackupRecord struct {
	Key          string      `bson:"_id"`
	Bucket       string      `bson:"bucket"`
	SourcePath   string      `bson:"source_path"`
	TakenOn      CaptureDate `bson:"taken_on"`
	LonLat       *GeoPoint   `bson:"lonlat,omitempty"`
	Place        string      `bson:"place,omitempty"`
	Size         int64       `bson:"size"`
	Checksum     string      `bson:"checksum"`
	StorageClass string      `bson:"storage_class,omitempty"`
	RunID        string      `bson:"run_id"`
	UploadedAt   time.Time   `bson:"uploaded_at"`
}

type GeoPoint struct {
	Type        string    `bson:"type,omitempty"`
	Coordinates []float64 `bson:"coordinates,omitempty"` // [longitude, latitude]
}

func NewGeoPoint(c GeoCoordinate) *GeoPoint {
	return &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{c.Longitude, c.Latitude},
	}
}
