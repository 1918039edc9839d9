package backup

import (
	"path"
	"strings"

	"photo-archive/model"
)

var placeReplacer = strings.NewReplacer("/", "-", "\\", "-")

// PlanPath returns the object key year/month/day[/place]/filename. The same
// key is used for the staging copy.
func PlanPath(date model.CaptureDate, place, filename string) string {
	parts := []string{date.Year, date.Month, date.Day}
	if p := strings.TrimSpace(placeReplacer.Replace(place)); p != "" && p != "." && p != ".." {
		parts = append(parts, p)
	}
	parts = append(parts, filename)
	return path.Join(parts...)
}
