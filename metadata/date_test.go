package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-archive/model"
)

func touch(t *testing.T, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func withDateTime(v string) model.ImageMetadata {
	return model.ImageMetadata{Tags: map[string][]string{"DateTime": {v}}}
}

func TestResolveDateFromTag(t *testing.T) {
	path := touch(t, time.Date(2021, 1, 2, 12, 0, 0, 0, time.Local))

	for _, v := range []string{
		"2023:05:14 10:22:01",
		"1999:12:31 23:59:59",
		"2024:02:29 00:00:00",
	} {
		d, src, err := ResolveDate(withDateTime(v), path)
		require.NoError(t, err)
		assert.Equal(t, SourceExif, src)
		assert.Equal(t, v[0:4], d.Year)
		assert.Equal(t, v[5:7], d.Month)
		assert.Equal(t, v[8:10], d.Day)
		assert.Equal(t, v[:10], d.String())
	}
}

func TestResolveDateFallsBackToModTime(t *testing.T) {
	path := touch(t, time.Date(2021, 1, 2, 12, 0, 0, 0, time.Local))
	want := model.CaptureDate{Year: "2021", Month: "01", Day: "02"}

	cases := map[string]model.ImageMetadata{
		"no metadata":  {},
		"no date tag":  {Tags: map[string][]string{"Make": {"Canon"}}},
		"empty value":  withDateTime(""),
		"whitespace":   withDateTime("   "),
		"zeroed":       withDateTime("0000:00:00 00:00:00"),
		"blank fields": withDateTime("    :  :     :  :  "),
		"truncated":    withDateTime("2023:05"),
		"garbage":      withDateTime("unknown date"),
		"bad month":    withDateTime("2023:13:01 00:00:00"),
		"no values":    {Tags: map[string][]string{"DateTime": nil}},
	}
	for name, md := range cases {
		t.Run(name, func(t *testing.T) {
			d, src, err := ResolveDate(md, path)
			require.NoError(t, err)
			assert.Equal(t, SourceModTime, src)
			assert.Equal(t, want, d)
		})
	}
}

func TestResolveDateMissingFile(t *testing.T) {
	_, _, err := ResolveDate(model.ImageMetadata{}, filepath.Join(t.TempDir(), "gone.png"))
	assert.Error(t, err)
}

func TestParseDateTimeFixedWidth(t *testing.T) {
	d, ok := ParseDateTime("2023:05:14 10:22:01")
	require.True(t, ok)
	assert.Len(t, d.Year, 4)
	assert.Len(t, d.Month, 2)
	assert.Len(t, d.Day, 2)

	_, ok = ParseDateTime("2023:5:14 10:22:01")
	assert.False(t, ok)
}
