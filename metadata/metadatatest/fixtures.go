// Package metadatatest builds small image files with hand-assembled EXIF
// blocks for use in tests.
package metadatatest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5

	tagDateTime   = 0x0132
	tagGPSPointer = 0x8825
	tagLatRef     = 0x0001
	tagLat        = 0x0002
	tagLonRef     = 0x0003
	tagLon        = 0x0004
)

// Rational is a numerator/denominator pair.
type Rational [2]uint32

type GPS struct {
	LatRef string
	Lat    [3]Rational
	LonRef string
	Lon    [3]Rational
}

// DMS builds a degree/minute/second triple of whole numbers.
func DMS(d, m, s uint32) [3]Rational {
	return [3]Rational{{d, 1}, {m, 1}, {s, 1}}
}

// JPEG returns an 8x8 JPEG. A non-empty dateTime and a non-nil gps are
// written into an EXIF APP1 segment.
func JPEG(dateTime string, gps *GPS) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sample(), nil); err != nil {
		panic(err)
	}
	raw := buf.Bytes()
	if dateTime == "" && gps == nil {
		return raw
	}

	tiffData := buildTIFF(dateTime, gps)
	payload := append([]byte("Exif\x00\x00"), tiffData...)

	var out bytes.Buffer
	out.Write(raw[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(raw[2:])
	return out.Bytes()
}

// PNG returns an 8x8 PNG without any metadata.
func PNG() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sample()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	return img
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func ascii(tag uint16, s string) entry {
	b := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func rationals(tag uint16, vals [3]Rational) entry {
	b := make([]byte, 0, 24)
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint32(b, v[0])
		b = binary.LittleEndian.AppendUint32(b, v[1])
	}
	return entry{tag: tag, typ: typeRational, count: 3, data: b}
}

func long(tag uint16, v uint32) entry {
	return entry{tag: tag, typ: typeLong, count: 1, data: binary.LittleEndian.AppendUint32(nil, v)}
}

// buildTIFF lays out a little-endian TIFF with IFD0 at offset 8 and the GPS
// IFD directly after it.
func buildTIFF(dateTime string, gps *GPS) []byte {
	ifd0 := func(gpsOffset uint32) []entry {
		var es []entry
		if dateTime != "" {
			es = append(es, ascii(tagDateTime, dateTime))
		}
		if gps != nil {
			es = append(es, long(tagGPSPointer, gpsOffset))
		}
		return es
	}

	const ifd0Offset = 8
	size := len(encodeIFD(ifd0Offset, ifd0(0)))
	gpsOffset := uint32(ifd0Offset + size)

	out := []byte{'I', 'I', 0x2A, 0x00}
	out = binary.LittleEndian.AppendUint32(out, ifd0Offset)
	out = append(out, encodeIFD(ifd0Offset, ifd0(gpsOffset))...)

	if gps != nil {
		out = append(out, encodeIFD(gpsOffset, []entry{
			ascii(tagLatRef, gps.LatRef),
			rationals(tagLat, gps.Lat),
			ascii(tagLonRef, gps.LonRef),
			rationals(tagLon, gps.Lon),
		})...)
	}
	return out
}

// encodeIFD encodes one directory starting at base, followed by the values
// that do not fit in an entry.
func encodeIFD(base uint32, es []entry) []byte {
	tableSize := uint32(2 + 12*len(es) + 4)
	var table, extra []byte

	table = binary.LittleEndian.AppendUint16(table, uint16(len(es)))
	for _, e := range es {
		table = binary.LittleEndian.AppendUint16(table, e.tag)
		table = binary.LittleEndian.AppendUint16(table, e.typ)
		table = binary.LittleEndian.AppendUint32(table, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			table = append(table, inline...)
			continue
		}
		table = binary.LittleEndian.AppendUint32(table, base+tableSize+uint32(len(extra)))
		extra = append(extra, e.data...)
		if len(extra)%2 == 1 {
			extra = append(extra, 0)
		}
	}
	table = binary.LittleEndian.AppendUint32(table, 0)
	return append(table, extra...)
}
