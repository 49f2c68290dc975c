package imagemeta

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// ============================================
// Fixture builders
// ============================================

func buildPNG(width, height uint32, bitDepth, colorType byte, pixelsPerMetre uint32) []byte {
	buf := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	chunk := func(chunkType string, body []byte) {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(body)))
		buf = append(buf, length[:]...)
		buf = append(buf, chunkType...)
		buf = append(buf, body...)
		buf = append(buf, 0, 0, 0, 0) // crc, never verified
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = bitDepth
	ihdr[9] = colorType
	chunk("IHDR", ihdr)

	if pixelsPerMetre > 0 {
		phys := make([]byte, 9)
		binary.BigEndian.PutUint32(phys[0:4], pixelsPerMetre)
		binary.BigEndian.PutUint32(phys[4:8], pixelsPerMetre)
		phys[8] = 1
		chunk("pHYs", phys)
	}

	chunk("IEND", nil)
	return buf
}

func buildJPEG(width, height uint16, components byte, densityUnits byte, xDensity, yDensity uint16) []byte {
	buf := []byte{0xFF, 0xD8} // SOI

	segment := func(marker byte, payload []byte) {
		buf = append(buf, 0xFF, marker)
		var length [2]byte
		binary.BigEndian.PutUint16(length[:], uint16(len(payload)+2))
		buf = append(buf, length[:]...)
		buf = append(buf, payload...)
	}

	app0 := make([]byte, 14)
	copy(app0, "JFIF\x00")
	app0[5], app0[6] = 1, 2 // version
	app0[7] = densityUnits
	binary.BigEndian.PutUint16(app0[8:10], xDensity)
	binary.BigEndian.PutUint16(app0[10:12], yDensity)
	segment(0xE0, app0)

	sof := make([]byte, 6+int(components)*3)
	sof[0] = 8 // precision
	binary.BigEndian.PutUint16(sof[1:3], height)
	binary.BigEndian.PutUint16(sof[3:5], width)
	sof[5] = components
	segment(0xC0, sof)

	segment(0xDA, nil) // SOS terminates the header scan
	return buf
}

func buildTIFF(width, height, samplesPerPixel, bitDepth int, resolution uint32, resUnit int) []byte {
	le16 := func(v int) []byte {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		return b[:]
	}
	le32 := func(v uint32) []byte {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		return b[:]
	}

	// Header, then a single IFD at offset 8 with 7 entries. The two
	// resolution rationals live right after the IFD.
	const ifdOffset = 8
	const entryCount = 7
	ratBase := uint32(ifdOffset + 2 + entryCount*12 + 4)

	buf := []byte("II*\x00")
	buf = append(buf, le32(ifdOffset)...)
	buf = append(buf, le16(entryCount)...)

	entry := func(tag, fieldType int, value uint32) {
		buf = append(buf, le16(tag)...)
		buf = append(buf, le16(fieldType)...)
		buf = append(buf, le32(1)...) // count
		buf = append(buf, le32(value)...)
	}

	entry(256, 3, uint32(width))           // ImageWidth
	entry(257, 3, uint32(height))          // ImageLength
	entry(258, 3, uint32(bitDepth))        // BitsPerSample
	entry(277, 3, uint32(samplesPerPixel)) // SamplesPerPixel
	entry(282, 5, ratBase)                 // XResolution
	entry(283, 5, ratBase+8)               // YResolution
	entry(296, 3, uint32(resUnit))         // ResolutionUnit

	buf = append(buf, le32(0)...) // next IFD

	buf = append(buf, le32(resolution)...)
	buf = append(buf, le32(1)...)
	buf = append(buf, le32(resolution)...)
	buf = append(buf, le32(1)...)
	return buf
}

// ============================================
// Tests
// ============================================

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestExtract_PNGWithDensity(t *testing.T) {
	// 11811 pixels per metre is 300 DPI to within a hundredth.
	info, err := Extract(buildPNG(3000, 2400, 8, 2, 11811))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Format != "png" {
		t.Errorf("expected png, got %s", info.Format)
	}
	if info.WidthPixels != 3000 || info.HeightPixels != 2400 {
		t.Errorf("expected 3000x2400, got %dx%d", info.WidthPixels, info.HeightPixels)
	}
	if !almostEqual(info.DPIHorizontal, 300) || !almostEqual(info.DPIVertical, 300) {
		t.Errorf("expected ~300 DPI, got %f x %f", info.DPIHorizontal, info.DPIVertical)
	}
	if info.Channels != 3 {
		t.Errorf("expected 3 channels for truecolor, got %d", info.Channels)
	}
	if info.BitDepth != 8 {
		t.Errorf("expected bit depth 8, got %d", info.BitDepth)
	}
}

func TestExtract_PNGDefaultsTo72DPI(t *testing.T) {
	info, err := Extract(buildPNG(640, 480, 8, 6, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.DPIHorizontal != 72 || info.DPIVertical != 72 {
		t.Errorf("expected default 72 DPI, got %f x %f", info.DPIHorizontal, info.DPIVertical)
	}
	if info.Channels != 4 {
		t.Errorf("expected 4 channels for truecolor+alpha, got %d", info.Channels)
	}
}

func TestExtract_PNGGrayscale(t *testing.T) {
	info, err := Extract(buildPNG(100, 100, 16, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Channels != 1 {
		t.Errorf("expected 1 channel for grayscale, got %d", info.Channels)
	}
	if info.BitDepth != 16 {
		t.Errorf("expected bit depth 16, got %d", info.BitDepth)
	}
}

func TestExtract_JPEGInchDensity(t *testing.T) {
	info, err := Extract(buildJPEG(1920, 1080, 3, 1, 300, 300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Format != "jpeg" {
		t.Errorf("expected jpeg, got %s", info.Format)
	}
	if info.WidthPixels != 1920 || info.HeightPixels != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", info.WidthPixels, info.HeightPixels)
	}
	if info.DPIHorizontal != 300 || info.DPIVertical != 300 {
		t.Errorf("expected 300 DPI, got %f x %f", info.DPIHorizontal, info.DPIVertical)
	}
	if info.Channels != 3 {
		t.Errorf("expected 3 components, got %d", info.Channels)
	}
}

func TestExtract_JPEGCentimetreDensity(t *testing.T) {
	info, err := Extract(buildJPEG(800, 600, 3, 2, 100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(info.DPIHorizontal, 254) {
		t.Errorf("expected 100 dots/cm converted to 254 DPI, got %f", info.DPIHorizontal)
	}
}

func TestExtract_JPEGNoDensityDefaults(t *testing.T) {
	info, err := Extract(buildJPEG(800, 600, 4, 0, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.DPIHorizontal != 72 || info.DPIVertical != 72 {
		t.Errorf("expected default 72 DPI with aspect-only density, got %f x %f", info.DPIHorizontal, info.DPIVertical)
	}
	if info.Channels != 4 {
		t.Errorf("expected 4 components, got %d", info.Channels)
	}
}

func TestExtract_TIFFLittleEndian(t *testing.T) {
	info, err := Extract(buildTIFF(4000, 3000, 4, 8, 300, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Format != "tiff" {
		t.Errorf("expected tiff, got %s", info.Format)
	}
	if info.WidthPixels != 4000 || info.HeightPixels != 3000 {
		t.Errorf("expected 4000x3000, got %dx%d", info.WidthPixels, info.HeightPixels)
	}
	if info.Channels != 4 {
		t.Errorf("expected 4 samples per pixel, got %d", info.Channels)
	}
	if info.DPIHorizontal != 300 || info.DPIVertical != 300 {
		t.Errorf("expected 300 DPI, got %f x %f", info.DPIHorizontal, info.DPIVertical)
	}
}

func TestExtract_TIFFCentimetreResolution(t *testing.T) {
	info, err := Extract(buildTIFF(1000, 1000, 3, 8, 100, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(info.DPIHorizontal, 254) {
		t.Errorf("expected 100/cm converted to 254 DPI, got %f", info.DPIHorizontal)
	}
}

func TestExtract_UnsupportedPayload(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("plain text, definitely not an image"),
		[]byte("%PDF-1.7 ..."),
		{0x89, 'P', 'N', 'G'}, // truncated signature
	}
	for _, data := range cases {
		if _, err := Extract(data); !errors.Is(err, ErrUnreadableImage) {
			t.Errorf("expected ErrUnreadableImage for %q, got %v", data, err)
		}
	}
}

func TestExtract_PNGMissingIHDR(t *testing.T) {
	// Valid signature, then straight to IEND.
	data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A,
		0, 0, 0, 0, 'I', 'E', 'N', 'D', 0, 0, 0, 0}
	if _, err := Extract(data); !errors.Is(err, ErrUnreadableImage) {
		t.Errorf("expected ErrUnreadableImage without IHDR, got %v", err)
	}
}
