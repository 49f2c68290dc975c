package imagemeta

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// ErrUnreadableImage is returned when the payload is corrupt or not one of
// the supported raster formats.
var ErrUnreadableImage = errors.New("unreadable image data")

// Info is the technical metadata extracted from a raster file header.
type Info struct {
	Format        string
	WidthPixels   int
	HeightPixels  int
	DPIHorizontal float64
	DPIVertical   float64
	Channels      int
	BitDepth      int
}

const defaultDPI = 72

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// Extract reads image metadata from raw file bytes. PNG, JPEG and TIFF
// headers are understood; anything else fails with ErrUnreadableImage.
// Density defaults to 72 DPI when the header carries none.
func Extract(data []byte) (*Info, error) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return extractPNG(data)
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return extractJPEG(data)
	case bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")):
		return extractTIFF(data)
	default:
		return nil, ErrUnreadableImage
	}
}

// ============================================
// PNG
// ============================================

func extractPNG(data []byte) (*Info, error) {
	info := &Info{Format: "png", DPIHorizontal: defaultDPI, DPIVertical: defaultDPI}

	// Chunks start right after the 8-byte signature. IHDR must come first.
	pos := len(pngSignature)
	sawIHDR := false
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		chunkType := string(data[pos+4 : pos+8])
		body := pos + 8
		if body+length > len(data) {
			break
		}

		switch chunkType {
		case "IHDR":
			if length < 13 {
				return nil, ErrUnreadableImage
			}
			info.WidthPixels = int(binary.BigEndian.Uint32(data[body : body+4]))
			info.HeightPixels = int(binary.BigEndian.Uint32(data[body+4 : body+8]))
			info.BitDepth = int(data[body+8])
			info.Channels = pngChannels(data[body+9])
			sawIHDR = true
		case "pHYs":
			if length >= 9 && data[body+8] == 1 { // unit: pixels per metre
				ppuX := binary.BigEndian.Uint32(data[body : body+4])
				ppuY := binary.BigEndian.Uint32(data[body+4 : body+8])
				info.DPIHorizontal = float64(ppuX) * 0.0254
				info.DPIVertical = float64(ppuY) * 0.0254
			}
		case "IDAT", "IEND":
			// Metadata chunks precede pixel data; stop scanning here.
			if !sawIHDR {
				return nil, ErrUnreadableImage
			}
			return info, nil
		}

		pos = body + length + 4 // skip CRC
	}

	if !sawIHDR {
		return nil, ErrUnreadableImage
	}
	return info, nil
}

func pngChannels(colorType byte) int {
	switch colorType {
	case 0: // grayscale
		return 1
	case 2: // truecolor
		return 3
	case 3: // palette, expands to RGB
		return 3
	case 4: // grayscale + alpha
		return 2
	case 6: // truecolor + alpha
		return 4
	default:
		return 0
	}
}

// ============================================
// JPEG
// ============================================

func extractJPEG(data []byte) (*Info, error) {
	info := &Info{Format: "jpeg", DPIHorizontal: defaultDPI, DPIVertical: defaultDPI}

	pos := 2
	sawFrame := false
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil, ErrUnreadableImage
		}
		marker := data[pos+1]
		if marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD7) { // standalone
			pos += 2
			continue
		}
		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if segLen < 2 || pos+2+segLen > len(data) {
			return nil, ErrUnreadableImage
		}
		seg := data[pos+4 : pos+2+segLen]

		switch {
		case marker == 0xE0 && len(seg) >= 12 && bytes.HasPrefix(seg, []byte("JFIF\x00")):
			units := seg[7]
			xd := float64(binary.BigEndian.Uint16(seg[8:10]))
			yd := float64(binary.BigEndian.Uint16(seg[10:12]))
			switch units {
			case 1: // dots per inch
				info.DPIHorizontal, info.DPIVertical = xd, yd
			case 2: // dots per cm
				info.DPIHorizontal, info.DPIVertical = xd*2.54, yd*2.54
			}
		case isSOF(marker):
			if len(seg) < 6 {
				return nil, ErrUnreadableImage
			}
			info.BitDepth = int(seg[0])
			info.HeightPixels = int(binary.BigEndian.Uint16(seg[1:3]))
			info.WidthPixels = int(binary.BigEndian.Uint16(seg[3:5]))
			info.Channels = int(seg[5])
			sawFrame = true
		case marker == 0xDA: // start of scan, headers are done
			if !sawFrame {
				return nil, ErrUnreadableImage
			}
			return info, nil
		}

		pos += 2 + segLen
	}

	if !sawFrame {
		return nil, ErrUnreadableImage
	}
	return info, nil
}

func isSOF(marker byte) bool {
	return marker >= 0xC0 && marker <= 0xCF &&
		marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}

// ============================================
// TIFF
// ============================================

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagSamplesPerPixel = 277
	tagXResolution     = 282
	tagYResolution     = 283
	tagResolutionUnit  = 296
)

func extractTIFF(data []byte) (*Info, error) {
	var order binary.ByteOrder = binary.LittleEndian
	if data[0] == 'M' {
		order = binary.BigEndian
	}
	if len(data) < 8 {
		return nil, ErrUnreadableImage
	}

	info := &Info{Format: "tiff", Channels: 1, BitDepth: 1}

	ifdOffset := int(order.Uint32(data[4:8]))
	if ifdOffset+2 > len(data) {
		return nil, ErrUnreadableImage
	}
	count := int(order.Uint16(data[ifdOffset : ifdOffset+2]))

	var xres, yres float64
	resUnit := 2 // inch by default
	sawDims := false

	for i := 0; i < count; i++ {
		entry := ifdOffset + 2 + i*12
		if entry+12 > len(data) {
			return nil, ErrUnreadableImage
		}
		tag := order.Uint16(data[entry : entry+2])
		fieldType := order.Uint16(data[entry+2 : entry+4])
		value := tiffScalar(data, entry+8, fieldType, order)

		switch tag {
		case tagImageWidth:
			info.WidthPixels = value
			sawDims = true
		case tagImageLength:
			info.HeightPixels = value
		case tagBitsPerSample:
			n := int(order.Uint32(data[entry+4 : entry+8]))
			if n == 1 {
				info.BitDepth = value
			} else if value+2 <= len(data) {
				// Multi-sample: value field is an offset to the array.
				info.BitDepth = int(order.Uint16(data[value : value+2]))
			}
		case tagSamplesPerPixel:
			info.Channels = value
		case tagXResolution:
			xres = tiffRational(data, value, order)
		case tagYResolution:
			yres = tiffRational(data, value, order)
		case tagResolutionUnit:
			resUnit = value
		}
	}

	if !sawDims {
		return nil, ErrUnreadableImage
	}

	info.DPIHorizontal, info.DPIVertical = defaultDPI, defaultDPI
	if xres > 0 {
		info.DPIHorizontal = resolutionToDPI(xres, resUnit)
	}
	if yres > 0 {
		info.DPIVertical = resolutionToDPI(yres, resUnit)
	}
	return info, nil
}

func tiffScalar(data []byte, pos int, fieldType uint16, order binary.ByteOrder) int {
	if pos+4 > len(data) {
		return 0
	}
	switch fieldType {
	case 3: // SHORT
		return int(order.Uint16(data[pos : pos+2]))
	default: // LONG, or an offset for out-of-line values
		return int(order.Uint32(data[pos : pos+4]))
	}
}

func tiffRational(data []byte, offset int, order binary.ByteOrder) float64 {
	if offset+8 > len(data) {
		return 0
	}
	num := order.Uint32(data[offset : offset+4])
	den := order.Uint32(data[offset+4 : offset+8])
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func resolutionToDPI(res float64, unit int) float64 {
	if unit == 3 { // centimetres
		return res * 2.54
	}
	return res
}
