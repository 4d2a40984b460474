package flatfile

// content.go resolves the uploaded file payload into text once, at the
// boundary, before anything reaches the parser.
//
// Byte payloads go through:
//  1. decompression, detected by magic bytes (gzip, bzip2, xz)
//  2. UTF-16 decoding when a UTF-16 byte-order mark is present
//  3. replacement of invalid UTF-8 sequences with U+FFFD
//
// A UTF-8 byte-order mark is left in place; the parser strips it.

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding/unicode"
)

// MaxDecodedSize bounds the size of decompressed content.
var MaxDecodedSize int64 = 512 << 20

type contentKind int

const (
	contentAbsent contentKind = iota
	contentText
	contentBytes
)

// Content is the file payload of a transfer: raw bytes, text, or absent.
// The zero value is absent.
type Content struct {
	kind contentKind
	text string
	data []byte
}

// TextContent wraps already-decoded text.
func TextContent(s string) Content {
	return Content{kind: contentText, text: s}
}

// BytesContent wraps raw file bytes. A nil slice is treated as absent.
func BytesContent(b []byte) Content {
	if b == nil {
		return Content{}
	}
	return Content{kind: contentBytes, data: b}
}

// NoContent returns the absent variant.
func NoContent() Content { return Content{} }

// Present reports whether any payload was supplied.
func (c Content) Present() bool { return c.kind != contentAbsent }

// Size returns the payload length in bytes.
func (c Content) Size() int {
	switch c.kind {
	case contentText:
		return len(c.text)
	case contentBytes:
		return len(c.data)
	}
	return 0
}

// Normalize resolves the payload into text.
func (c Content) Normalize() (string, error) {
	switch c.kind {
	case contentText:
		return c.text, nil
	case contentBytes:
		return decodeBytes(c.data)
	default:
		return "", newError(MissingInput, "no file content supplied", nil)
	}
}

// Compression identifies a compressed payload.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression inspects the leading bytes of data.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, bzip2Magic):
		return CompressionBzip2
	default:
		return CompressionNone
	}
}

// Decompress returns a reader over the decompressed form of data.
func Decompress(data []byte) (io.Reader, Compression, error) {
	comp := DetectCompression(data)
	src := bytes.NewReader(data)

	switch comp {
	case CompressionGzip:
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, comp, fmt.Errorf("gzip: %w", err)
		}
		return zr, comp, nil
	case CompressionBzip2:
		return bzip2.NewReader(src), comp, nil
	case CompressionXZ:
		xr, err := xz.NewReader(src)
		if err != nil {
			return nil, comp, fmt.Errorf("xz: %w", err)
		}
		return xr, comp, nil
	default:
		return src, comp, nil
	}
}

func decodeBytes(data []byte) (string, error) {
	r, comp, err := Decompress(data)
	if err != nil {
		return "", newError(IOFailure, "read compressed content", err)
	}
	if comp != CompressionNone {
		data, err = io.ReadAll(io.LimitReader(r, MaxDecodedSize+1))
		if err != nil {
			return "", newError(IOFailure, "decompress "+comp.String()+" content", err)
		}
		if int64(len(data)) > MaxDecodedSize {
			return "", newError(IOFailure, fmt.Sprintf("decompressed content exceeds %d bytes", MaxDecodedSize), nil)
		}
	}

	if endian, ok := utf16Order(data); ok {
		out, err := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", newError(IOFailure, "decode UTF-16 content", err)
		}
		data = out
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

func utf16Order(data []byte) (unicode.Endianness, bool) {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xfe}):
		return unicode.LittleEndian, true
	case bytes.HasPrefix(data, []byte{0xfe, 0xff}):
		return unicode.BigEndian, true
	}
	return unicode.BigEndian, false
}
