package object

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression selects how object envelopes are encoded on disk.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// zstdMagic is the frame header every zstd stream starts with. Raw
// envelopes always start with an ASCII type name, so the two never collide.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ParseCompression validates a configured codec name. The empty string
// selects CompressionNone.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd:
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q (want %q or %q)", s, CompressionNone, CompressionZstd)
	}
}

func encodeEnvelope(c Compression, raw []byte) ([]byte, error) {
	if c != CompressionZstd {
		return raw, nil
	}
	return compressZstd(raw)
}

func decodeEnvelope(stored []byte) ([]byte, error) {
	if !bytes.HasPrefix(stored, zstdMagic) {
		return stored, nil
	}
	return decompressZstd(stored)
}

// compressZstd compresses data using zstd.
func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// decompressZstd decompresses zstd-compressed data.
func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
