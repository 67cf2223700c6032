package rpmmd

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

var gzipMagic = []byte{0x1f, 0x8b}
var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// decodePayload turns a fetched metadata payload into plain bytes. Gzip is
// detected by suffix OR magic (some mirrors serve compressed bodies under
// plain names), bzip2 by suffix with a fall-back to the raw payload when
// decompression fails (some servers mislabel already-decompressed files),
// xz by suffix or magic.
func decodePayload(location string, raw []byte) ([]byte, error) {
	switch {
	case strings.HasSuffix(location, ".gz") || bytes.HasPrefix(raw, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip reader for %s: %w", location, err)
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", location, err)
		}
		return data, nil

	case strings.HasSuffix(location, ".bz2"):
		data, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return raw, nil
		}
		return data, nil

	case strings.HasSuffix(location, ".xz") || bytes.HasPrefix(raw, xzMagic):
		xr, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("xz reader for %s: %w", location, err)
		}
		data, err := io.ReadAll(xr)
		if err != nil {
			return nil, fmt.Errorf("unxz %s: %w", location, err)
		}
		return data, nil

	default:
		return raw, nil
	}
}
