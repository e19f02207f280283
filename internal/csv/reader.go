package csv

// reader.go handles the file-read boundary: the only place where bytes become
// text. The whole body is read before tokenizing; there is no incremental parse.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrFileTooLarge is returned by ReadText when the body exceeds the limit.
var ErrFileTooLarge = errors.New("file too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader drops a leading UTF-8 byte order mark from the wrapped
// reader. Windows tools add one to CSV exports and it would otherwise end up
// glued to the first header name.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// ReadText reads an entire file body as text. A leading BOM is skipped and
// invalid UTF-8 sequences are replaced with '?'. When maxBytes is positive
// and the body is longer, ErrFileTooLarge is returned.
func ReadText(r io.Reader, maxBytes int64) (string, error) {
	src := io.Reader(NewBOMSkippingReader(r))
	if maxBytes > 0 {
		// One extra byte tells "exactly at the limit" from "over it".
		src = io.LimitReader(src, maxBytes+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}

	return strings.ToValidUTF8(string(data), "?"), nil
}
