// Package encoding reads log files of unknown text encoding into strings.
// It tries an ordered preference list of encodings with replacement on
// undecodable bytes, so decoding itself can never fail; only opening the
// file can.
package encoding

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	vio "github.com/user/vrclog/internal/io"
)

// Defaults match the VRChat log corpus: UTF-8 with occasional BOM, plus
// Shift-JIS variants from older clients and Windows tools.
const (
	DefaultChunkSize     = 1 << 20 // 1 MiB
	DefaultLargeFileSize = 5 << 20 // chunked reads with progress above this
)

const replacementChar = "�"

// DefaultEncodings is the default preference order
func DefaultEncodings() []string {
	return []string{"utf-8", "utf-8-sig", "cp932", "shift-jis"}
}

// ProgressFunc reports chunked read progress as (bytesRead, totalBytes)
type ProgressFunc func(read, total int64)

// ReadError reports a file that could not be opened. Decode problems never
// produce one; undecodable bytes are replaced instead.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Reader decodes files using an ordered encoding preference list
type Reader struct {
	names     []string
	decoders  []encoding.Encoding
	chunkSize int64
	largeSize int64
}

// NewReader builds a reader for the given encoding names. Unknown names
// are rejected so config typos surface at startup. Zero thresholds use the
// defaults.
func NewReader(names []string, largeSize, chunkSize int64) (*Reader, error) {
	if len(names) == 0 {
		names = DefaultEncodings()
	}
	if largeSize <= 0 {
		largeSize = DefaultLargeFileSize
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	decoders := make([]encoding.Encoding, len(names))
	for i, name := range names {
		enc, err := encodingByName(name)
		if err != nil {
			return nil, err
		}
		decoders[i] = enc
	}

	return &Reader{
		names:     names,
		decoders:  decoders,
		chunkSize: chunkSize,
		largeSize: largeSize,
	}, nil
}

// encodingByName maps a preference-list name to its decoder
func encodingByName(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "utf-8-sig", "utf-8-bom":
		return unicode.UTF8BOM, nil
	case "cp932", "windows-31j", "shift-jis", "shift_jis", "sjis":
		return japanese.ShiftJIS, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
}

// Read loads and decodes the whole file. Files above the large-file
// threshold are read in fixed-size chunks with one progress call per chunk
// when onProgress is non-nil; chunking never changes the decoded result.
// The returned byte size is the file size consumed and serves as the
// checkpoint for incremental tail reads.
func (r *Reader) Read(path string, onProgress ProgressFunc) (string, int64, error) {
	f, err := vio.OpenMapped(path)
	if err != nil {
		return "", 0, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	size := f.Size()
	raw, err := r.readRaw(f, size, onProgress)
	if err != nil {
		return "", 0, &ReadError{Path: path, Err: err}
	}

	return r.decode(raw), size, nil
}

// ReadFrom decodes only the bytes appended since a previous checkpoint.
// It returns the delta text and the new checkpoint. A file no larger than
// the checkpoint yields an empty delta.
func (r *Reader) ReadFrom(path string, offset int64) (string, int64, error) {
	f, err := vio.OpenMapped(path)
	if err != nil {
		return "", offset, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	size := f.Size()
	if size <= offset {
		return "", size, nil
	}

	raw, err := f.ReadRange(offset, size)
	if err != nil {
		return "", offset, &ReadError{Path: path, Err: err}
	}

	return r.decode(raw), size, nil
}

func (r *Reader) readRaw(f *vio.MappedFile, size int64, onProgress ProgressFunc) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}

	if size <= r.largeSize || onProgress == nil {
		return f.ReadRange(0, size)
	}

	raw := make([]byte, 0, size)
	buf := make([]byte, r.chunkSize)
	for pos := int64(0); pos < size; {
		n := r.chunkSize
		if pos+n > size {
			n = size - pos
		}
		read, err := f.ReadAt(buf[:n], pos)
		if err != nil {
			return nil, err
		}
		raw = append(raw, buf[:read]...)
		pos += int64(read)
		onProgress(pos, size)
	}
	return raw, nil
}

// decode tries each preferred encoding in order. x/text decoders replace
// undecodable bytes with U+FFFD instead of failing, so the first entry
// normally wins; the loop order is the user's preference contract. The
// final fallback decodes as UTF-8 with replacement and cannot fail.
func (r *Reader) decode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	for _, enc := range r.decoders {
		out, err := enc.NewDecoder().Bytes(raw)
		if err == nil {
			return string(out)
		}
	}

	return strings.ToValidUTF8(string(raw), replacementChar)
}
