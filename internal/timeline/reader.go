package timeline

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/bamsammich/bodyfile/internal/bodyfile"
)

// ErrMalformed is wrapped by every error caused by an unparseable line.
var ErrMalformed = errors.New("malformed body file line")

const fieldCount = 11

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Parse decodes one body file line. A trailing newline is optional. When the
// line has more than eleven fields the surplus separators are taken to be
// part of the name, the only free-text column.
func Parse(text string) (bodyfile.Line, error) {
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	tokens := strings.Split(text, string(bodyfile.Separator))
	n := len(tokens)
	if n < fieldCount {
		return bodyfile.Line{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformed, n, fieldCount)
	}

	var nums [7]int64
	names := [7]string{"uid", "gid", "size", "atime", "mtime", "ctime", "crtime"}
	for i, tok := range tokens[n-7:] {
		v, err := parseNumber(tok)
		if err != nil {
			return bodyfile.Line{}, fmt.Errorf("%w: %s %q", ErrMalformed, names[i], tok)
		}
		nums[i] = v
	}

	return bodyfile.FromValues(
		tokens[0],
		strings.Join(tokens[1:n-9], string(bodyfile.Separator)),
		tokens[n-9],
		tokens[n-8],
		nums[0], nums[1], nums[2],
		nums[3], nums[4], nums[5], nums[6],
	), nil
}

// parseNumber treats an empty field as zero, as mactime does.
func parseNumber(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// Reader reads body file lines, skipping blank lines and "#" comments.
// zstd-compressed input is detected and decompressed transparently.
type Reader struct {
	scanner *bufio.Scanner
	dec     *zstd.Decoder
	lineNo  int
}

// NewReader wraps r.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	var dec *zstd.Decoder
	if magic, err := br.Peek(len(zstdMagic)); err == nil && bytes.Equal(magic, zstdMagic) {
		dec, err = zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		src = dec
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner, dec: dec}, nil
}

// Next returns the next line, or io.EOF when the input is exhausted.
func (r *Reader) Next() (bodyfile.Line, error) {
	for r.scanner.Scan() {
		r.lineNo++
		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		line, err := Parse(text)
		if err != nil {
			return bodyfile.Line{}, fmt.Errorf("line %d: %w", r.lineNo, err)
		}
		return line, nil
	}
	if err := r.scanner.Err(); err != nil {
		return bodyfile.Line{}, fmt.Errorf("read body file: %w", err)
	}
	return bodyfile.Line{}, io.EOF
}

// Close releases the decompressor, if any. It does not close the source.
func (r *Reader) Close() {
	if r.dec != nil {
		r.dec.Close()
	}
}

// ReadAll reads every line from r.
func ReadAll(r io.Reader) ([]bodyfile.Line, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	var lines []bodyfile.Line
	for {
		line, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
}
