package artifact

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/domain/similarity"
)

const (
	matrixMagic   = "MSIM"
	matrixVersion = 1
	headerSize    = 12

	// MaxDimension bounds n so that n*n never overflows a 32-bit int.
	MaxDimension = 1 << 15

	// rows are appended as they are read, so a header that lies about n
	// costs at most this many preallocated elements.
	initialCap = 1 << 20
)

// ReadMatrix loads a similarity matrix. Paths ending in .json hold an array
// of rows; anything else is the binary MSIM format.
func ReadMatrix(path string) (*similarity.Matrix, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("open matrix %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var m *similarity.Matrix
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		m, err = DecodeMatrixJSON(f)
	} else {
		var info os.FileInfo
		if info, err = f.Stat(); err != nil {
			return nil, fmt.Errorf("stat matrix %s: %w", path, err)
		}
		m, err = decodeMatrix(bufio.NewReader(f), info.Size())
	}
	if err != nil {
		return nil, fmt.Errorf("matrix %s: %w", path, err)
	}
	return m, nil
}

// DecodeMatrix reads the binary MSIM format:
// magic(4) version(1) width(1) reserved(2) n(uint32 LE) then n*n LE values.
func DecodeMatrix(r io.Reader) (*similarity.Matrix, error) {
	return decodeMatrix(r, -1)
}

// decodeMatrix checks the header against size when it is known (>= 0).
func decodeMatrix(r io.Reader, size int64) (*similarity.Matrix, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrInvalidArtifact, err)
	}
	if string(hdr[:4]) != matrixMagic {
		return nil, fmt.Errorf("%w: bad magic %q", domain.ErrInvalidArtifact, hdr[:4])
	}
	if hdr[4] != matrixVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrInvalidArtifact, hdr[4])
	}
	width := int(hdr[5])
	if width != 4 && width != 8 {
		return nil, fmt.Errorf("%w: unsupported element width %d", domain.ErrInvalidArtifact, width)
	}
	dim := binary.LittleEndian.Uint32(hdr[8:12])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero dimension", domain.ErrInvalidArtifact)
	}
	if dim > MaxDimension {
		return nil, fmt.Errorf("%w: dimension %d exceeds %d", domain.ErrInvalidArtifact, dim, MaxDimension)
	}
	n := int(dim)

	count := n * n
	if want := int64(headerSize) + int64(width)*int64(count); size >= 0 && size != want {
		return nil, fmt.Errorf("%w: file is %d bytes, %dx%d matrix of width %d needs %d",
			domain.ErrInvalidArtifact, size, n, n, width, want)
	}

	data := make([]float32, 0, min(count, initialCap))
	buf := make([]byte, width*n)
	for row := range n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: row %d truncated: %w", domain.ErrInvalidArtifact, row, err)
		}
		for j := range n {
			if width == 4 {
				data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:])))
			} else {
				data = append(data, float32(math.Float64frombits(binary.LittleEndian.Uint64(buf[j*8:]))))
			}
		}
	}

	var extra [1]byte
	if k, _ := r.Read(extra[:]); k > 0 {
		return nil, fmt.Errorf("%w: trailing bytes after %dx%d matrix", domain.ErrInvalidArtifact, n, n)
	}

	m, err := similarity.New(n, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArtifact, err)
	}
	return m, nil
}

// DecodeMatrixJSON reads a JSON array of equally sized rows.
func DecodeMatrixJSON(r io.Reader) (*similarity.Matrix, error) {
	var rows [][]float32
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode rows: %w", domain.ErrInvalidArtifact, err)
	}
	m, err := similarity.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArtifact, err)
	}
	return m, nil
}

// WriteMatrix encodes m in the binary MSIM format with float32 elements.
func WriteMatrix(w io.Writer, m *similarity.Matrix) error {
	n := m.Size()
	var hdr [headerSize]byte
	copy(hdr[:4], matrixMagic)
	hdr[4] = matrixVersion
	hdr[5] = 4
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(n)) //nolint:gosec // n fits: built from an in-memory slice

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	buf := make([]byte, 4*n)
	for i := range n {
		for j, v := range m.Row(i) {
			binary.LittleEndian.PutUint32(buf[j*4:], math.Float32bits(v))
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush matrix: %w", err)
	}
	return nil
}
