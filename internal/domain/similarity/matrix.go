package similarity

import "fmt"

// Matrix is a dense, row-major, square similarity matrix.
// It is immutable after construction and safe for concurrent reads.
type Matrix struct {
	n    int
	data []float32
}

// New wraps row-major data of an n×n matrix. data is retained, not copied.
func New(n int, data []float32) (*Matrix, error) {
	if n <= 0 {
		return nil, fmt.Errorf("matrix dimension must be positive, got %d", n)
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("matrix data has %d values, want %d (%dx%d)", len(data), n*n, n, n)
	}
	return &Matrix{n: n, data: data}, nil
}

// FromRows builds a matrix from rows, which must form a square.
func FromRows(rows [][]float32) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("matrix has no rows")
	}
	data := make([]float32, 0, n*n)
	for i, r := range rows {
		if len(r) != n {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), n)
		}
		data = append(data, r...)
	}
	return &Matrix{n: n, data: data}, nil
}

// Size returns the matrix dimension.
func (m *Matrix) Size() int { return m.n }

// Row returns row i. The slice aliases the matrix and must not be modified.
func (m *Matrix) Row(i int) []float32 {
	start := i * m.n
	return m.data[start : start+m.n : start+m.n]
}

// At returns entry (i, j).
func (m *Matrix) At(i, j int) float32 { return m.data[i*m.n+j] }

// Data returns the row-major backing slice. It must not be modified.
func (m *Matrix) Data() []float32 { return m.data }
