package systolic

import "fmt"

// Tensor3 is a dense T×R×C integer tensor: T batched matrices, each R rows
// by C columns. It is the wire format for west/north operands, the
// reassembled east/south outputs used by IsDone, and the final Results.
type Tensor3 struct {
	t, r, c int
	data    []int64
}

// NewTensor3 allocates a zero-filled T×R×C tensor.
func NewTensor3(t, r, c int) Tensor3 {
	return Tensor3{t: t, r: r, c: c, data: make([]int64, t*r*c)}
}

// TensorFromRows builds a Tensor3 from nested Go slices, row-major per
// matrix. Every thread must supply exactly r rows of exactly c columns.
func TensorFromRows(rows [][][]int64) (Tensor3, error) {
	t := len(rows)
	if t == 0 {
		return Tensor3{}, fmt.Errorf("systolic: TensorFromRows: empty thread batch")
	}
	r := len(rows[0])
	c := 0
	if r > 0 {
		c = len(rows[0][0])
	}

	out := NewTensor3(t, r, c)
	for thread, mat := range rows {
		if len(mat) != r {
			return Tensor3{}, fmt.Errorf("systolic: TensorFromRows: thread %d has %d rows, want %d", thread, len(mat), r)
		}
		for i, row := range mat {
			if len(row) != c {
				return Tensor3{}, fmt.Errorf("systolic: TensorFromRows: thread %d row %d has %d cols, want %d", thread, i, len(row), c)
			}
			for j, v := range row {
				out.Set(thread, i, j, v)
			}
		}
	}
	return out, nil
}

// Dims returns (T, R, C).
func (m Tensor3) Dims() (int, int, int) {
	return m.t, m.r, m.c
}

func (m Tensor3) index(thread, i, j int) int {
	return (thread*m.r+i)*m.c + j
}

// Get returns the value at (thread, i, j).
func (m Tensor3) Get(thread, i, j int) int64 {
	return m.data[m.index(thread, i, j)]
}

// Set stores v at (thread, i, j).
func (m Tensor3) Set(thread, i, j int, v int64) {
	m.data[m.index(thread, i, j)] = v
}

// Row returns a copy of row i of thread's matrix.
func (m Tensor3) Row(thread, i int) []int64 {
	out := make([]int64, m.c)
	copy(out, m.data[m.index(thread, i, 0):m.index(thread, i, 0)+m.c])
	return out
}

// Column returns a copy of column j of thread's matrix.
func (m Tensor3) Column(thread, j int) []int64 {
	out := make([]int64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.Get(thread, i, j)
	}
	return out
}

// Equal reports whether m and other have identical shape and contents.
func (m Tensor3) Equal(other Tensor3) bool {
	if m.t != other.t || m.r != other.r || m.c != other.c {
		return false
	}
	for i := range m.data {
		if m.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// MatMul computes the batched algebraic product west[t] @ north[t] for every
// thread, used by tests to check Results against ground truth (Testable
// Property 5). west is T×N×K, north is T×K×N, the result is T×N×N.
func MatMul(west, north Tensor3) Tensor3 {
	t, n, k := west.Dims()
	_, k2, n2 := north.Dims()
	if k != k2 || n != n2 {
		panic(fmt.Sprintf("systolic: MatMul: incompatible shapes %v x %v", []int{t, n, k}, []int{t, k2, n2}))
	}

	out := NewTensor3(t, n, n)
	for thread := 0; thread < t; thread++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				var acc int64
				for p := 0; p < k; p++ {
					acc += west.Get(thread, i, p) * north.Get(thread, p, j)
				}
				out.Set(thread, i, j, acc)
			}
		}
	}
	return out
}
