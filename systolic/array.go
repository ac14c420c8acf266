package systolic

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/mtsa/internal/simlog"
)

// Array is a square N×N mesh of PEs performing a batched dense matrix
// multiply: west operands enter skewed along the west edge, north operands
// enter skewed along the north edge, and both drain through to the east and
// south edges while each PE accumulates its thread's dot product in place.
type Array struct {
	threadCount int
	size        int
	bufferDepth int
	limited     bool

	pes        [][]*PE
	horizontal [][]Buffer // horizontal[i][j] is east of PE(i,j); column size-1 is an OutputBuffer
	vertical   [][]Buffer // vertical[i][j] is south of PE(i,j); row size-1 is an OutputBuffer

	westShape, northShape Tensor3

	clock int

	logger *slog.Logger
}

// splitLoggers fans a hierarchical simlog.Logger out into the three
// category loggers array.go's constructors need, collapsing a nil log (no
// logger configured) to three nil *slog.Loggers rather than panicking.
func splitLoggers(log *simlog.Logger) (array, pe, buffer *slog.Logger) {
	if log == nil {
		return nil, nil, nil
	}
	return log.SystolicArray, log.PE, log.Buffer
}

// NewArray validates west/north against each other and against the
// requested mesh size and buffer depth, then builds the PE grid and its
// buffer wiring. A depth-limited array (limited true) must use a
// bufferDepth of at least 2: 0 would admit nothing and 1 cannot hold both a
// PE's pass-through bubble and a live operand simultaneously.
//
// log is the hierarchical diagnostic logger (see package simlog); a nil
// log is equivalent to simlog.Discard() and disables all logging.
func NewArray(size, bufferDepth int, limited bool, west, north Tensor3, log *simlog.Logger) (*Array, error) {
	wt, wr, wk := west.Dims()
	nt, nk, nc := north.Dims()

	if wt != nt {
		return nil, newConfigError("west thread count %d does not match north thread count %d", wt, nt)
	}
	if wr != size || nc != size {
		return nil, newConfigError("west rows %d / north cols %d do not match array size %d", wr, nc, size)
	}
	if wk != nk {
		return nil, newConfigError("west cols %d does not match north rows %d", wk, nk)
	}
	if limited && bufferDepth < 2 {
		return nil, newConfigError("limited buffer depth %d is invalid: must be >= 2", bufferDepth)
	}

	threadCount := wt
	depth := bufferDepth
	if !limited {
		depth = -1
	}

	arrayLog, peLog, bufLog := splitLoggers(log)

	a := &Array{
		threadCount: threadCount,
		size:        size,
		bufferDepth: bufferDepth,
		limited:     limited,
		westShape:   west,
		northShape:  north,
		clock:       1,
		logger:      arrayLog,
	}

	a.horizontal = make([][]Buffer, size)
	a.vertical = make([][]Buffer, size)
	for i := 0; i < size; i++ {
		a.horizontal[i] = make([]Buffer, size)
		a.vertical[i] = make([]Buffer, size)
		for j := 0; j < size; j++ {
			if j == size-1 {
				a.horizontal[i][j] = NewOutputBuffer(threadCount, i, j)
			} else {
				a.horizontal[i][j] = NewInternalBuffer(threadCount, depth, i, j, bufLog)
			}
			if i == size-1 {
				a.vertical[i][j] = NewOutputBuffer(threadCount, i, j)
			} else {
				a.vertical[i][j] = NewInternalBuffer(threadCount, depth, i, j, bufLog)
			}
		}
	}

	westFIFOs := PackWest(west, bufLog)
	northFIFOs := PackNorth(north, bufLog)

	a.pes = make([][]*PE, size)
	for i := 0; i < size; i++ {
		a.pes[i] = make([]*PE, size)
		for j := 0; j < size; j++ {
			var westBuf, northBuf Buffer
			if j == 0 {
				westBuf = westFIFOs[i]
			} else {
				westBuf = a.horizontal[i][j-1]
			}
			if i == 0 {
				northBuf = northFIFOs[j]
			} else {
				northBuf = a.vertical[i-1][j]
			}
			eastBuf := a.horizontal[i][j]
			southBuf := a.vertical[i][j]

			a.pes[i][j] = NewPE(i, j, threadCount, limited, westBuf, northBuf, eastBuf, southBuf, peLog)
		}
	}

	if arrayLog != nil {
		arrayLog.Debug("array initialized", "size", size, "threadCount", threadCount, "limited", limited, "bufferDepth", bufferDepth)
	}

	return a, nil
}

// Tick advances the array by one cycle: every PE steps once, in row-major
// order, with writes immediately visible to PEs processed later in the same
// tick — deliberately not double-buffered, since the specification's timing
// depends on a PE seeing the operand its west/north neighbor just pushed
// this same cycle. Afterwards every internal buffer samples its current
// occupancy into its load history.
func (a *Array) Tick() {
	a.clock++

	for i := 0; i < a.size; i++ {
		for j := 0; j < a.size; j++ {
			a.pes[i][j].Step()
		}
	}

	for i := 0; i < a.size; i++ {
		for j := 0; j < a.size; j++ {
			if hb, ok := a.horizontal[i][j].(*InternalBuffer); ok {
				hb.SampleLoad()
			}
			if vb, ok := a.vertical[i][j].(*InternalBuffer); ok {
				vb.SampleLoad()
			}
		}
	}

	if a.logger != nil {
		a.logger.Debug("tick complete", "clock", a.clock)
	}
}

// Clock returns the raw clock counter: 1 at construction plus one per Tick
// run so far, including the pipeline fill/drain cycles Summarize later
// subtracts.
func (a *Array) Clock() int {
	return a.clock
}

// outputColumn collects the size OutputBuffers forming the east edge.
func (a *Array) outputColumn() []*OutputBuffer {
	out := make([]*OutputBuffer, a.size)
	for i := 0; i < a.size; i++ {
		out[i] = a.horizontal[i][a.size-1].(*OutputBuffer)
	}
	return out
}

// outputRow collects the size OutputBuffers forming the south edge.
func (a *Array) outputRow() []*OutputBuffer {
	out := make([]*OutputBuffer, a.size)
	for j := 0; j < a.size; j++ {
		out[j] = a.vertical[a.size-1][j].(*OutputBuffer)
	}
	return out
}

// IsDone reports whether every operand has fully drained through the mesh:
// the east edge's accumulated pass-through equals the original west operand
// tensor, and the south edge's equals the original north operand tensor.
// This checks pipeline completion, not arithmetic correctness — the
// computed dot products live in each PE's own accumulator, inspected via
// Summarize.
func (a *Array) IsDone() bool {
	_, _, wk := a.westShape.Dims()
	eastGot := UnpackEast(a.outputColumn(), a.threadCount, wk)
	if !eastGot.Equal(a.westShape) {
		return false
	}

	_, nk, _ := a.northShape.Dims()
	southGot := UnpackSouth(a.outputRow(), a.threadCount, nk)
	return southGot.Equal(a.northShape)
}

// LoadHistory returns the recorded occupancy history for the internal
// buffer east of PE(i,j) when horizontal is true, or south of PE(i,j) when
// false. It panics if that position holds an OutputBuffer, which carries no
// load history.
func (a *Array) LoadHistory(i, j int, horizontal bool) [][]int {
	var buf Buffer
	if horizontal {
		buf = a.horizontal[i][j]
	} else {
		buf = a.vertical[i][j]
	}
	ib, ok := buf.(*InternalBuffer)
	if !ok {
		panic(newInvariantError("LoadHistory requested on an output buffer at <%d,%d>", i, j))
	}
	return ib.LoadHistory()
}

// Summary is the post-run report produced by Summarize: the steady-state
// clock count, each thread's computed result matrix, each PE's MAC
// utilization, and every internal buffer's occupancy history.
type Summary struct {
	Clock            int
	Results          Tensor3 // threadCount × size × size
	UtilizationPerPE [][]float64

	// LoadHistories holds every internal buffer's recorded occupancy
	// history, keyed "i,j,H" for the buffer east of PE(i,j) and "i,j,V"
	// for the buffer south of PE(i,j). The output edge (column/row
	// size-1) carries no history and has no entry here.
	LoadHistories map[string][][]int
}

func loadHistoryKey(i, j int, horizontal bool) string {
	axis := "V"
	if horizontal {
		axis = "H"
	}
	return fmt.Sprintf("%d,%d,%s", i, j, axis)
}

// Summarize trims the pipeline fill/drain overhead from the clock and from
// every PE's utilization history, then assembles the final per-thread
// result tensor. The fill/drain overhead is 4·(size-1) cycles: the original
// implementation's own derivation of the west+north skew latency plus the
// east+south drain latency for a square mesh, trimmed symmetrically from
// both ends of each PE's utilization history and once from the total clock.
// Calling Summarize before IsDone reports true produces a steady-state
// clock that is meaningless (and may be negative), since the overhead has
// not actually elapsed yet.
func (a *Array) Summarize() Summary {
	overhead := 4 * (a.size - 1)

	steadyClock := a.clock - overhead
	results := NewTensor3(a.threadCount, a.size, a.size)
	utilization := make([][]float64, a.size)
	histories := make(map[string][][]int)

	for i := 0; i < a.size; i++ {
		utilization[i] = make([]float64, a.size)
		for j := 0; j < a.size; j++ {
			pe := a.pes[i][j]
			for t := 0; t < a.threadCount; t++ {
				results.Set(t, i, j, pe.Result(t))
			}

			trimmed := trimUtilization(pe.MacUtility(), overhead)
			fired := 0
			for _, v := range trimmed {
				if v {
					fired++
				}
			}
			if steadyClock > 0 {
				utilization[i][j] = float64(fired) / float64(steadyClock)
			}

			if j != a.size-1 {
				histories[loadHistoryKey(i, j, true)] = a.LoadHistory(i, j, true)
			}
			if i != a.size-1 {
				histories[loadHistoryKey(i, j, false)] = a.LoadHistory(i, j, false)
			}
		}
	}

	if a.logger != nil {
		a.logger.Info("summarized", "clock", steadyClock)
	}

	return Summary{
		Clock:            steadyClock,
		Results:          results,
		UtilizationPerPE: utilization,
		LoadHistories:    histories,
	}
}

// trimUtilization removes up to overhead entries from the front and up to
// overhead entries from the back of history, independently: a short history
// (fewer than 2·overhead entries) trims what it can rather than going
// negative.
func trimUtilization(history []bool, overhead int) []bool {
	start := overhead
	if start > len(history) {
		start = len(history)
	}
	rest := history[start:]

	end := len(rest) - overhead
	if end < 0 {
		end = 0
	}
	return rest[:end]
}
