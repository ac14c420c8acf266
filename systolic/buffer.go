package systolic

import "log/slog"

// Buffer is the per-thread FIFO interface a PE sees on each of its four
// neighbor edges. West/north neighbors are read through PopHead/InsertHead;
// east/south neighbors are written through Push/IsFull. Every concrete
// buffer implements the full interface even though any one PE only ever
// exercises half of it on a given edge, which keeps the PE's wiring code
// uniform regardless of whether a neighbor is an InternalBuffer, an
// inputFIFO, or an OutputBuffer.
type Buffer interface {
	// PopHead removes and returns the oldest entry for thread. ok is false
	// when the thread's sequence is empty — routine control flow, not an
	// error, exactly as the distilled spec requires (§4.A, §7).
	PopHead(thread int) (Scalar, bool)

	// InsertHead puts v back at the head of thread's sequence — used by a
	// PE to "un-pop" an operand it could not consume this cycle.
	InsertHead(thread int, v Scalar)

	// Push appends v to thread's sequence. ok is false only when the
	// buffer is depth-limited and full; unlimited and output buffers
	// always succeed.
	Push(thread int, v Scalar) (ok bool)

	// IsFull reports whether thread is at capacity. Always false for
	// unlimited internal buffers and for output buffers (sinks never
	// back-pressure).
	IsFull(thread int) bool

	// Coords returns the buffer's (i, j) grid position, used only for
	// logging and as an equality/location key.
	Coords() (i, j int)
}

// InternalBuffer is a FIFO between two PEs, or the pre-populated input feed
// at the array's west/north edge. The depthLimit field selects between the
// "unlimited" and "limited" variants of the specification: a negative
// depthLimit means unlimited, matching the convention the public
// constructor uses for buffer_depth.
type InternalBuffer struct {
	iindex, jindex int
	lanes          [][]Scalar
	load           [][]int
	depthLimit     int
	trackLoad      bool
	logger         *slog.Logger
}

// NewInternalBuffer builds an internal buffer with a single leading Bubble
// per thread — the one-cycle pipeline delay between adjacent PEs required
// by the specification's buffer lifecycle. depthLimit < 0 means unlimited.
func NewInternalBuffer(threadCount, depthLimit, i, j int, logger *slog.Logger) *InternalBuffer {
	b := &InternalBuffer{
		iindex:     i,
		jindex:     j,
		lanes:      make([][]Scalar, threadCount),
		load:       make([][]int, threadCount),
		depthLimit: depthLimit,
		trackLoad:  true,
		logger:     logger,
	}
	for t := range b.lanes {
		b.lanes[t] = []Scalar{Bubble}
	}
	if logger != nil {
		logger.Debug("buffer initialized", "i", i, "j", j, "depthLimit", depthLimit)
	}
	return b
}

// NewInputFIFO builds a pre-populated, unlimited-depth buffer from already
// skewed per-thread sequences — see PackWest and PackNorth in pack.go. Unlike
// NewInternalBuffer it injects no leading bubble of its own; the skew
// bubbles are baked into lanes by the packer.
func NewInputFIFO(lanes [][]Scalar, i, j int, logger *slog.Logger) *InternalBuffer {
	cp := make([][]Scalar, len(lanes))
	for t, lane := range lanes {
		cp[t] = append([]Scalar(nil), lane...)
	}
	return &InternalBuffer{
		iindex:     i,
		jindex:     j,
		lanes:      cp,
		load:       make([][]int, len(cp)),
		depthLimit: -1,
		trackLoad:  false,
		logger:     logger,
	}
}

func (b *InternalBuffer) checkThread(thread int) {
	if thread < 0 || thread >= len(b.lanes) {
		panic(newInvariantError("invalid thread id %d in buffer <%d,%d>", thread, b.iindex, b.jindex))
	}
}

// Limited reports whether this buffer enforces a depth limit.
func (b *InternalBuffer) Limited() bool {
	return b.depthLimit >= 0
}

func (b *InternalBuffer) PopHead(thread int) (Scalar, bool) {
	b.checkThread(thread)
	lane := b.lanes[thread]
	if len(lane) == 0 {
		return Scalar{}, false
	}
	v := lane[0]
	b.lanes[thread] = lane[1:]
	return v, true
}

func (b *InternalBuffer) InsertHead(thread int, v Scalar) {
	b.checkThread(thread)
	b.lanes[thread] = append([]Scalar{v}, b.lanes[thread]...)
}

func (b *InternalBuffer) Push(thread int, v Scalar) bool {
	b.checkThread(thread)
	if b.Limited() && len(b.lanes[thread]) >= b.depthLimit {
		if b.logger != nil {
			b.logger.Debug("push rejected, buffer full", "i", b.iindex, "j", b.jindex, "thread", thread)
		}
		return false
	}
	b.lanes[thread] = append(b.lanes[thread], v)
	return true
}

func (b *InternalBuffer) IsFull(thread int) bool {
	b.checkThread(thread)
	if !b.Limited() {
		return false
	}
	return len(b.lanes[thread]) >= b.depthLimit
}

func (b *InternalBuffer) Coords() (int, int) {
	return b.iindex, b.jindex
}

// DeleteLast removes the most recently appended element for thread. It
// supports rollback of a Push that should not have happened; the PE
// implementations in this package never call it in steady state (they
// prefer InsertHead to put popped inputs back), but it is part of the
// specification's buffer contract (§4.A) and is exercised directly by
// buffer_test.go.
func (b *InternalBuffer) DeleteLast(thread int) {
	b.checkThread(thread)
	lane := b.lanes[thread]
	if len(lane) == 0 {
		panic(newInvariantError("delete_last on empty thread %d in buffer <%d,%d>", thread, b.iindex, b.jindex))
	}
	b.lanes[thread] = lane[:len(lane)-1]
}

// SampleLoad appends the current non-bubble count per thread to the load
// history. Called once per tick, after all PEs have processed, by every
// internal buffer in the mesh (not by input FIFOs, which have no load
// history, and not by output buffers, which the specification excludes
// from sampling entirely).
func (b *InternalBuffer) SampleLoad() {
	if !b.trackLoad {
		return
	}
	for t, lane := range b.lanes {
		count := 0
		for _, v := range lane {
			if !v.IsBubble() {
				count++
			}
		}
		b.load[t] = append(b.load[t], count)
	}
}

// LoadHistory returns the recorded per-thread occupancy history.
func (b *InternalBuffer) LoadHistory() [][]int {
	return b.load
}

// OutputBuffer is the sink at the array's east column / south row. It never
// back-pressures and never stores a Bubble.
type OutputBuffer struct {
	iindex, jindex int
	lanes          [][]Scalar
}

// NewOutputBuffer builds an empty sink for threadCount threads.
func NewOutputBuffer(threadCount, i, j int) *OutputBuffer {
	return &OutputBuffer{
		iindex: i,
		jindex: j,
		lanes:  make([][]Scalar, threadCount),
	}
}

func (b *OutputBuffer) checkThread(thread int) {
	if thread < 0 || thread >= len(b.lanes) {
		panic(newInvariantError("invalid thread id %d in output buffer <%d,%d>", thread, b.iindex, b.jindex))
	}
}

func (b *OutputBuffer) Push(thread int, v Scalar) bool {
	b.checkThread(thread)
	if v.IsBubble() {
		return true
	}
	b.lanes[thread] = append(b.lanes[thread], v)
	return true
}

// IsFull is always false: sinks never back-pressure.
func (b *OutputBuffer) IsFull(thread int) bool {
	b.checkThread(thread)
	return false
}

// PopHead and InsertHead are structurally unreachable: the array never
// wires an OutputBuffer as a west/north neighbor. They panic rather than
// silently returning a zero value, the same defensive stance the teacher's
// dummy.NonExist takes for impossible call paths.
func (b *OutputBuffer) PopHead(thread int) (Scalar, bool) {
	b.checkThread(thread)
	panic(newInvariantError("pop from output buffer <%d,%d>", b.iindex, b.jindex))
}

func (b *OutputBuffer) InsertHead(thread int, v Scalar) {
	b.checkThread(thread)
	panic(newInvariantError("insert into output buffer <%d,%d>", b.iindex, b.jindex))
}

func (b *OutputBuffer) Coords() (int, int) {
	return b.iindex, b.jindex
}

// Lane returns a copy of the stored sequence for thread, used by the output
// unpacking routine to reassemble the east/south result tensors.
func (b *OutputBuffer) Lane(thread int) []Scalar {
	b.checkThread(thread)
	out := make([]Scalar, len(b.lanes[thread]))
	copy(out, b.lanes[thread])
	return out
}
