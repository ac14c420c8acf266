package systolic

import "log/slog"

// PE is one processing element: a fixed-function multiply-accumulate unit
// time-multiplexed across threadCount independent batch elements via a
// round-robin cursor. It holds no instruction stream and no general
// register file — everything it can do is this one per-cycle algorithm.
type PE struct {
	iindex, jindex int
	threadCount    int
	limited        bool
	onThread       int
	result         []int64
	macUtility     []bool

	west, north Buffer
	east, south Buffer

	logger *slog.Logger
}

// NewPE builds a PE wired to its four neighbor buffers. limited selects
// PElimited semantics: a real MAC or a zero-operand pass-through additionally
// stalls (reinserting both popped operands) when either downstream buffer
// reports IsFull for that thread.
func NewPE(i, j, threadCount int, limited bool, west, north, east, south Buffer, logger *slog.Logger) *PE {
	return &PE{
		iindex:      i,
		jindex:      j,
		threadCount: threadCount,
		limited:     limited,
		result:      make([]int64, threadCount),
		west:        west,
		north:       north,
		east:        east,
		south:       south,
		logger:      logger,
	}
}

// scanOrder returns the thread visitation order for one cycle: starting at
// the round-robin cursor and wrapping around, so every thread gets a fair
// chance to be the one that fires the PE's single MAC slot this cycle.
func (p *PE) scanOrder() []int {
	order := make([]int, p.threadCount)
	for i := range order {
		order[i] = (p.onThread + i) % p.threadCount
	}
	return order
}

// Step runs one cycle of the round-robin MAC algorithm. At most one thread
// fires a multiply-accumulate per cycle; every other thread scanned this
// cycle either passes its operand pair straight through (bubble or zero
// operand) or has both operands reinserted to retry next cycle (blocked by
// an already-fired MAC slot, or by downstream backpressure in the limited
// variant).
func (p *PE) Step() {
	fired := false

	for _, t := range p.scanOrder() {
		w, ok := p.west.PopHead(t)
		if !ok {
			continue
		}
		n, ok := p.north.PopHead(t)
		if !ok {
			p.west.InsertHead(t, w)
			continue
		}

		switch {
		case w.IsBubble() || n.IsBubble():
			p.east.Push(t, w)
			p.south.Push(t, n)

		case w.IsZero() || n.IsZero():
			if p.limited && (p.east.IsFull(t) || p.south.IsFull(t)) {
				p.west.InsertHead(t, w)
				p.north.InsertHead(t, n)
				continue
			}
			p.east.Push(t, w)
			p.south.Push(t, n)

		default:
			if fired {
				p.west.InsertHead(t, w)
				p.north.InsertHead(t, n)
				continue
			}
			if p.limited && (p.east.IsFull(t) || p.south.IsFull(t)) {
				p.west.InsertHead(t, w)
				p.north.InsertHead(t, n)
				continue
			}

			p.onThread = (p.onThread + 1) % p.threadCount
			fired = true
			p.result[t] += w.Value() * n.Value()
			p.east.Push(t, w)
			p.south.Push(t, n)
		}
	}

	p.macUtility = append(p.macUtility, fired)

	if p.logger != nil {
		p.logger.Debug("pe step", "i", p.iindex, "j", p.jindex, "fired", fired, "onThread", p.onThread)
	}
}

// Result returns the accumulated dot product for thread so far.
func (p *PE) Result(thread int) int64 {
	return p.result[thread]
}

// MacUtility returns the full per-cycle fired/idle history.
func (p *PE) MacUtility() []bool {
	return p.macUtility
}

// Coords returns the PE's (i, j) grid position.
func (p *PE) Coords() (int, int) {
	return p.iindex, p.jindex
}
