// Package systolic implements a cycle-accurate functional model of a
// multi-threaded systolic array (MTSA): a square mesh of fixed-function
// processing elements that performs batched dense matrix multiplication by
// streaming two operand matrices, skewed along opposite edges, through the
// mesh one cycle at a time.
//
// # Dataflow
//
// An Array of size N holds N² PEs. The west operand (shape T×N×K, T
// independent threads/batch elements) enters along the west edge, one row
// per PE row, each row skewed by i leading Bubbles so that diagonally
// adjacent PEs see the values needed to multiply in the same cycle. The
// north operand (shape T×K×N) enters symmetrically along the north edge,
// skewed by column. Both operand streams pass straight through every PE
// they visit — multiplied in place but not consumed — continuing east and
// south respectively until they drain out the opposite edges. A PE
// multiplies and accumulates into its own per-thread result exactly once
// per real value pair it sees; Bubbles and Zero values pass through
// untouched.
//
// # Threading and the round-robin cursor
//
// Each PE can run only one multiply-accumulate per cycle, but must service
// up to T independent threads. It keeps a round-robin cursor (onThread)
// and scans the threads starting there; the first scanned thread with a
// real nonzero operand pair fires this cycle's single MAC, and the cursor
// then advances by one (from its own position, not from the firing
// thread's). Later threads with a real nonzero pair have their popped
// operands reinserted to retry next cycle, while Bubble and Zero pairs on
// any thread still pass straight through in the same cycle. This is why a PE's
// history of per-cycle fired/idle flags (its MAC utilization) is the
// natural place to measure how well multi-threading is amortizing the
// mesh's fixed per-PE throughput across the batch.
//
// # Termination and the steady-state report
//
// IsDone reports structural completion: every value originally pushed in
// at the west and north edges has made it all the way through to the east
// and south edges. This says nothing about arithmetic correctness — the
// actual dot products accumulate silently inside each PE, invisible at the
// edges — which is why callers drive Tick in a loop until IsDone, then call
// Summarize to read back both the per-thread result tensor and the
// steady-state MAC utilization, with the mesh's fixed fill/drain latency
// trimmed out of both the clock count and every PE's utilization history.
//
// # Depth-limited buffers
//
// An Array built with a finite buffer depth additionally back-pressures: a
// PE will not fire a real MAC, nor pass through a zero-valued operand pair,
// into a downstream buffer that is already at capacity for that thread. It
// reinserts both operands and retries next cycle instead. Bubbles are never
// subject to this check; they must keep flowing to preserve the mesh's
// timing regardless of how full the real-value traffic has made a buffer.
package systolic
