package systolic

import "log/slog"

// PackWest builds the west-edge input FIFOs for a west operand batch shaped
// T×R×K. Row i is skewed with i leading Bubbles per thread before its K
// contraction-dimension values, the diagonal stagger that gives every PE its
// operands in lockstep as they propagate east.
func PackWest(west Tensor3, logger *slog.Logger) []*InternalBuffer {
	t, r, k := west.Dims()
	fifos := make([]*InternalBuffer, r)
	for i := 0; i < r; i++ {
		lanes := make([][]Scalar, t)
		for thread := 0; thread < t; thread++ {
			lane := make([]Scalar, 0, i+k)
			for s := 0; s < i; s++ {
				lane = append(lane, Bubble)
			}
			for j := 0; j < k; j++ {
				lane = append(lane, NewValue(west.Get(thread, i, j)))
			}
			lanes[thread] = lane
		}
		fifos[i] = NewInputFIFO(lanes, i, -1, logger)
	}
	return fifos
}

// PackNorth builds the north-edge input FIFOs for a north operand batch
// shaped T×K×C. Column j is skewed with j leading Bubbles per thread before
// its K contraction-dimension values.
func PackNorth(north Tensor3, logger *slog.Logger) []*InternalBuffer {
	t, k, c := north.Dims()
	fifos := make([]*InternalBuffer, c)
	for j := 0; j < c; j++ {
		lanes := make([][]Scalar, t)
		for thread := 0; thread < t; thread++ {
			lane := make([]Scalar, 0, j+k)
			for s := 0; s < j; s++ {
				lane = append(lane, Bubble)
			}
			for i := 0; i < k; i++ {
				lane = append(lane, NewValue(north.Get(thread, i, j)))
			}
			lanes[thread] = lane
		}
		fifos[j] = NewInputFIFO(lanes, -1, j, logger)
	}
	return fifos
}

// UnpackEast reassembles the east-column output buffers into a T×R×want
// tensor. A buffer's sequence only counts if its length matches want
// exactly; shorter or longer sequences are left as zero, matching the
// original implementation's tolerance for a run that never reached steady
// state.
func UnpackEast(buffers []*OutputBuffer, t, want int) Tensor3 {
	out := NewTensor3(t, len(buffers), want)
	for row, buf := range buffers {
		for thread := 0; thread < t; thread++ {
			lane := buf.Lane(thread)
			if len(lane) != want {
				continue
			}
			for col, v := range lane {
				out.Set(thread, row, col, v.Value())
			}
		}
	}
	return out
}

// UnpackSouth reassembles the south-row output buffers into a T×want×C
// tensor, the column-indexed mirror of UnpackEast.
func UnpackSouth(buffers []*OutputBuffer, t, want int) Tensor3 {
	out := NewTensor3(t, want, len(buffers))
	for col, buf := range buffers {
		for thread := 0; thread < t; thread++ {
			lane := buf.Lane(thread)
			if len(lane) != want {
				continue
			}
			for row, v := range lane {
				out.Set(thread, row, col, v.Value())
			}
		}
	}
	return out
}
