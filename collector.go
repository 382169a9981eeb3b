package fastrow

// collectorStackRows is the capacity of the collector's first tier.
const collectorStackRows = 4096

// rowCollector is append-only storage for completed rows with a stack-first,
// heap-spill growth policy. The first collectorStackRows rows live in a fixed
// array; the next append allocates a heap backing of twice that capacity,
// copies the array over, and growth doubles from there.
//
// When maxRows is set and reached, the collector flags the overflow and
// silently drops that row and every subsequent row; prior rows stay intact.
type rowCollector struct {
	stack      [collectorStackRows][][]byte
	n          int
	heap       [][][]byte
	maxRows    int
	overflowed bool
}

func (c *rowCollector) len() int {
	if c.heap != nil {
		return len(c.heap)
	}
	return c.n
}

func (c *rowCollector) append(row [][]byte) {
	if c.overflowed {
		return
	}
	if c.maxRows > 0 && c.len() >= c.maxRows {
		c.overflowed = true
		return
	}
	if c.heap != nil {
		if len(c.heap) == cap(c.heap) {
			grown := make([][][]byte, len(c.heap), 2*cap(c.heap))
			copy(grown, c.heap)
			c.heap = grown
		}
		c.heap = append(c.heap, row)
		return
	}
	if c.n < collectorStackRows {
		c.stack[c.n] = row
		c.n++
		return
	}
	c.heap = make([][][]byte, 0, 2*collectorStackRows)
	c.heap = append(c.heap, c.stack[:c.n]...)
	c.heap = append(c.heap, row)
	c.clearStack()
}

// finish returns the ordered rows from whichever backing is in use and
// releases the collector's references to them.
func (c *rowCollector) finish() [][][]byte {
	if c.heap != nil {
		out := c.heap
		c.heap = nil
		return out
	}
	if c.n == 0 {
		return nil
	}
	out := make([][][]byte, c.n)
	copy(out, c.stack[:c.n])
	c.clearStack()
	c.n = 0
	return out
}

// reset releases any backing so the collector can be reused.
func (c *rowCollector) reset() {
	c.clearStack()
	c.n = 0
	c.heap = nil
	c.overflowed = false
}

func (c *rowCollector) clearStack() {
	for i := 0; i < c.n; i++ {
		c.stack[i] = nil
	}
}
