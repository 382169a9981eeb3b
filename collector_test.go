package fastrow

import (
	"fmt"
	"testing"
)

func makeRow(i int) [][]byte {
	return [][]byte{[]byte(fmt.Sprintf("row-%d", i))}
}

func TestRowCollector_StackOnly(t *testing.T) {
	var c rowCollector
	for i := 0; i < 10; i++ {
		c.append(makeRow(i))
	}
	rows := c.finish()
	if len(rows) != 10 {
		t.Fatalf("finish returned %d rows, want 10", len(rows))
	}
	for i, row := range rows {
		if string(row[0]) != fmt.Sprintf("row-%d", i) {
			t.Fatalf("row %d out of order: %q", i, row[0])
		}
	}
}

func TestRowCollector_HeapSpill(t *testing.T) {
	var c rowCollector
	total := collectorStackRows + 100
	for i := 0; i < total; i++ {
		c.append(makeRow(i))
	}
	if c.heap == nil {
		t.Fatal("collector did not spill to heap")
	}
	if cap(c.heap) < 2*collectorStackRows {
		t.Errorf("heap backing cap = %d, want >= %d", cap(c.heap), 2*collectorStackRows)
	}
	rows := c.finish()
	if len(rows) != total {
		t.Fatalf("finish returned %d rows, want %d", len(rows), total)
	}
	// Order preserved across the spill boundary.
	for _, i := range []int{0, collectorStackRows - 1, collectorStackRows, total - 1} {
		if string(rows[i][0]) != fmt.Sprintf("row-%d", i) {
			t.Errorf("row %d out of order: %q", i, rows[i][0])
		}
	}
}

func TestRowCollector_Overflow(t *testing.T) {
	c := rowCollector{maxRows: 3}
	for i := 0; i < 10; i++ {
		c.append(makeRow(i))
	}
	if !c.overflowed {
		t.Fatal("collector did not flag overflow")
	}
	rows := c.finish()
	if len(rows) != 3 {
		t.Fatalf("finish returned %d rows, want 3", len(rows))
	}
	// Rows appended before the failure remain intact.
	for i, row := range rows {
		if string(row[0]) != fmt.Sprintf("row-%d", i) {
			t.Errorf("row %d corrupted: %q", i, row[0])
		}
	}
}

func TestRowCollector_FinishEmpty(t *testing.T) {
	var c rowCollector
	if rows := c.finish(); rows != nil {
		t.Errorf("finish on empty collector = %v, want nil", rows)
	}
}

func TestRowCollector_Reset(t *testing.T) {
	var c rowCollector
	for i := 0; i < collectorStackRows+10; i++ {
		c.append(makeRow(i))
	}
	c.reset()
	if c.len() != 0 || c.heap != nil || c.overflowed {
		t.Errorf("reset left state behind: len=%d heap=%v overflowed=%v", c.len(), c.heap != nil, c.overflowed)
	}
	c.append(makeRow(0))
	if rows := c.finish(); len(rows) != 1 {
		t.Errorf("append after reset: %d rows, want 1", len(rows))
	}
}
