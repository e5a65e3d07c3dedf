package display

// RowLatch holds the column bytes shifted out for one row group, section 0 first.
type RowLatch [ScanSections]byte

// EncodeRow builds the latch for row from buf, replacing the indicator plane with the
// packed indicator bits. It does not allocate.
func EncodeRow(buf *[Size]byte, indicators uint32, row int, out *RowLatch) {
	for s := 0; s < ScanSections; s++ {
		var v byte
		if row != 0 {
			v = buf[s*SectionBytes+row]
			if s == 0 {
				v &^= indicatorColumnMask
			}
		}
		out[s] = v | packedRowBits(indicators, s, row)
	}
}

// Frame renders the scanned panel as rows of booleans, merging indicators.
func Frame(buf *[Size]byte, indicators uint32) [Rows][ScanColumns]bool {
	var out [Rows][ScanColumns]bool
	var latch RowLatch
	for r := 0; r < Rows; r++ {
		EncodeRow(buf, indicators, r, &latch)
		for c := 0; c < ScanColumns; c++ {
			out[r][c] = latch[c/8]&(1<<(c%8)) != 0
		}
	}
	return out
}
