package gridsheet

// commitFill issues the batch for a released fill drag: the source
// selection tiles over the extended rectangle, so target (r, c) takes its
// value from source (r0 + (r-r0) mod srcRows, c0 + (c-c0) mod srcCols).
// Read-only, formula-bearing, and unsupported-kind targets are skipped.
// The batch is applied in one call so the data layer can undo it as a
// unit, and the selection grows to cover the filled area.
func (e *Engine) commitFill(f *gridFrame) {
	d := &f.drag
	if !f.sel.hasCell() || d.tRow < 0 || d.tCol < 0 {
		return
	}
	r0, c0, r1, c1 := f.sel.rect()
	tRow, tCol := d.tRow, d.tCol
	if tRow <= r1 && tCol <= c1 {
		return
	}
	cols := f.src.Columns()
	srcRows := r1 - r0 + 1
	srcCols := c1 - c0 + 1
	n := f.displayRowCount()

	e.cmds = e.cmds[:0]
	for r := r0; r <= tRow && r < n; r++ {
		src := f.sourceRow(r)
		for c := c0; c <= tCol && c < len(cols); c++ {
			if r <= r1 && c <= c1 {
				continue
			}
			col := cols[c]
			switch col.Kind {
			case KindSubtable, KindAsset, KindExtension:
				continue
			}
			cur := f.src.Cell(src, col.ID)
			if col.ReadOnly || col.Locked || cur.Flags.Has(CellReadOnly) || cur.Flags.Has(CellFormula) {
				continue
			}
			sr := r0 + (r-r0)%srcRows
			sc := c0 + (c-c0)%srcCols
			from := f.src.Cell(f.sourceRow(sr), cols[sc].ID)

			var v CellValue
			if cols[sc].Kind == col.Kind {
				v = from.CellValue
			} else {
				parsed, ok := parseCellValue(f.src, col, from.Text)
				if !ok {
					continue
				}
				v = parsed
			}
			if valueUnchanged(col, v, cur) {
				continue
			}
			e.cmds = append(e.cmds, SetCell{Row: src, Col: col.ID, Value: v})
		}
	}
	if len(e.cmds) > 0 {
		batch := make([]Command, len(e.cmds))
		copy(batch, e.cmds)
		f.src.Apply(batch)
	}
	f.sel.setCell(r0, c0)
	f.sel.extendTo(min(tRow, n-1), min(tCol, len(cols)-1))
}
