package ui

func DetermineLayoutMode(cols, rows int) LayoutMode {
	if cols < 60 || rows < 18 {
		return LayoutTooSmall
	}
	if cols >= 100 && rows >= 28 {
		return LayoutWide
	}
	return LayoutCompact
}
