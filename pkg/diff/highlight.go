package diff

// Classification labels one rune of a diffed text.
// Classification 标记单个字符的差异类别
type Classification int

const (
	Unchanged Classification = iota
	Added
	Removed
)

func (c Classification) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// CharSpan pairs one rune of the source text with its classification.
// Callers run-length-encode consecutive spans into rendering runs
// themselves; the engine never merges.
// CharSpan 将源文本的一个字符与其差异类别配对，引擎不做段合并
type CharSpan struct {
	Char  rune
	Class Classification
}

// DiffAgainstNeighbors classifies every rune of current against its
// chronological neighbors. With only prev, runes absent from prev are Added.
// With only next, runes absent from next are Removed. With both, Added wins
// wherever both would apply. With neither, the whole text is Unchanged.
// A non-blank line or paragraph without a single present rune is flagged
// wholesale so a genuinely new block never renders fragmented; blank lines
// stay neutral. Output order and length mirror the input runes exactly.
// DiffAgainstNeighbors 按时间相邻版本对当前文本逐字符分类：仅有前版本时缺失即新增，
// 仅有后版本时缺失即删除，两者皆有时新增优先，均无时全部视为未变；
// 无任何命中的非空行/段整体标记，空行保持中性；输出与输入字符一一对应
func DiffAgainstNeighbors(current string, prev, next *string) []CharSpan {
	runes := []rune(current)
	spans := make([]CharSpan, len(runes))
	for i, r := range runes {
		spans[i] = CharSpan{Char: r, Class: Unchanged}
	}
	if len(runes) == 0 {
		return spans
	}

	var addedAt, removedAt []bool
	if prev != nil {
		addedAt = absentMask(current, runes, PresentMask(current, *prev, DefaultSimilarityThreshold))
	}
	if next != nil {
		removedAt = absentMask(current, runes, PresentMask(current, *next, DefaultSimilarityThreshold))
	}

	for i := range spans {
		switch {
		case addedAt != nil && addedAt[i]:
			spans[i].Class = Added
		case removedAt != nil && removedAt[i]:
			spans[i].Class = Removed
		}
	}
	return spans
}

// absentMask inverts a presence mask and applies the whole-block overrides:
// a non-blank line or paragraph whose range holds zero present runes is
// absent in full, while blank lines are never absent.
// absentMask 取存在掩码之反并应用整块覆盖：零命中的非空行/段整体视为缺失，空行永不缺失
func absentMask(text string, runes []rune, present []bool) []bool {
	absent := make([]bool, len(present))
	for i, p := range present {
		absent[i] = !p
	}
	for _, line := range LineRanges(text) {
		if line.Len() == 0 {
			continue
		}
		if isBlankRange(runes, line) {
			setRange(absent, line, false)
			continue
		}
		if !hasTrue(present, line) {
			setRange(absent, line, true)
		}
	}
	for _, para := range ParagraphRanges(text) {
		if !hasTrue(present, para) {
			setRange(absent, para, true)
		}
	}
	return absent
}

func setRange(mask []bool, r Range, v bool) {
	for i := r.Start; i < r.End && i < len(mask); i++ {
		mask[i] = v
	}
}
