package diff

import "strings"

// Range is a half-open [Start, End) span of rune offsets into a document.
// Range 是文档内按字符偏移的半开区间 [Start, End)
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// LineRanges splits text into one range per line. Each range includes the
// line's trailing newline; the final line is included even when
// unterminated. An empty document yields the single degenerate range [0,0).
// LineRanges 将文本按行切分为区间，行尾换行符归属所在行；空文档返回单个退化区间 [0,0)
func LineRanges(text string) []Range {
	runes := []rune(text)
	if len(runes) == 0 {
		return []Range{{Start: 0, End: 0}}
	}
	var ranges []Range
	start := 0
	for i, r := range runes {
		if r == '\n' {
			ranges = append(ranges, Range{Start: start, End: i + 1})
			start = i + 1
		}
	}
	if start < len(runes) {
		ranges = append(ranges, Range{Start: start, End: len(runes)})
	}
	return ranges
}

// ParagraphRanges returns one range per paragraph, a paragraph being a
// maximal run of consecutive non-blank lines. Blank (trimmed-empty) lines
// separate paragraphs and belong to none. Ranges are non-overlapping and
// ascending; an all-blank or empty document yields an empty list.
// ParagraphRanges 返回段落区间；段落是连续非空行的最大区段，空行只作分隔、不属于任何段落
func ParagraphRanges(text string) []Range {
	runes := []rune(text)
	var paragraphs []Range
	start := -1
	end := 0
	for _, line := range LineRanges(text) {
		if isBlankRange(runes, line) {
			if start >= 0 {
				paragraphs = append(paragraphs, Range{Start: start, End: end})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = line.Start
		}
		end = line.End
	}
	if start >= 0 {
		paragraphs = append(paragraphs, Range{Start: start, End: end})
	}
	return paragraphs
}

// isBlankRange reports whether the span holds no printable content.
// isBlankRange 判断区间内是否没有可见内容
func isBlankRange(runes []rune, r Range) bool {
	return strings.TrimSpace(string(runes[r.Start:r.End])) == ""
}
