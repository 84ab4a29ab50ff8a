package diff

// DefaultSimilarityThreshold is the block-pairing cutoff shared by the
// paragraph and line passes. Empirically chosen; not a runtime setting.
// DefaultSimilarityThreshold 是段落轮与行轮共用的块匹配阈值，经验取值，不作为运行时配置
const DefaultSimilarityThreshold = 0.7

// PresentMask reports, per rune of current, whether that rune is judged to
// also exist in other, tolerating moved blocks. Two passes run over
// decreasing granularity: paragraphs of current are greedily paired with the
// unused other paragraph of highest similarity at or above threshold, then
// lines still without a single marked rune repeat the same pairing against
// unused other lines. Every successful pairing is refined with a
// character-level LCS alignment mapped back to absolute offsets, and the
// block's trailing newline follows its match. Runes touched by neither pass
// stay false. Blank blocks neither contribute nor consume pairings.
//
// Pairing is greedy best-available in document order rather than a global
// optimal assignment; with hand-typed note text the quality difference is
// marginal and the cost difference is a full order.
// PresentMask 计算 current 相对 other 的逐字符存在掩码，容忍整块移动。
// 两轮匹配：先对段落按最高相似度贪心配对（阈值之下不配对），再对仍无命中的行重复同样流程；
// 配对成功后用字符级 LCS 细化并映射回绝对偏移，块的行尾换行符跟随匹配结果。
// 空白块既不参与也不消耗配对；贪心（非全局最优）配对是刻意取舍。
func PresentMask(current, other string, threshold float64) []bool {
	curRunes := []rune(current)
	mask := make([]bool, len(curRunes))
	if len(curRunes) == 0 {
		return mask
	}
	otherRunes := []rune(other)

	// Paragraph pass // 段落轮
	matchBlocks(mask, curRunes, otherRunes, ParagraphRanges(current), ParagraphRanges(other), threshold, false)
	// Line pass over what the paragraph pass left unmarked // 行轮，只处理段落轮未命中的行
	matchBlocks(mask, curRunes, otherRunes, LineRanges(current), LineRanges(other), threshold, true)

	return mask
}

// matchBlocks runs one greedy pairing pass and refines matches in place.
// With skipMarked set, current blocks already holding a marked rune are
// passed over (the line pass only works on paragraph-pass leftovers).
// matchBlocks 执行一轮贪心配对并就地细化；skipMarked 时跳过已有命中的块
func matchBlocks(mask []bool, curRunes, otherRunes []rune, curBlocks, otherBlocks []Range, threshold float64, skipMarked bool) {
	used := make([]bool, len(otherBlocks))
	for _, block := range curBlocks {
		if block.Len() == 0 || isBlankRange(curRunes, block) {
			continue
		}
		if skipMarked && hasTrue(mask, block) {
			continue
		}
		curText, curTrail := blockContent(curRunes, block)

		bestIdx := -1
		bestRatio := 0.0
		for j, cand := range otherBlocks {
			if used[j] || cand.Len() == 0 || isBlankRange(otherRunes, cand) {
				continue
			}
			candText, _ := blockContent(otherRunes, cand)
			if ratio := Similarity(curText, candText); ratio > bestRatio {
				bestRatio = ratio
				bestIdx = j
			}
		}
		if bestIdx < 0 || bestRatio < threshold {
			continue
		}
		used[bestIdx] = true

		candText, _ := blockContent(otherRunes, otherBlocks[bestIdx])
		for i, matched := range lcsMask([]rune(curText), []rune(candText)) {
			if matched {
				mask[block.Start+i] = true
			}
		}
		if curTrail {
			mask[block.End-1] = true
		}
	}
}

// blockContent returns the block text with a single trailing newline
// stripped, and whether one was stripped. Pairing compares content only;
// the terminator is claimed by the match itself.
// blockContent 返回剥离单个行尾换行后的块文本；换行符由匹配整体认领
func blockContent(runes []rune, r Range) (string, bool) {
	if r.Len() > 0 && runes[r.End-1] == '\n' {
		return string(runes[r.Start : r.End-1]), true
	}
	return string(runes[r.Start:r.End]), false
}

// hasTrue reports whether any rune inside the range is already marked.
func hasTrue(mask []bool, r Range) bool {
	for i := r.Start; i < r.End && i < len(mask); i++ {
		if mask[i] {
			return true
		}
	}
	return false
}
