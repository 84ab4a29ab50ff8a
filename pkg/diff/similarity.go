// Package diff implements the move-aware version comparison engine: block
// segmentation, LCS similarity scoring, presence-mask computation and
// per-character highlight classification.
// Package diff 实现移动感知的版本对比引擎：块切分、LCS 相似度、存在掩码与逐字符高亮分类
package diff

// Similarity returns the normalized LCS similarity of two texts in [0, 1],
// defined as 2*LCS(a,b)/(len(a)+len(b)) over runes. Two empty texts are
// identical (1.0); exactly one empty text yields 0.0. Pure and total.
// Similarity 返回两段文本基于 LCS 的归一化相似度 2*LCS/(len(a)+len(b))，按字符计算；
// 两个空串视为相同，恰有一个空串时为 0
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	return 2.0 * float64(lcsLength(ra, rb)) / float64(len(ra)+len(rb))
}
