package diff

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// lcsMaskMaxCells bounds the DP table used for character alignment. Block
// pairs above the budget fall back to a diffmatchpatch equality walk.
// lcsMaskMaxCells 限制字符对齐 DP 表的规模，超出预算的块对退回 diffmatchpatch 等值遍历
const lcsMaskMaxCells = 4 << 20

// lcsLength returns the longest-common-subsequence length of a and b.
// lcsLength 返回 a 与 b 的最长公共子序列长度
// Rolling single-row DP keeps memory at O(min(len(a), len(b))).
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Keep the rolling row on the shorter side
	// 滚动行保存在较短的一侧
	if len(b) > len(a) {
		a, b = b, a
	}
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		diag := 0
		for j := 1; j <= len(b); j++ {
			up := row[j]
			if a[i-1] == b[j-1] {
				row[j] = diag + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			diag = up
		}
	}
	return row[len(b)]
}

// lcsMask reports, for every rune of current, whether the LCS alignment of
// current against other pairs it with a rune of other.
// lcsMask 标记 current 的每个字符是否被与 other 的 LCS 对齐命中
func lcsMask(current, other []rune) []bool {
	mask := make([]bool, len(current))
	if len(current) == 0 || len(other) == 0 {
		return mask
	}
	if (len(current)+1)*(len(other)+1) > lcsMaskMaxCells {
		return equalityMask(current, other)
	}

	n, m := len(current), len(other)
	dp := make([][]int32, n+1)
	for i := range dp {
		dp[i] = make([]int32, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if current[i-1] == other[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	// Walk back from the table end. The diagonal is only taken when it is
	// forced, so equal runes pair up leftmost-first and a repeated character
	// near the text tail cannot steal the match from its earlier twin.
	// 从表尾回溯，仅在必要时走对角线，使相等字符尽量按靠前位置配对，
	// 避免文末的重复字符抢占前面副本的匹配
	i, j := n, m
	for i > 0 && j > 0 {
		switch {
		case dp[i-1][j] == dp[i][j]:
			i--
		case dp[i][j-1] == dp[i][j]:
			j--
		default:
			mask[i-1] = true
			i--
			j--
		}
	}
	return mask
}

// equalityMask approximates the alignment with a diffmatchpatch edit script,
// marking the runes inside equal segments. Only used above the DP budget.
// equalityMask 用 diffmatchpatch 编辑脚本近似对齐，仅在超出 DP 预算时使用
func equalityMask(current, other []rune) []bool {
	mask := make([]bool, len(current))
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMain(string(current), string(other), false)

	pos := 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for k := 0; k < n && pos < len(mask); k++ {
				mask[pos] = true
				pos++
			}
		case diffmatchpatch.DiffDelete:
			pos += n
		}
	}
	return mask
}
