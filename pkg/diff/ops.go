package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Edit operation kinds carried in a version's precomputed ops payload.
// 预计算编辑操作的类型
const (
	OpInsert  = "insert"
	OpDelete  = "delete"
	OpReplace = "replace"
)

// EditOp is one edit step transforming the old text into the new one.
// Start and End are rune offsets into the old text; Text carries inserted
// or replacement content.
// EditOp 表示把旧文本变换为新文本的一步编辑，偏移按旧文本字符计
type EditOp struct {
	Kind  string `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text,omitempty"`
}

// ComputeEditOps derives the edit-operation list between two texts. A delete
// immediately followed by an insert at the same offset folds into a replace.
// Identical texts yield nil. Never fails; malformed UTF-8 is sanitized.
// ComputeEditOps 计算两段文本之间的编辑操作列表；紧邻同位的删除+插入折叠为替换
func ComputeEditOps(oldText, newText string) []EditOp {
	oldText = SanitizeUTF8(oldText)
	newText = SanitizeUTF8(newText)
	if oldText == newText {
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, true))

	var ops []EditOp
	var pending *EditOp
	flush := func() {
		if pending != nil {
			ops = append(ops, *pending)
			pending = nil
		}
	}

	pos := 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			pos += n
		case diffmatchpatch.DiffDelete:
			flush()
			pending = &EditOp{Kind: OpDelete, Start: pos, End: pos + n}
			pos += n
		case diffmatchpatch.DiffInsert:
			if pending != nil && pending.Kind == OpDelete && pending.End == pos {
				pending.Kind = OpReplace
				pending.Text = d.Text
				flush()
			} else {
				flush()
				ops = append(ops, EditOp{Kind: OpInsert, Start: pos, End: pos, Text: d.Text})
			}
		}
	}
	flush()
	return ops
}

// ChangedChars counts the runes touched by the difference between two texts,
// insertions plus deletions. This is the retention gate's change measure.
// ChangedChars 统计两段文本差异涉及的字符数（插入+删除），作为保留策略的变更量
func ChangedChars(oldText, newText string) int {
	if oldText == newText {
		return 0
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(SanitizeUTF8(oldText), SanitizeUTF8(newText), false)

	changed := 0
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			changed += utf8.RuneCountInString(d.Text)
		}
	}
	return changed
}

// SanitizeUTF8 drops invalid byte sequences so diffmatchpatch never sees
// broken encoding.
// SanitizeUTF8 去除非法字节序列，避免 diffmatchpatch 处理坏编码
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
