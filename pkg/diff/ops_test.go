package diff

import (
	"testing"
)

func TestComputeEditOps_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		oldText string
		newText string
		want    []EditOp
	}{
		{
			name:    "相同文本无操作",
			oldText: "abc",
			newText: "abc",
			want:    nil,
		},
		{
			name:    "行内插入",
			oldText: "ab",
			newText: "axb",
			want: []EditOp{
				{Kind: OpInsert, Start: 1, End: 1, Text: "x"},
			},
		},
		{
			name:    "删除加插入折叠为替换",
			oldText: "hello world",
			newText: "hello there",
			want: []EditOp{
				{Kind: OpReplace, Start: 6, End: 11, Text: "there"},
			},
		},
		{
			name:    "中文偏移按字符计",
			oldText: "笔记",
			newText: "笔录",
			want: []EditOp{
				{Kind: OpReplace, Start: 1, End: 2, Text: "录"},
			},
		},
		{
			name:    "尾部删除",
			oldText: "abc\ndef",
			newText: "abc",
			want: []EditOp{
				{Kind: OpDelete, Start: 3, End: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEditOps(tt.oldText, tt.newText)
			if len(got) != len(tt.want) {
				t.Fatalf("ComputeEditOps() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("op[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChangedChars_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		oldText string
		newText string
		want    int
	}{
		{
			name:    "无变化",
			oldText: "same",
			newText: "same",
			want:    0,
		},
		{
			name:    "从空到有按插入量计",
			oldText: "",
			newText: "abcd",
			want:    4,
		},
		{
			name:    "替换计删除与插入之和",
			oldText: "aaaa bbbb",
			newText: "aaaa cccc",
			want:    8,
		},
		{
			name:    "中文替换按字符计",
			oldText: "早晨跑步",
			newText: "早晨散步",
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChangedChars(tt.oldText, tt.newText)
			if got != tt.want {
				t.Errorf("ChangedChars(%q, %q) = %d, want %d", tt.oldText, tt.newText, got, tt.want)
			}
		})
	}
}
