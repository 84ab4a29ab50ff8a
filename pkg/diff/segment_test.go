package diff

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// docGen 生成接近真实笔记的多行文档
func docGen() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(
		"# 计划",
		"first line",
		"second line with more words",
		"",
		"- list item",
		"   ",
		"结尾总结",
	)).Map(func(lines []string) string {
		return strings.Join(lines, "\n")
	})
}

func TestProperty_SegmentLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// 行区间按序衔接且覆盖全文
	properties.Property("line ranges are contiguous and cover the text", prop.ForAll(
		func(text string) bool {
			lines := LineRanges(text)
			pos := 0
			for _, r := range lines {
				if r.Start != pos || r.End < r.Start {
					return false
				}
				pos = r.End
			}
			return pos == utf8.RuneCountInString(text)
		},
		docGen(),
	))

	// 段落区间升序、互不重叠，且只含非空行
	properties.Property("paragraph ranges ascend without overlap", prop.ForAll(
		func(text string) bool {
			runes := []rune(text)
			prevEnd := -1
			for _, p := range ParagraphRanges(text) {
				if p.Start <= prevEnd || p.End <= p.Start {
					return false
				}
				if isBlankRange(runes, p) {
					return false
				}
				prevEnd = p.End
			}
			return true
		},
		docGen(),
	))

	properties.TestingRun(t)
}

func TestLineRanges_Examples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Range
	}{
		{
			name: "空文档返回退化区间",
			text: "",
			want: []Range{{Start: 0, End: 0}},
		},
		{
			name: "无换行符的单行",
			text: "alpha",
			want: []Range{{Start: 0, End: 5}},
		},
		{
			name: "换行符归属所在行",
			text: "a\nb",
			want: []Range{{Start: 0, End: 2}, {Start: 2, End: 3}},
		},
		{
			name: "末尾换行不产生空行区间",
			text: "a\n",
			want: []Range{{Start: 0, End: 2}},
		},
		{
			name: "中文按字符偏移",
			text: "你好\n世界",
			want: []Range{{Start: 0, End: 3}, {Start: 3, End: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineRanges(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("LineRanges(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("LineRanges(%q)[%d] = %v, want %v", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParagraphRanges_Examples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Range
	}{
		{
			name: "空文档无段落",
			text: "",
			want: nil,
		},
		{
			name: "全空白文档无段落",
			text: "\n \n\t\n",
			want: nil,
		},
		{
			name: "空行分隔两个段落",
			text: "A\n\nB",
			want: []Range{{Start: 0, End: 2}, {Start: 3, End: 4}},
		},
		{
			name: "多行段落保持为一个区段",
			text: "A\nB\n\nC",
			want: []Range{{Start: 0, End: 4}, {Start: 5, End: 6}},
		},
		{
			name: "真实笔记片段",
			text: "# 会议记录\n\n参会人员：张三、李四\n会议内容：讨论Q1计划",
			want: []Range{{Start: 0, End: 7}, {Start: 8, End: 30}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParagraphRanges(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ParagraphRanges(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParagraphRanges(%q)[%d] = %v, want %v", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}
