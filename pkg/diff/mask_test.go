package diff

import (
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// 验证存在掩码的确定性与完整性

func TestProperty_PresentMaskLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// 同一输入两次计算结果一致
	properties.Property("mask computation is deterministic", prop.ForAll(
		func(current, other string, threshold float64) bool {
			first := PresentMask(current, other, threshold)
			second := PresentMask(current, other, threshold)
			if len(first) != len(second) {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		docGen(),
		docGen(),
		gen.Float64Range(0.1, 1.0),
	))

	// 掩码长度与当前文本字符数一致
	properties.Property("mask length equals rune count", prop.ForAll(
		func(current, other string, threshold float64) bool {
			return len(PresentMask(current, other, threshold)) == utf8.RuneCountInString(current)
		},
		docGen(),
		docGen(),
		gen.Float64Range(0.1, 1.0),
	))

	// 与自身比较时全部命中
	properties.Property("text compared with itself is fully present", prop.ForAll(
		func(current string) bool {
			for i, present := range PresentMask(current, current, DefaultSimilarityThreshold) {
				runes := []rune(current)
				if !present && !isBlankRange(runes, Range{Start: i, End: i + 1}) {
					return false
				}
			}
			return true
		},
		docGen(),
	))

	properties.TestingRun(t)
}

// TestPresentMask_MoveTolerance 段落交换后内容不应被判定为缺失
// 这是移动感知匹配存在的根本理由
func TestPresentMask_MoveTolerance(t *testing.T) {
	current := "Para2\n\nPara1"
	other := "Para1\n\nPara2"

	mask := PresentMask(current, other, DefaultSimilarityThreshold)

	if len(mask) != 12 {
		t.Fatalf("mask length = %d, want 12", len(mask))
	}
	for i, present := range mask {
		// 仅段落分隔空行（下标 6）无对应内容
		if i == 6 {
			if present {
				t.Errorf("separator blank line at %d unexpectedly present", i)
			}
			continue
		}
		if !present {
			t.Errorf("moved content at %d judged absent", i)
		}
	}
}

func TestPresentMask_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		other     string
		threshold float64
		want      []bool
	}{
		{
			name:      "完全无关的文本全部缺失",
			current:   "abcdef",
			other:     "xyzuvw",
			threshold: DefaultSimilarityThreshold,
			want:      []bool{false, false, false, false, false, false},
		},
		{
			name:      "同段落行匹配后不再被复用",
			current:   "A\nA\nA",
			other:     "A",
			threshold: DefaultSimilarityThreshold,
			want:      []bool{true, true, false, false, false},
		},
		{
			name:      "调低阈值允许较弱的行配对",
			current:   "hello world",
			other:     "hello might",
			threshold: 0.5,
			want:      []bool{true, true, true, true, true, true, false, false, false, false, false},
		},
		{
			name:      "默认阈值拒绝同一对文本",
			current:   "hello world",
			other:     "hello might",
			threshold: DefaultSimilarityThreshold,
			want:      []bool{false, false, false, false, false, false, false, false, false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PresentMask(tt.current, tt.other, tt.threshold)
			if len(got) != len(tt.want) {
				t.Fatalf("mask length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("mask[%d] = %v, want %v (current=%q other=%q)", i, got[i], tt.want[i], tt.current, tt.other)
				}
			}
		})
	}
}

// TestPresentMask_LineConsumption 行级配对消耗候选行后不再复用
// other 仅有一行 dog，current 的三行同文只有第一行能命中
func TestPresentMask_LineConsumption(t *testing.T) {
	current := "dog\ndog\ndog"
	other := "dog"

	mask := PresentMask(current, other, DefaultSimilarityThreshold)

	want := []bool{true, true, true, true, false, false, false, false, false, false, false}
	if len(mask) != len(want) {
		t.Fatalf("mask length = %d, want %d", len(mask), len(want))
	}
	for i := range mask {
		if mask[i] != want[i] {
			t.Errorf("mask[%d] = %v, want %v", i, mask[i], want[i])
		}
	}
}
