package diff

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// 验证相似度计算的数学性质

func TestProperty_SimilarityLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// 自相似：任意文本与自身的相似度为 1
	properties.Property("identical texts score 1.0", prop.ForAll(
		func(s string) bool {
			return Similarity(s, s) == 1.0
		},
		gen.AnyString(),
	))

	// 对称性
	properties.Property("similarity is symmetric", prop.ForAll(
		func(a, b string) bool {
			return Similarity(a, b) == Similarity(b, a)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	// 值域 [0, 1]
	properties.Property("ratio stays within [0,1]", prop.ForAll(
		func(a, b string) bool {
			r := Similarity(a, b)
			return r >= 0.0 && r <= 1.0
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	// 非空对空串的相似度为 0
	properties.Property("non-empty vs empty scores 0.0", prop.ForAll(
		func(s string) bool {
			return Similarity(s, "") == 0.0 && Similarity("", s) == 0.0
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t)
}

func TestSimilarity_Examples(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "两个空串视为相同",
			a:    "",
			b:    "",
			want: 1.0,
		},
		{
			name: "仅一侧为空",
			a:    "x",
			b:    "",
			want: 0.0,
		},
		{
			name: "完全相同的段落",
			a:    "今天早起跑步了",
			b:    "今天早起跑步了",
			want: 1.0,
		},
		{
			name: "单字符差异",
			a:    "abc",
			b:    "abd",
			want: 2.0 * 2.0 / 6.0,
		},
		{
			name: "中文单字符差异按字符计",
			a:    "笔记本",
			b:    "笔记簿",
			want: 2.0 * 2.0 / 6.0,
		},
		{
			name: "经典编辑距离样例",
			a:    "kitten",
			b:    "sitting",
			want: 2.0 * 4.0 / 13.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
