package code

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLangSwitch(t *testing.T) {
	prev := GetGlobalDefaultLang()
	defer SetGlobalDefaultLang(prev)

	assert.NoError(t, SetGlobalDefaultLang("zh_cn"))
	assert.Equal(t, "zh_cn", GetGlobalDefaultLang())
	assert.Equal(t, "版本不存在", ErrorVersionNotFound.Msg())

	assert.NoError(t, SetGlobalDefaultLang("en"))
	assert.Equal(t, "version not found", ErrorVersionNotFound.Msg())

	// 无效语言回退到英文
	assert.Error(t, SetGlobalDefaultLang("fr"))
	assert.Equal(t, "en", GetGlobalDefaultLang())
}

func TestCodeDetails(t *testing.T) {
	e := ErrorArchiveExportFailed.Clone()
	assert.False(t, e.HaveDetails())

	e.WithDetails("note 42", "version 7")
	assert.True(t, e.HaveDetails())
	assert.Equal(t, []string{"note 42", "version 7"}, e.Details())
	assert.Contains(t, e.Error(), e.Msg())

	// Clone 不携带原对象的详情
	fresh := e.Clone()
	assert.False(t, fresh.HaveDetails())
	assert.Empty(t, fresh.Details())
	assert.Equal(t, e.Code(), fresh.Code())
}

func TestCodeAsError(t *testing.T) {
	wrapped := fmt.Errorf("cleanup pass: %w", ErrorDBQuery)

	var c *Code
	assert.True(t, errors.As(wrapped, &c))
	assert.Equal(t, ErrorDBQuery.Code(), c.Code())
	assert.True(t, errors.Is(wrapped, ErrorDBQuery))

	assert.False(t, ErrorDBQuery.Status())
	assert.True(t, Success.Status())
}
