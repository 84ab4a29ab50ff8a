// Package convert 提供结构体之间的字段复制与转换
package convert

import (
	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
)

// StructAssign copies src fields into dst by matching field names
// StructAssign 按字段名将 src 的值复制到 dst
func StructAssign(src any, dst any) any {
	copier.Copy(dst, src)
	return dst
}

// StructToMap 结构体转 map，按 json 标签序列化
func StructToMap(param any, data map[string]any) error {
	str, err := sonic.Marshal(param)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(str, &data)
}
