package util

import "strconv"

// EncodeHash32 计算内容的 32 位滚动哈希，返回十进制字符串
// 逐 rune 累加 hash*31+char，int32 溢出自动回绕
func EncodeHash32(content string) string {
	var hash int32 = 0
	for _, r := range content {
		hash = (hash << 5) - hash + int32(r)
	}
	return strconv.Itoa(int(hash))
}
