// Package timex 提供可在 JSON 与数据库之间安全转换的时间类型
// Package timex provides a time type that converts safely between JSON and the database
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// layout 序列化使用的时间格式
const layout = "2006-01-02 15:04:05"

// Time 是 time.Time 的别名类型，统一 JSON 与数据库的时间表示
// Time is an alias type of time.Time unifying the JSON and database representations
type Time time.Time

// Now 返回当前时间
func Now() Time {
	return Time(time.Now())
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

// IsZero 判断是否为零值时间
func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

// Format 按指定格式输出时间
func (t Time) Format(f string) string {
	return time.Time(t).Format(f)
}

func (t Time) String() string {
	return time.Time(t).Format(layout)
}

// MarshalJSON 实现 json.Marshaler，零值序列化为 null
// MarshalJSON implements json.Marshaler, the zero value serializes to null
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + time.Time(t).Format(layout) + `"`), nil
}

// UnmarshalJSON 实现 json.Unmarshaler，接受 null、空串与标准格式
// UnmarshalJSON implements json.Unmarshaler, accepting null, empty string and the standard layout
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time(time.Time{})
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		// 兼容 RFC3339 格式
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*t = Time(parsed)
	return nil
}

// Value 实现 driver.Valuer，零值写入 NULL
// Value implements driver.Valuer, the zero value is stored as NULL
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan 实现 sql.Scanner，支持数据库返回的多种时间表示
// Scan implements sql.Scanner, supporting the time representations drivers return
func (t *Time) Scan(v interface{}) error {
	switch value := v.(type) {
	case nil:
		*t = Time(time.Time{})
		return nil
	case time.Time:
		*t = Time(value)
		return nil
	case []byte:
		return t.scanString(string(value))
	case string:
		return t.scanString(value)
	default:
		return fmt.Errorf("can not convert %v to timex.Time", v)
	}
}

func (t *Time) scanString(s string) error {
	if s == "" {
		*t = Time(time.Time{})
		return nil
	}
	parsed, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*t = Time(parsed)
	return nil
}
