package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldVersionID 版本 ID 字段
	FieldVersionID = "versionId"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldReason 版本创建原因字段
	FieldReason = "reason"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldSize 内容大小字段
	FieldSize = "size"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldProvider 归档存储提供方字段
	FieldProvider = "provider"

	// FieldBucket 存储桶名称字段
	FieldBucket = "bucket"

	// FieldFileKey 文件键字段
	FieldFileKey = "fileKey"
)
