package code

// Success codes
// 成功码
var (
	Success = NewSuss(0, lang{en: "success", zh_cn: "成功"})
)

// Common errors
// 通用错误
var (
	ErrorInvalidParams  = NewError(10001, lang{en: "invalid params", zh_cn: "入参错误"})
	ErrorServerInternal = NewError(20000, lang{en: "server internal error", zh_cn: "服务内部错误"})
	ErrorDBQuery        = NewError(20001, lang{en: "database query error", zh_cn: "数据库查询错误"})
	ErrorContentRead    = NewError(20002, lang{en: "version content read error", zh_cn: "版本内容读取错误"})
	ErrorContentWrite   = NewError(20003, lang{en: "version content write error", zh_cn: "版本内容写入错误"})
)

// Note and version errors
// 笔记与版本错误
var (
	ErrorNoteNotFound        = NewError(10201, lang{en: "note not found", zh_cn: "笔记不存在"})
	ErrorVersionNotFound     = NewError(10202, lang{en: "version not found", zh_cn: "版本不存在"})
	ErrorVersionNoteMismatch = NewError(10203, lang{en: "version does not belong to the note", zh_cn: "版本不属于该笔记"})
	ErrorRollbackFailed      = NewError(10204, lang{en: "rollback failed", zh_cn: "版本回滚失败"})
)

// Archive and storage errors
// 归档与存储错误
var (
	ErrorStorageNotFound      = NewError(10301, lang{en: "archive storage not found", zh_cn: "归档存储不存在"})
	ErrorStorageTypeUnknown   = NewError(10302, lang{en: "unknown archive storage type", zh_cn: "未知的归档存储类型"})
	ErrorStorageConfigInvalid = NewError(10303, lang{en: "archive storage config invalid", zh_cn: "归档存储配置无效"})
	ErrorArchiveExportFailed  = NewError(10304, lang{en: "archive export failed", zh_cn: "归档导出失败"})
)

// Upgrade errors
// 升级错误
var (
	ErrorUpgradeFailed      = NewError(10401, lang{en: "data upgrade failed", zh_cn: "数据升级失败"})
	ErrorConfigVersionNewer = NewError(10402, lang{en: "config was written by a newer release", zh_cn: "配置由更新的发行版写入"})
	ErrorConfigInvalid      = NewError(10403, lang{en: "config validation failed", zh_cn: "配置校验失败"})
)
