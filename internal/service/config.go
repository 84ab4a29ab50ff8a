// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Versioning VersioningServiceConfig // Versioning policy config // 版本策略配置
}

// VersioningServiceConfig versioning policy configuration
// VersioningServiceConfig 版本保留策略配置
type VersioningServiceConfig struct {
	Enabled            bool  // Whether auto versioning is enabled // 是否启用自动建版
	SaveIntervalMs     int64 // Retention gate elapsed threshold in ms, one of 30000/60000/120000/300000 // 建版最小间隔（毫秒）
	MinChangeChars     int   // Retention gate changed chars threshold // 建版最小变更字符数
	MaxRegularVersions int   // Regular version cap per note, minimum 10 // 每笔记常规版本上限
	DiffOpsMaxChars    int   // Skip DiffOpsJSON precompute above this content length // 超过该长度不预计算编辑操作
}

// 版本保留策略默认值
// Retention policy defaults
const (
	DefaultSaveIntervalMs     = 60000
	DefaultMinChangeChars     = 140
	DefaultMaxRegularVersions = 100
	MinRegularVersionsFloor   = 10
	DefaultDiffOpsMaxChars    = 200000
)

// normalize 填充零值并收紧到合法范围
func (c *VersioningServiceConfig) normalize() {
	if c.SaveIntervalMs <= 0 {
		c.SaveIntervalMs = DefaultSaveIntervalMs
	}
	if c.MinChangeChars <= 0 {
		c.MinChangeChars = DefaultMinChangeChars
	}
	if c.MaxRegularVersions <= 0 {
		c.MaxRegularVersions = DefaultMaxRegularVersions
	}
	if c.MaxRegularVersions < MinRegularVersionsFloor {
		c.MaxRegularVersions = MinRegularVersionsFloor
	}
	if c.DiffOpsMaxChars <= 0 {
		c.DiffOpsMaxChars = DefaultDiffOpsMaxChars
	}
}
