// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/domain"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/dto"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/diff"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/logger"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/metrics"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/timex"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/util"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/workerpool"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// VersionEditMsg note edited event consumed by the autosave task
// VersionEditMsg 笔记编辑事件，自动建版任务消费
type VersionEditMsg struct {
	NoteID int64
}

// VersionEditChannel 笔记编辑事件通道
var VersionEditChannel = make(chan VersionEditMsg, 4096)

// VersionEditPush 投递编辑事件
// 通道满时丢弃，后续编辑会再次投递
func VersionEditPush(noteID int64) {
	select {
	case VersionEditChannel <- VersionEditMsg{NoteID: noteID}:
	default:
	}
}

// VersionService defines the version history business service interface
// VersionService 定义版本历史业务服务接口
type VersionService interface {
	// RecordEdit applies the retention gate to a note edit and captures a version when it passes
	// Storage failures are swallowed and logged, only an unreadable note returns an error
	// RecordEdit 对笔记编辑应用保留门槛，通过时捕获版本
	// 存储失败吞掉并记录日志，仅笔记不可读时返回错误
	RecordEdit(ctx context.Context, noteID int64) error

	// ForceSave captures a version unconditionally, bypassing the retention gate
	// ForceSave 无条件捕获版本，绕过保留门槛
	ForceSave(ctx context.Context, noteID int64) (*dto.VersionDTO, error)

	// Rollback restores note content from a version
	// A pre-rollback backup version is always created first
	// Rollback 将笔记内容恢复到指定版本
	// 恢复前总是先创建回滚前备份版本
	Rollback(ctx context.Context, noteID int64, versionID int64) (*dto.RollbackResultDTO, error)

	// List retrieves the version list for a note, newest first, with per item
	// similarity to the chronological predecessor
	// List 获取笔记的版本列表（新在前），含与前一版本的相似度
	List(ctx context.Context, noteID int64) ([]*dto.VersionListItemDTO, error)

	// Get retrieves a version with full content
	// Get 获取指定版本的完整内容
	Get(ctx context.Context, versionID int64) (*dto.VersionDTO, error)

	// DiffAgainstNeighbors classifies every character of a version against its
	// positional neighbors in the time ordered list
	// DiffAgainstNeighbors 相对时间序相邻版本对每个字符做差异分类
	DiffAgainstNeighbors(ctx context.Context, versionID int64) (*dto.HighlightDTO, error)

	// EditOps returns the edit operations against the chronological predecessor,
	// stored ops when present, recomputed otherwise
	// EditOps 返回相对前一版本的编辑操作，优先使用预存结果
	EditOps(ctx context.Context, versionID int64) ([]diff.EditOp, error)

	// Rename updates the user facing version name, the only mutable field
	// Rename 更新版本的用户命名（唯一可变字段）
	Rename(ctx context.Context, versionID int64, name string) error

	// SetAIMetadata records which automation produced a version
	// SetAIMetadata 记录版本的 AI 来源元数据
	SetAIMetadata(ctx context.Context, versionID int64, provider, model string, durationMs int64) error

	// Delete removes a single version
	// Delete 删除单个版本
	Delete(ctx context.Context, versionID int64) error

	// DeleteAllForNote removes every version of a note, named ones included
	// DeleteAllForNote 删除笔记的全部版本（含命名版本）
	DeleteAllForNote(ctx context.Context, noteID int64) error

	// CleanupNow evicts regular versions beyond an explicit keep count immediately
	// CleanupNow 立即淘汰超出保留数量的常规版本
	CleanupNow(ctx context.Context, noteID int64, keepCount int) (int, error)

	// CleanupExcessFor re-applies the configured cap to one note, used by the periodic sweep
	// CleanupExcessFor 对单个笔记重新应用容量上限，周期清理任务使用
	CleanupExcessFor(ctx context.Context, noteID int64) (int, error)

	// NoteIDs lists every note that has versions
	// NoteIDs 列出存在版本的全部笔记
	NoteIDs(ctx context.Context) ([]int64, error)
}

// versionService implementation of VersionService interface
// versionService 实现 VersionService 接口
type versionService struct {
	versionRepo domain.VersionRepository // Version repository // 版本仓库
	noteRepo    domain.NoteRepository    // Note repository // 笔记仓库
	workerPool  *workerpool.Pool         // Worker pool for parallel diffs // 并行差异计算池
	sf          *singleflight.Group      // Singleflight group // 并发请求合并组
	logger      *zap.Logger              // Logger // 日志对象
	config      *VersioningServiceConfig // Retention policy config // 保留策略配置
}

// NewVersionService creates VersionService instance
// NewVersionService 创建 VersionService 实例
func NewVersionService(versionRepo domain.VersionRepository, noteRepo domain.NoteRepository, pool *workerpool.Pool, lg *zap.Logger, config *VersioningServiceConfig) VersionService {
	if config == nil {
		config = &VersioningServiceConfig{Enabled: true}
	}
	cfg := *config
	cfg.normalize()
	if lg == nil {
		lg = zap.NewNop()
	}
	return &versionService{
		versionRepo: versionRepo,
		noteRepo:    noteRepo,
		workerPool:  pool,
		sf:          &singleflight.Group{},
		logger:      lg,
		config:      &cfg,
	}
}

// domainToDTO converts domain model to DTO
// domainToDTO 将领域模型转换为 DTO
func (s *versionService) domainToDTO(v *domain.Version) *dto.VersionDTO {
	if v == nil {
		return nil
	}
	return &dto.VersionDTO{
		ID:                v.ID,
		NoteID:            v.NoteID,
		Content:           v.Content,
		ContentHash:       v.ContentHash,
		ChangedChars:      v.ChangedChars,
		ChangeDescription: v.ChangeDescription,
		CustomName:        v.CustomName,
		AIProvider:        v.AIProvider,
		AIModel:           v.AIModel,
		AIDurationMs:      v.AIDurationMs,
		CreatedAt:         timex.Time(v.CreatedAt),
	}
}

// RecordEdit applies the retention gate and captures a version when it passes
// RecordEdit 应用保留门槛，通过时捕获版本
func (s *versionService) RecordEdit(ctx context.Context, noteID int64) error {
	if !s.config.Enabled {
		metrics.AutosaveSkipped.WithLabelValues("disabled").Inc()
		return nil
	}

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorNoteNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	// 无基线的笔记无条件获得首个版本
	// A note without a baseline gets its first version unconditionally
	if !note.HasVersionBaseline() {
		if _, err := s.createVersion(ctx, note, domain.ChangeInitialCreate, "initial", diff.ChangedChars("", note.Content)); err != nil {
			s.logger.Warn("service log",
				zap.String("service", "version"),
				zap.String(logger.FieldAction, "RecordEdit"),
				zap.Int64(logger.FieldNoteID, noteID),
				zap.String(logger.FieldReason, "initial version create failed"),
				zap.Error(err))
			metrics.AutosaveSkipped.WithLabelValues("storage").Inc()
		}
		return nil
	}

	if note.Content == note.VersionSnapshot {
		metrics.AutosaveSkipped.WithLabelValues("unchanged").Inc()
		return nil
	}

	elapsed := time.Since(note.LastVersionAt)
	if elapsed < time.Duration(s.config.SaveIntervalMs)*time.Millisecond {
		metrics.AutosaveSkipped.WithLabelValues("interval").Inc()
		return nil
	}

	changed := diff.ChangedChars(note.VersionSnapshot, note.Content)
	if changed < s.config.MinChangeChars {
		metrics.AutosaveSkipped.WithLabelValues("few_changes").Inc()
		return nil
	}

	if _, err := s.createVersion(ctx, note, domain.ChangeAutosave, "autosave", changed); err != nil {
		s.logger.Warn("service log",
			zap.String("service", "version"),
			zap.String(logger.FieldAction, "RecordEdit"),
			zap.Int64(logger.FieldNoteID, noteID),
			zap.String(logger.FieldReason, "autosave create failed"),
			zap.Error(err))
		metrics.AutosaveSkipped.WithLabelValues("storage").Inc()
	}
	return nil
}

// ForceSave captures a version unconditionally
// ForceSave 无条件捕获版本
func (s *versionService) ForceSave(ctx context.Context, noteID int64) (*dto.VersionDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	description := domain.ChangeForcedSave
	reason := "forced"
	if !note.HasVersionBaseline() {
		description = domain.ChangeInitialCreate
		reason = "initial"
	}

	created, err := s.createVersion(ctx, note, description, reason, diff.ChangedChars(note.VersionSnapshot, note.Content))
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.domainToDTO(created), nil
}

// Rollback restores note content from a version
// Rollback 将笔记内容恢复到指定版本
func (s *versionService) Rollback(ctx context.Context, noteID int64, versionID int64) (*dto.RollbackResultDTO, error) {
	source, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if source.NoteID != noteID {
		return nil, code.ErrorVersionNoteMismatch
	}

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	// 1. Pre-rollback backup of the current content, unconditional
	// 1. 无条件备份当前内容
	backup, err := s.createVersion(ctx, note, domain.ChangeRollbackBackup, "backup", diff.ChangedChars(note.VersionSnapshot, note.Content))
	if err != nil {
		return nil, code.ErrorRollbackFailed.WithDetails("backup create failed: " + err.Error())
	}

	// 2. Write the restored content back to the note
	// Failure here keeps the note untouched and the backup retained
	// 2. 将恢复内容写回笔记，失败时笔记保持原样、备份保留
	if err := s.noteRepo.UpdateContent(ctx, noteID, source.Content); err != nil {
		return nil, code.ErrorRollbackFailed.WithDetails("content restore failed: " + err.Error())
	}

	// 3. Record the rollback itself as a version
	// Content is already restored, so a failure is logged, not surfaced
	// 3. 将回滚本身记录为版本，内容已恢复，失败只记录日志
	restored := *note
	restored.Content = source.Content
	restored.VersionSnapshot = note.Content
	rollbackVersionID := int64(0)
	rollbackVersion, err := s.createVersion(ctx, &restored, domain.RollbackChangeDescription(versionID), "rollback", diff.ChangedChars(note.Content, source.Content))
	if err != nil {
		s.logger.Warn("service log",
			zap.String("service", "version"),
			zap.String(logger.FieldAction, "Rollback"),
			zap.Int64(logger.FieldNoteID, noteID),
			zap.Int64(logger.FieldVersionID, versionID),
			zap.String(logger.FieldReason, "rollback version create failed"),
			zap.Error(err))
	} else {
		rollbackVersionID = rollbackVersion.ID
	}

	s.logger.Info("service log",
		zap.String("service", "version"),
		zap.String(logger.FieldAction, "Rollback"),
		zap.Int64(logger.FieldNoteID, noteID),
		zap.Int64(logger.FieldVersionID, versionID),
		zap.Int64("backupVersionId", backup.ID))

	return &dto.RollbackResultDTO{
		NoteID:            noteID,
		SourceVersionID:   versionID,
		BackupVersionID:   backup.ID,
		RollbackVersionID: rollbackVersionID,
		RestoredChars:     len([]rune(source.Content)),
	}, nil
}

// List retrieves the version list with per item similarity to the predecessor
// List 获取版本列表，含与前一版本的相似度
func (s *versionService) List(ctx context.Context, noteID int64) ([]*dto.VersionListItemDTO, error) {
	versions, err := s.versionRepo.ListByNoteID(ctx, noteID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if len(versions) == 0 {
		return []*dto.VersionListItemDTO{}, nil
	}

	items := make([]*dto.VersionListItemDTO, len(versions))
	for i, v := range versions {
		items[i] = &dto.VersionListItemDTO{
			ID:                v.ID,
			NoteID:            v.NoteID,
			ChangedChars:      v.ChangedChars,
			ChangeDescription: v.ChangeDescription,
			CustomName:        v.CustomName,
			Similarity:        -1,
			AIProvider:        v.AIProvider,
			AIModel:           v.AIModel,
			AIDurationMs:      v.AIDurationMs,
			CreatedAt:         timex.Time(v.CreatedAt),
		}
	}

	// 与时间上前一版本的相似度并行计算
	// versions 为倒序，i 的前驱是 i+1
	// Similarity against the chronological predecessor, computed in parallel
	// The list is newest first, so the predecessor of i is i+1
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < len(versions)-1; i++ {
		i := i
		g.Go(func() error {
			return s.runDiffTask(gctx, func(context.Context) error {
				items[i].Similarity = s.similarityBetween(versions[i+1], versions[i])
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	return items, nil
}

// Get retrieves a version with full content
// Get 获取版本完整内容
func (s *versionService) Get(ctx context.Context, versionID int64) (*dto.VersionDTO, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.domainToDTO(v), nil
}

// DiffAgainstNeighbors classifies every character against the positional neighbors
// DiffAgainstNeighbors 相对位置相邻版本做逐字符差异分类
func (s *versionService) DiffAgainstNeighbors(ctx context.Context, versionID int64) (*dto.HighlightDTO, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	prev, next, err := s.neighborsOf(ctx, v)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	var prevID, nextID int64
	var prevContent, nextContent *string
	if prev != nil {
		prevID = prev.ID
		prevContent = &prev.Content
	}
	if next != nil {
		nextID = next.ID
		nextContent = &next.Content
	}

	// 同一三元组的并发请求合并为一次计算
	// Concurrent requests for the same triple share one computation
	key := fmt.Sprintf("hl:%d:%d:%d", prevID, v.ID, nextID)
	spansAny, err, _ := s.sf.Do(key, func() (out interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("diff computation panic: %v", r)
			}
		}()
		start := time.Now()
		spans := diff.DiffAgainstNeighbors(v.Content, prevContent, nextContent)
		metrics.DiffDuration.Observe(time.Since(start).Seconds())
		return spans, nil
	})
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	spans := spansAny.([]diff.CharSpan)

	added, removed := 0, 0
	for _, sp := range spans {
		switch sp.Class {
		case diff.Added:
			added++
		case diff.Removed:
			removed++
		}
	}

	return &dto.HighlightDTO{
		VersionID:     v.ID,
		NoteID:        v.NoteID,
		PrevVersionID: prevID,
		NextVersionID: nextID,
		Spans:         spans,
		AddedChars:    added,
		RemovedChars:  removed,
	}, nil
}

// EditOps returns the edit operations against the chronological predecessor
// EditOps 返回相对前一版本的编辑操作
func (s *versionService) EditOps(ctx context.Context, versionID int64) ([]diff.EditOp, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	if v.DiffOpsJSON != "" {
		var ops []diff.EditOp
		if err := sonic.UnmarshalString(v.DiffOpsJSON, &ops); err == nil {
			return ops, nil
		}
		s.logger.Warn("service log",
			zap.String("service", "version"),
			zap.String(logger.FieldAction, "EditOps"),
			zap.Int64(logger.FieldVersionID, versionID),
			zap.String(logger.FieldReason, "stored ops unparsable, recomputing"))
	}

	prev, _, err := s.neighborsOf(ctx, v)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	prevContent := ""
	if prev != nil {
		prevContent = prev.Content
	}
	return diff.ComputeEditOps(prevContent, v.Content), nil
}

// Rename updates the user facing version name
// Rename 更新版本命名
func (s *versionService) Rename(ctx context.Context, versionID int64, name string) error {
	if err := s.versionRepo.UpdateCustomName(ctx, versionID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorVersionNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	return nil
}

// SetAIMetadata records which automation produced a version
// SetAIMetadata 记录版本的 AI 来源元数据
func (s *versionService) SetAIMetadata(ctx context.Context, versionID int64, provider, model string, durationMs int64) error {
	if err := s.versionRepo.UpdateAIMetadata(ctx, versionID, provider, model, durationMs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorVersionNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	return nil
}

// Delete removes a single version
// Delete 删除单个版本
func (s *versionService) Delete(ctx context.Context, versionID int64) error {
	if err := s.versionRepo.Delete(ctx, versionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorVersionNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	return nil
}

// DeleteAllForNote removes every version of a note
// DeleteAllForNote 删除笔记的全部版本
func (s *versionService) DeleteAllForNote(ctx context.Context, noteID int64) error {
	removed, err := s.versionRepo.DeleteAllByNoteID(ctx, noteID)
	if err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	s.logger.Info("service log",
		zap.String("service", "version"),
		zap.String(logger.FieldAction, "DeleteAllForNote"),
		zap.Int64(logger.FieldNoteID, noteID),
		zap.Int64(logger.FieldCount, removed))
	return nil
}

// CleanupNow evicts regular versions beyond an explicit keep count
// CleanupNow 立即淘汰超出保留数量的常规版本
func (s *versionService) CleanupNow(ctx context.Context, noteID int64, keepCount int) (int, error) {
	if keepCount < 0 {
		return 0, code.ErrorInvalidParams.WithDetails("keepCount must not be negative")
	}
	removed, err := s.evictRegular(ctx, noteID, keepCount)
	if err != nil {
		return removed, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return removed, nil
}

// CleanupExcessFor re-applies the configured cap to one note
// CleanupExcessFor 对单个笔记重新应用容量上限
func (s *versionService) CleanupExcessFor(ctx context.Context, noteID int64) (int, error) {
	return s.evictRegular(ctx, noteID, s.config.MaxRegularVersions)
}

// NoteIDs lists every note that has versions
// NoteIDs 列出存在版本的全部笔记
func (s *versionService) NoteIDs(ctx context.Context) ([]int64, error) {
	return s.versionRepo.ListNoteIDs(ctx)
}

// createVersion captures the note's current content as a new version and
// updates the snapshot bookkeeping, then runs cap eviction
// createVersion 将笔记当前内容捕获为新版本，更新快照记账并执行容量淘汰
func (s *versionService) createVersion(ctx context.Context, note *domain.Note, description, metricReason string, changedChars int) (*domain.Version, error) {
	v := &domain.Version{
		NoteID:            note.ID,
		Content:           note.Content,
		ContentHash:       util.EncodeHash32(note.Content),
		ChangedChars:      changedChars,
		ChangeDescription: description,
		DiffOpsJSON:       s.precomputeDiffOps(note.VersionSnapshot, note.Content),
		CreatedAt:         time.Now(),
	}

	created, err := s.versionRepo.Create(ctx, v)
	if err != nil {
		return nil, err
	}
	metrics.VersionsCreated.WithLabelValues(metricReason).Inc()

	// 快照记账失败不回滚已创建的版本，只影响下一次门槛判定
	// A failed snapshot update does not undo the created version,
	// it only affects the next gate decision
	if err := s.noteRepo.UpdateSnapshot(ctx, note.ID, note.Content, created.ContentHash); err != nil {
		s.logger.Warn("service log",
			zap.String("service", "version"),
			zap.String(logger.FieldAction, "createVersion"),
			zap.Int64(logger.FieldNoteID, note.ID),
			zap.String(logger.FieldReason, "snapshot update failed"),
			zap.Error(err))
	}

	s.cleanupExcess(ctx, note.ID)
	return created, nil
}

// precomputeDiffOps serializes the edit operations against the predecessor content
// Best effort, skipped for very large content
// precomputeDiffOps 预计算相对前一内容的编辑操作，超大内容跳过
func (s *versionService) precomputeDiffOps(oldContent, newContent string) string {
	if len(oldContent) > s.config.DiffOpsMaxChars || len(newContent) > s.config.DiffOpsMaxChars {
		return ""
	}
	ops := diff.ComputeEditOps(oldContent, newContent)
	if len(ops) == 0 {
		return ""
	}
	out, err := sonic.MarshalString(ops)
	if err != nil {
		return ""
	}
	return out
}

// cleanupExcess evicts regular versions beyond the configured cap
// Never fails the surrounding create
// cleanupExcess 淘汰超出配置上限的常规版本，不影响外层创建
func (s *versionService) cleanupExcess(ctx context.Context, noteID int64) {
	removed, err := s.evictRegular(ctx, noteID, s.config.MaxRegularVersions)
	if err != nil {
		s.logger.Warn("service log",
			zap.String("service", "version"),
			zap.String(logger.FieldAction, "cleanupExcess"),
			zap.Int64(logger.FieldNoteID, noteID),
			zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Debug("service log",
			zap.String("service", "version"),
			zap.String(logger.FieldAction, "cleanupExcess"),
			zap.Int64(logger.FieldNoteID, noteID),
			zap.Int(logger.FieldCount, removed))
	}
}

// evictRegular deletes the oldest regular versions beyond keep, FIFO
// Named versions are never candidates
// evictRegular 按先进先出删除超出保留数量的最旧常规版本，命名版本不参与
func (s *versionService) evictRegular(ctx context.Context, noteID int64, keep int) (int, error) {
	candidates, err := s.versionRepo.ListRegularBeyond(ctx, noteID, keep)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, v := range candidates {
		if err := s.versionRepo.Delete(ctx, v.ID); err != nil {
			return removed, err
		}
		removed++
		metrics.VersionsEvicted.Inc()
	}
	return removed, nil
}

// similarityBetween computes the similarity of two versions' contents,
// deduplicated per ordered pair
// similarityBetween 计算两个版本内容的相似度，按版本对合并并发计算
func (s *versionService) similarityBetween(older, newer *domain.Version) float64 {
	key := fmt.Sprintf("sim:%d:%d", older.ID, newer.ID)
	simAny, _, _ := s.sf.Do(key, func() (interface{}, error) {
		start := time.Now()
		sim := diff.Similarity(older.Content, newer.Content)
		metrics.DiffDuration.Observe(time.Since(start).Seconds())
		return sim, nil
	})
	return simAny.(float64)
}

// neighborsOf locates the positional neighbors of a version in the time ordered list
// Returns (older, newer)
// neighborsOf 在时间序列表中定位版本的相邻版本，返回（更旧，更新）
func (s *versionService) neighborsOf(ctx context.Context, v *domain.Version) (*domain.Version, *domain.Version, error) {
	list, err := s.versionRepo.ListByNoteID(ctx, v.NoteID)
	if err != nil {
		return nil, nil, err
	}

	idx := -1
	for i, item := range list {
		if item.ID == v.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, nil
	}

	var prev, next *domain.Version
	if idx+1 < len(list) {
		prev = list[idx+1]
	}
	if idx > 0 {
		next = list[idx-1]
	}
	return prev, next, nil
}

// runDiffTask executes a computation through the worker pool when one is attached
// Falls back to inline execution when the pool is saturated or closed
// runDiffTask 通过工作池执行计算，池满或已关闭时就地执行
func (s *versionService) runDiffTask(ctx context.Context, fn func(context.Context) error) error {
	if s.workerPool == nil {
		return fn(ctx)
	}
	err := s.workerPool.Submit(ctx, fn)
	if errors.Is(err, workerpool.ErrWorkerPoolFull) || errors.Is(err, workerpool.ErrWorkerPoolClosed) {
		return fn(ctx)
	}
	return err
}

// Verify versionService implements VersionService interface
// 确保 versionService 实现了 VersionService 接口
var _ VersionService = (*versionService)(nil)
