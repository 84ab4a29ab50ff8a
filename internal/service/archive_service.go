// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/domain"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/dto"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/convert"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/logger"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/metrics"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/timex"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/workerpool"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// archiveManifest describes one export run of a note's version history
// archiveManifest 描述一次笔记版本历史的导出
type archiveManifest struct {
	NoteID     int64                  `json:"noteId"`
	Title      string                 `json:"title"`
	RunID      string                 `json:"runId"`
	ExportedAt timex.Time             `json:"exportedAt"`
	Versions   []archiveManifestEntry `json:"versions"`
}

// archiveManifestEntry 清单中的单个版本条目，内容存放在 ContentFile 指向的文件
type archiveManifestEntry struct {
	ID                int64     `json:"id"`
	ContentHash       string    `json:"contentHash"`
	ChangedChars      int       `json:"changedChars"`
	ChangeDescription string    `json:"changeDescription"`
	CustomName        string    `json:"customName,omitempty"`
	AIProvider        string    `json:"aiProvider,omitempty"`
	AIModel           string    `json:"aiModel,omitempty"`
	AIDurationMs      int64     `json:"aiDurationMs,omitempty"`
	ContentFile       string    `json:"contentFile"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ArchiveService defines the version history export service interface
// ArchiveService 定义版本历史归档服务接口
type ArchiveService interface {
	// ExportNote exports a note's full version history to the configured storage
	// ExportNote 将笔记的全部版本历史导出到配置的存储
	ExportNote(ctx context.Context, noteID int64) (*dto.ArchiveResultDTO, error)

	// ExportAll exports every note that has versions
	// Per note failures are logged and counted, not propagated
	// ExportAll 导出所有存在版本的笔记，单笔记失败记录日志与指标，不中断
	ExportAll(ctx context.Context) (*dto.ArchiveSweepDTO, error)

	// Shutdown waits for in-flight exports to finish
	// Shutdown 等待进行中的导出完成
	Shutdown(ctx context.Context)
}

// archiveService implementation of ArchiveService interface
// archiveService 实现 ArchiveService 接口
type archiveService struct {
	versionRepo domain.VersionRepository // Version repository // 版本仓库
	noteRepo    domain.NoteRepository    // Note repository // 笔记仓库
	store       storage.Storager         // Export target // 导出目标存储
	provider    string                   // Storage type label // 存储类型标签
	workerPool  *workerpool.Pool         // Worker pool for parallel uploads // 并行上传池
	logger      *zap.Logger              // Logger // 日志对象

	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewArchiveService creates ArchiveService instance
// The store may be nil when no archive storage is configured
// NewArchiveService 创建 ArchiveService 实例，未配置归档存储时 store 可为 nil
func NewArchiveService(versionRepo domain.VersionRepository, noteRepo domain.NoteRepository, store storage.Storager, provider string, pool *workerpool.Pool, lg *zap.Logger) ArchiveService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &archiveService{
		versionRepo: versionRepo,
		noteRepo:    noteRepo,
		store:       store,
		provider:    provider,
		workerPool:  pool,
		logger:      lg,
	}
}

// ExportNote exports a note's full version history
// ExportNote 导出笔记的全部版本历史
func (s *archiveService) ExportNote(ctx context.Context, noteID int64) (*dto.ArchiveResultDTO, error) {
	if s.store == nil {
		return nil, code.ErrorStorageNotFound
	}
	if s.closed.Load() {
		return nil, code.ErrorArchiveExportFailed.WithDetails("service is shutting down")
	}
	s.wg.Add(1)
	defer s.wg.Done()

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	versions, err := s.versionRepo.ListByNoteID(ctx, noteID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	runID := fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), uuid.NewString())
	basePath := fmt.Sprintf("archives/%d/%s", noteID, runID)

	// 并行上传各版本内容文件
	// Version content files are uploaded in parallel
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range versions {
		v := v
		g.Go(func() error {
			return s.runUpload(gctx, func(context.Context) error {
				pathKey := fmt.Sprintf("%s/%s", basePath, versionContentName(v.ID))
				if _, err := s.store.SendContent(pathKey, []byte(v.Content), v.CreatedAt); err != nil {
					return fmt.Errorf("upload %s: %w", pathKey, err)
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		metrics.ArchiveExports.WithLabelValues(s.provider, "failure").Inc()
		return nil, code.ErrorArchiveExportFailed.WithDetails(err.Error())
	}

	manifest := &archiveManifest{
		NoteID:     noteID,
		Title:      note.Title,
		RunID:      runID,
		ExportedAt: timex.Now(),
		Versions:   make([]archiveManifestEntry, 0, len(versions)),
	}
	for _, v := range versions {
		entry := archiveManifestEntry{}
		convert.StructAssign(v, &entry)
		entry.ContentFile = versionContentName(v.ID)
		manifest.Versions = append(manifest.Versions, entry)
	}

	data, err := sonic.Marshal(manifest)
	if err != nil {
		metrics.ArchiveExports.WithLabelValues(s.provider, "failure").Inc()
		return nil, code.ErrorArchiveExportFailed.WithDetails(err.Error())
	}
	manifestPath, err := s.store.SendContent(basePath+"/manifest.json", data, time.Now())
	if err != nil {
		metrics.ArchiveExports.WithLabelValues(s.provider, "failure").Inc()
		return nil, code.ErrorArchiveExportFailed.WithDetails(err.Error())
	}

	metrics.ArchiveExports.WithLabelValues(s.provider, "success").Inc()
	s.logger.Info("service log",
		zap.String("service", "archive"),
		zap.String(logger.FieldAction, "ExportNote"),
		zap.Int64(logger.FieldNoteID, noteID),
		zap.String("runId", runID),
		zap.Int(logger.FieldCount, len(versions)))

	return &dto.ArchiveResultDTO{
		NoteID:       noteID,
		Provider:     s.provider,
		ManifestPath: manifestPath,
		VersionCount: len(versions),
		RunID:        runID,
	}, nil
}

// ExportAll exports every note that has versions
// ExportAll 导出所有存在版本的笔记
func (s *archiveService) ExportAll(ctx context.Context) (*dto.ArchiveSweepDTO, error) {
	if s.store == nil {
		return nil, code.ErrorStorageNotFound
	}

	ids, err := s.versionRepo.ListNoteIDs(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	sweep := &dto.ArchiveSweepDTO{}
	for _, id := range ids {
		if s.closed.Load() {
			break
		}
		select {
		case <-ctx.Done():
			s.logger.Warn("service log",
				zap.String("service", "archive"),
				zap.String(logger.FieldAction, "ExportAll"),
				zap.String(logger.FieldReason, "canceled"),
				zap.Int("exported", sweep.Exported),
				zap.Int("failed", sweep.Failed))
			return sweep, ctx.Err()
		default:
		}

		if _, err := s.ExportNote(ctx, id); err != nil {
			sweep.Failed++
			s.logger.Warn("service log",
				zap.String("service", "archive"),
				zap.String(logger.FieldAction, "ExportAll"),
				zap.Int64(logger.FieldNoteID, id),
				zap.Error(err))
			continue
		}
		sweep.Exported++
	}

	s.logger.Info("service log",
		zap.String("service", "archive"),
		zap.String(logger.FieldAction, "ExportAll"),
		zap.Int("exported", sweep.Exported),
		zap.Int("failed", sweep.Failed))
	return sweep, nil
}

// Shutdown waits for in-flight exports to finish
// Shutdown 等待进行中的导出完成
func (s *archiveService) Shutdown(ctx context.Context) {
	s.closed.Store(true)
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("service log",
			zap.String("service", "archive"),
			zap.String(logger.FieldAction, "Shutdown"),
			zap.String(logger.FieldReason, "timeout waiting for exports"))
	}
}

// runUpload executes an upload through the worker pool when one is attached
// Falls back to inline execution when the pool is saturated or closed
// runUpload 通过工作池执行上传，池满或已关闭时就地执行
func (s *archiveService) runUpload(ctx context.Context, fn func(context.Context) error) error {
	if s.workerPool == nil {
		return fn(ctx)
	}
	err := s.workerPool.Submit(ctx, fn)
	if errors.Is(err, workerpool.ErrWorkerPoolFull) || errors.Is(err, workerpool.ErrWorkerPoolClosed) {
		return fn(ctx)
	}
	return err
}

func versionContentName(versionID int64) string {
	return fmt.Sprintf("v_%d.txt", versionID)
}

// Verify archiveService implements ArchiveService interface
// 确保 archiveService 实现了 ArchiveService 接口
var _ ArchiveService = (*archiveService)(nil)
