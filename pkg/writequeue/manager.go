// Package writequeue 按笔记维度串行化写操作
// 同一笔记的快照更新与版本插入严格 FIFO，互不交错，也避免 SQLite "database is locked"
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 单笔记队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 写操作等待超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每个笔记队列的容量
	QueueCapacity int
	// WriteTimeout 单次写操作的等待上限
	WriteTimeout time.Duration
	// IdleTimeout 空闲队列的回收阈值
	IdleTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

func (c *Config) withDefaults() {
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 100
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 10 * time.Minute
	}
}

// writeOp 入队的单个写操作
type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// lane 单个笔记的串行写通道，一条 lane 绑定一个 worker
type lane struct {
	noteID   int64
	ops      chan writeOp
	stop     chan struct{}
	done     chan struct{}
	lastUsed atomic.Int64
	closed   atomic.Bool
}

func (l *lane) touch() {
	l.lastUsed.Store(time.Now().UnixNano())
}

// Manager 管理所有笔记的写队列，lane 按需创建、空闲回收
type Manager struct {
	cfg    Config
	logger *zap.Logger

	// mu 保护 lanes 与 closed，lane 创建和回收都在写锁内完成
	mu     sync.RWMutex
	lanes  map[int64]*lane
	closed bool

	ctx    context.Context
	cancel context.CancelFunc

	cleanupStop chan struct{}
	cleanupWg   sync.WaitGroup
}

// New 创建写队列管理器并启动空闲回收协程
// cfg 为 nil 时使用默认配置，logger 为 nil 时静默
func New(cfg *Config, logger *zap.Logger) *Manager {
	var c Config
	if cfg != nil {
		c = *cfg
	} else {
		c = DefaultConfig()
	}
	c.withDefaults()

	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		cfg:         c,
		logger:      logger,
		lanes:       make(map[int64]*lane),
		ctx:         ctx,
		cancel:      cancel,
		cleanupStop: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.reapIdleLanes()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute 将写操作提交到笔记所属 lane 并等待执行结果
// 同一笔记的操作按提交顺序执行，队列满时立即返回 ErrWriteQueueFull
func (m *Manager) Execute(ctx context.Context, noteID int64, fn func() error) error {
	l := m.lane(noteID)
	if l == nil {
		return ErrWriteQueueClosed
	}

	op := writeOp{
		ctx:    ctx,
		fn:     fn,
		result: make(chan error, 1),
	}

	select {
	case l.ops <- op:
	default:
		return ErrWriteQueueFull
	}

	// 等待上限取 WriteTimeout 与调用方 deadline 的较小值
	timeout := m.cfg.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	case <-m.ctx.Done():
		return ErrWriteQueueClosed
	}
}

// lane 返回笔记对应的写通道，不存在时创建，管理器已关闭时返回 nil
func (m *Manager) lane(noteID int64) *lane {
	m.mu.RLock()
	l, ok := m.lanes[noteID]
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return nil
	}
	if ok && !l.closed.Load() {
		l.touch()
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	if l, ok = m.lanes[noteID]; ok && !l.closed.Load() {
		l.touch()
		return l
	}

	l = &lane{
		noteID: noteID,
		ops:    make(chan writeOp, m.cfg.QueueCapacity),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	l.touch()
	m.lanes[noteID] = l
	go m.work(l)

	m.logger.Debug("created write queue for note",
		zap.Int64("noteId", noteID),
		zap.Int("capacity", m.cfg.QueueCapacity))

	return l
}

// work 按 FIFO 消费单条 lane，停止前排空积压的操作
func (m *Manager) work(l *lane) {
	defer func() {
		close(l.done)
		m.logger.Debug("write queue worker stopped", zap.Int64("noteId", l.noteID))
	}()

	for {
		select {
		case <-m.ctx.Done():
			m.drain(l)
			return
		case <-l.stop:
			m.drain(l)
			return
		case op := <-l.ops:
			m.run(l, op)
		}
	}
}

func (m *Manager) run(l *lane, op writeOp) {
	l.touch()

	select {
	case <-op.ctx.Done():
		op.result <- op.ctx.Err()
		return
	default:
	}

	op.result <- op.fn()
}

func (m *Manager) drain(l *lane) {
	for {
		select {
		case op := <-l.ops:
			m.run(l, op)
		default:
			return
		}
	}
}

// reapIdleLanes 周期性回收空置的 lane
func (m *Manager) reapIdleLanes() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.cfg.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.cleanupStop:
			return
		case <-ticker.C:
			m.reapOnce()
		}
	}
}

func (m *Manager) reapOnce() {
	now := time.Now().UnixNano()
	threshold := m.cfg.IdleTimeout.Nanoseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	for noteID, l := range m.lanes {
		if now-l.lastUsed.Load() <= threshold || len(l.ops) > 0 {
			continue
		}
		m.logger.Debug("reaping idle write queue",
			zap.Int64("noteId", noteID),
			zap.Duration("idle", time.Duration(now-l.lastUsed.Load())))
		l.closed.Store(true)
		close(l.stop)
		delete(m.lanes, noteID)
	}
}

// Shutdown 停止接收新操作，排空各 lane 后返回
// ctx 到期后放弃等待并强制取消
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	lanes := make([]*lane, 0, len(m.lanes))
	for _, l := range m.lanes {
		lanes = append(lanes, l)
	}
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down", zap.Int("queues", len(lanes)))

	close(m.cleanupStop)
	for _, l := range lanes {
		if !l.closed.Swap(true) {
			close(l.stop)
		}
	}

	finished := make(chan struct{})
	go func() {
		for _, l := range lanes {
			<-l.done
		}
		m.cleanupWg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		m.cancel()
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.cancel()
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		return ctx.Err()
	}
}

// QueueCount 当前存活的 lane 数量
func (m *Manager) QueueCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, l := range m.lanes {
		if !l.closed.Load() {
			n++
		}
	}
	return n
}
