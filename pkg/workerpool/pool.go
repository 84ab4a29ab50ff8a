// Package workerpool 限制并发 goroutine 数量的固定大小工作池
// 版本落库、差异计算等重负载操作都经由它调度
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed 工作池已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
	// ErrTaskCancelled 任务在执行前已被取消
	ErrTaskCancelled = errors.New("task was cancelled")
)

// Config 工作池配置
type Config struct {
	// MaxWorkers 并发 worker 上限
	MaxWorkers int
	// QueueSize 等待队列容量
	QueueSize int
	// WarningPercent 活跃度告警阈值，(0,1]
	WarningPercent float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers:     100,
		QueueSize:      1000,
		WarningPercent: 0.8,
	}
}

func (c *Config) withDefaults() {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 100
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	if c.WarningPercent <= 0 || c.WarningPercent > 1 {
		c.WarningPercent = 0.8
	}
}

// job 一次提交的任务及其结果通道
type job struct {
	ctx    context.Context
	run    func(context.Context) error
	result chan<- error
}

// Pool 固定数量 worker 的任务池
type Pool struct {
	cfg    Config
	logger *zap.Logger

	jobs   chan job
	wg     sync.WaitGroup
	active atomic.Int64
	warnAt int64

	ctx    context.Context
	cancel context.CancelFunc

	// mu 保护 closed 与 jobs 的关闭，防止向已关闭通道发送
	mu     sync.RWMutex
	closed bool
}

// New 创建并启动工作池
// cfg 为 nil 时使用默认配置，logger 为 nil 时静默
func New(cfg *Config, logger *zap.Logger) *Pool {
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

	p := &Pool{
		cfg:    c,
		logger: logger,
		jobs:   make(chan job, c.QueueSize),
		warnAt: int64(float64(c.MaxWorkers) * c.WarningPercent),
		ctx:    ctx,
		cancel: cancel,
	}

	p.wg.Add(c.MaxWorkers)
	for i := 0; i < c.MaxWorkers; i++ {
		go p.worker()
	}

	p.logger.Info("worker pool started",
		zap.Int("maxWorkers", c.MaxWorkers),
		zap.Int("queueSize", c.QueueSize))

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			p.execute(j)
		}
	}
}

func (p *Pool) execute(j job) {
	active := p.active.Add(1)
	defer p.active.Add(-1)

	if active >= p.warnAt {
		p.logger.Warn("worker pool approaching capacity",
			zap.Int64("active", active),
			zap.Int("maxWorkers", p.cfg.MaxWorkers))
	}

	var err error
	select {
	case <-j.ctx.Done():
		err = ErrTaskCancelled
	default:
		err = j.run(j.ctx)
	}

	if j.result != nil {
		select {
		case j.result <- err:
		default:
		}
	}
}

// Submit 提交任务并等待执行完成
// 队列满时立即返回 ErrWorkerPoolFull，不阻塞调用方
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	result := make(chan error, 1)

	// 入队在读锁内完成，Shutdown 持写锁关闭通道
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrWorkerPoolClosed
	}
	select {
	case p.jobs <- job{ctx: ctx, run: fn, result: result}:
		p.mu.RUnlock()
	default:
		p.mu.RUnlock()
		return ErrWorkerPoolFull
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrWorkerPoolClosed
	}
}

// ActiveCount 当前正在执行的任务数
func (p *Pool) ActiveCount() int64 {
	return p.active.Load()
}

// QueuedCount 当前排队等待的任务数
func (p *Pool) QueuedCount() int {
	return len(p.jobs)
}

// Shutdown 停止接收新任务并等待存量任务执行完
// ctx 到期后强制取消仍在执行的任务
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.logger.Info("worker pool shutting down",
		zap.Int64("active", p.active.Load()),
		zap.Int("queued", len(p.jobs)))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("worker pool shutdown timeout, forcing cancellation")
		return ctx.Err()
	}
}
