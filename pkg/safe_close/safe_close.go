// Package safe_close provides coordinated shutdown for long running goroutines
// Package safe_close 提供长期运行 goroutine 的协同关闭能力
package safe_close

import (
	"sync"
)

// SafeClose coordinates a group of goroutines that must all finish before the
// process is considered closed
// SafeClose 协调一组 goroutine，全部结束后进程才视为关闭完成
type SafeClose struct {
	wg sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	closeErr  error
	closeChan chan struct{}
}

// NewSafeClose 创建 SafeClose
func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeChan: make(chan struct{}),
	}
}

// Attach starts f in a new goroutine
// f must call done() when it finishes and must return once closeSignal is closed
// Attach 在新 goroutine 中启动 f
// f 结束时必须调用 done()，并在 closeSignal 关闭后尽快返回
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	var once sync.Once
	done := func() {
		once.Do(s.wg.Done)
	}

	go f(done, s.closeChan)
}

// SendCloseSignal closes the signal channel, the first non nil err is kept
// SendCloseSignal 关闭信号通道，保留第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.closeErr = err
	close(s.closeChan)
}

// WaitClosed blocks until every attached goroutine called done
// WaitClosed 阻塞直到所有附加的 goroutine 都调用了 done
func (s *SafeClose) WaitClosed() error {
	<-s.closeChan
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}

// CloseSignal exposes the close channel for select loops
// CloseSignal 暴露关闭通道供 select 使用
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeChan
}
