package sender

import (
	"context"
	"sync"

	"github.com/StefanoVidesott/WannaWork-App/internal/notification/domain"
)

// MockSender 记录所有投递调用的测试端口
type MockSender struct {
	mu sync.Mutex
	// FailWith 非空时每次 Dispatch 返回该错误
	FailWith error
	events   []domain.Event
}

// NewMockSender 创建测试端口
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Dispatch 记录事件
func (s *MockSender) Dispatch(ctx context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.FailWith
}

// Events 返回已记录事件的副本
func (s *MockSender) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Count 已记录事件数
func (s *MockSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
