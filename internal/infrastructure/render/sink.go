package render

import (
	"context"
	"sync"

	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/DRSN-tech/pos-register/internal/usecase"
	"github.com/DRSN-tech/pos-register/pkg/logger"
)

// SnapshotSink хранит последнее отображенное состояние.
type SnapshotSink struct {
	mu   sync.RWMutex
	last *domain.View
}

func NewSnapshotSink() *SnapshotSink {
	return &SnapshotSink{}
}

func (s *SnapshotSink) Render(_ context.Context, view *domain.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = view
}

// Last возвращает последнее состояние или nil, если отображений еще не было.
func (s *SnapshotSink) Last() *domain.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// LogSink пишет сообщение и итог каждой операции в лог.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(logger logger.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Render(_ context.Context, view *domain.View) {
	s.logger.Debugf("render: message=%q, total=%s, change=%s, products=%d, cart_lines=%d",
		view.Message, view.Total.StringFixed(2), view.Change.StringFixed(2), len(view.Products), len(view.Cart))
}

// MultiSink передает состояние всем вложенным приемникам по порядку.
type MultiSink []usecase.RenderSink

func NewMultiSink(sinks ...usecase.RenderSink) MultiSink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}

	return out
}

func (m MultiSink) Render(ctx context.Context, view *domain.View) {
	for _, s := range m {
		s.Render(ctx, view)
	}
}
