package usecase

import (
	"context"

	"github.com/DRSN-tech/pos-register/internal/domain"
)

// RenderSink получает состояние кассы после каждой изменяющей операции.
// Ядро не зависит от результата отображения.
type RenderSink interface {
	Render(ctx context.Context, view *domain.View)
}
