package repository

import (
	"context"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
)

// NotaEventoRepository trilha de auditoria append-only da nota fiscal.
// Append nunca deve bloquear a operação principal: o chamador registra a
// falha no log e segue.
type NotaEventoRepository interface {
	Append(ctx context.Context, evento *entity.NotaEvento) error
	ListByNota(ctx context.Context, notaID string) ([]*entity.NotaEvento, error)
}
