package repository

import (
	"context"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
)

// NotaFiscalRepository persistência das notas fiscais.
type NotaFiscalRepository interface {
	// Create insere a nota em status pendente. Retorna domain.ErrDuplicate se
	// já existir nota ativa para a mesma venda (índice único parcial).
	Create(ctx context.Context, nota *entity.NotaFiscal) error
	GetByID(ctx context.Context, id string) (*entity.NotaFiscal, error)
	GetByReferencia(ctx context.Context, referencia string) (*entity.NotaFiscal, error)
	// FindAtivaByVenda devolve a nota não cancelada da venda, ou nil.
	FindAtivaByVenda(ctx context.Context, vendaID int64) (*entity.NotaFiscal, error)
	Update(ctx context.Context, nota *entity.NotaFiscal) error
	// ListarEmProcessamento devolve as notas em voo mais antigas, até limite.
	ListarEmProcessamento(ctx context.Context, limite int) ([]*entity.NotaFiscal, error)
	// ClaimTentativa incrementa o contador de tentativas apenas se ele ainda
	// tiver o valor esperado (compare-and-swap). Devolve false se outra
	// varredura concorrente já reivindicou a nota.
	ClaimTentativa(ctx context.Context, id string, tentativasEsperadas int) (bool, error)
}

// ResumoNotas agregados operacionais do subsistema fiscal.
type ResumoNotas struct {
	Total                   int
	PorStatus               map[string]int
	TempoMedioAutorizacaoMs int64
	TentativasMedias        float64
}

// MetricasRepository consultas agregadas sobre notas e eventos.
type MetricasRepository interface {
	ResumoNotas(ctx context.Context, dias int, ambiente string) (*ResumoNotas, error)
}
