package repository

import (
	"context"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
)

// VendaRepository acesso de leitura à venda (com itens e cliente) e o
// write-back pós-autorização.
type VendaRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Venda, error)
	// VincularNota grava número/chave da NF-e e marca NotaEmitida.
	VincularNota(ctx context.Context, vendaID int64, numero, chave string) error
	// DesvincularNota limpa o vínculo após cancelamento da nota.
	DesvincularNota(ctx context.Context, vendaID int64) error
}

// ConfiguracaoFiscalRepository leitura do cadastro do emitente.
type ConfiguracaoFiscalRepository interface {
	// GetAtiva devolve a linha singleton ativa, ou nil se não houver.
	GetAtiva(ctx context.Context) (*entity.ConfiguracaoFiscal, error)
}
