package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
)

var _ repository.ConfiguracaoFiscalRepository = (*ConfiguracaoFiscalRepo)(nil)

// ConfiguracaoFiscalRepo leitura do cadastro do emitente.
type ConfiguracaoFiscalRepo struct {
	q Querier
}

// NewConfiguracaoFiscalRepository constrói o adaptador.
func NewConfiguracaoFiscalRepository(q Querier) *ConfiguracaoFiscalRepo {
	return &ConfiguracaoFiscalRepo{q: q}
}

// GetAtiva devolve a linha singleton ativa, ou nil se não houver.
// Havendo mais de uma ativa (estado inconsistente), vale a mais recente.
func (r *ConfiguracaoFiscalRepo) GetAtiva(ctx context.Context) (*entity.ConfiguracaoFiscal, error) {
	query := `
		SELECT id, cnpj, razao_social, COALESCE(nome_fantasia, ''),
		       COALESCE(inscricao_estadual, ''), COALESCE(regime_tributario, ''),
		       COALESCE(logradouro, ''), COALESCE(numero_end, ''), COALESCE(bairro, ''),
		       COALESCE(municipio, ''), COALESCE(uf, ''), COALESCE(cep, ''),
		       COALESCE(serie_nfe, '1'), COALESCE(natureza_operacao_padrao, 'Venda de mercadoria'),
		       ativa, criada_em, atualizada_em
		FROM configuracoes_fiscais
		WHERE ativa = TRUE
		ORDER BY atualizada_em DESC
		LIMIT 1`
	var c entity.ConfiguracaoFiscal
	err := r.q.QueryRow(ctx, query).Scan(
		&c.ID, &c.CNPJ, &c.RazaoSocial, &c.NomeFantasia,
		&c.InscricaoEstadual, &c.RegimeTributario,
		&c.Logradouro, &c.NumeroEnd, &c.Bairro,
		&c.Municipio, &c.UF, &c.CEP,
		&c.SerieNFe, &c.NaturezaOperacaoPadrao,
		&c.Ativa, &c.CriadaEm, &c.AtualizadaEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get configuração fiscal ativa: %w", err)
	}
	return &c, nil
}
