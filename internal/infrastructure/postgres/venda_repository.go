package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
)

var _ repository.VendaRepository = (*VendaRepo)(nil)

// VendaRepo acesso à venda colaboradora (leitura + write-back pós-autorização).
type VendaRepo struct {
	q Querier
}

// NewVendaRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewVendaRepository(q Querier) *VendaRepo {
	return &VendaRepo{q: q}
}

// GetByID obtém a venda com itens e dados do cliente.
func (r *VendaRepo) GetByID(ctx context.Context, id int64) (*entity.Venda, error) {
	query := `
		SELECT id, cliente_nome, COALESCE(cliente_cpf_cnpj, ''), COALESCE(cliente_email, ''),
		       COALESCE(logradouro, ''), COALESCE(numero_end, ''), COALESCE(bairro, ''),
		       COALESCE(municipio, ''), COALESCE(uf, ''), COALESCE(cep, ''),
		       valor_total, valor_produtos, valor_desconto, valor_frete,
		       COALESCE(forma_pagamento, ''), data_venda,
		       nota_emitida, COALESCE(nota_numero, ''), COALESCE(nota_chave, '')
		FROM vendas WHERE id = $1`
	var v entity.Venda
	err := r.q.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.ClienteNome, &v.ClienteCPFCNPJ, &v.ClienteEmail,
		&v.Logradouro, &v.NumeroEnd, &v.Bairro, &v.Municipio, &v.UF, &v.CEP,
		&v.ValorTotal, &v.ValorProdutos, &v.ValorDesconto, &v.ValorFrete,
		&v.FormaPagamento, &v.DataVenda,
		&v.NotaEmitida, &v.NotaNumero, &v.NotaChave,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venda: %w", err)
	}

	itens, err := r.listItens(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Itens = itens
	return &v, nil
}

func (r *VendaRepo) listItens(ctx context.Context, vendaID int64) ([]entity.VendaItem, error) {
	query := `
		SELECT id, COALESCE(codigo, ''), descricao, COALESCE(ncm, ''), COALESCE(cfop, ''),
		       COALESCE(unidade, 'UN'), quantidade, valor_unitario,
		       COALESCE(icms_situacao_tributaria, ''), COALESCE(icms_origem, ''),
		       COALESCE(pis_situacao_tributaria, ''), COALESCE(cofins_situacao_tributaria, '')
		FROM vendas_itens WHERE venda_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, vendaID)
	if err != nil {
		return nil, fmt.Errorf("listar itens da venda: %w", err)
	}
	defer rows.Close()
	var itens []entity.VendaItem
	for rows.Next() {
		var it entity.VendaItem
		if err := rows.Scan(&it.ID, &it.Codigo, &it.Descricao, &it.NCM, &it.CFOP,
			&it.Unidade, &it.Quantidade, &it.ValorUnitario,
			&it.ICMSSituacaoTributaria, &it.ICMSOrigem,
			&it.PISSituacaoTributaria, &it.COFINSSituacaoTributaria); err != nil {
			return nil, fmt.Errorf("scan item da venda: %w", err)
		}
		itens = append(itens, it)
	}
	return itens, rows.Err()
}

// VincularNota grava número/chave da NF-e autorizada na venda.
func (r *VendaRepo) VincularNota(ctx context.Context, vendaID int64, numero, chave string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE vendas SET nota_emitida = TRUE, nota_numero = $2, nota_chave = $3 WHERE id = $1`,
		vendaID, numero, chave)
	if err != nil {
		return fmt.Errorf("vincular nota à venda: %w", err)
	}
	return nil
}

// DesvincularNota limpa o vínculo fiscal da venda (cancelamento da nota).
func (r *VendaRepo) DesvincularNota(ctx context.Context, vendaID int64) error {
	_, err := r.q.Exec(ctx,
		`UPDATE vendas SET nota_emitida = FALSE, nota_numero = NULL, nota_chave = NULL WHERE id = $1`,
		vendaID)
	if err != nil {
		return fmt.Errorf("desvincular nota da venda: %w", err)
	}
	return nil
}
