package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
)

var _ repository.NotaFiscalRepository = (*NotaFiscalRepo)(nil)

// NotaFiscalRepo implementação de NotaFiscalRepository (usável com pool ou tx).
type NotaFiscalRepo struct {
	q Querier
}

// NewNotaFiscalRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewNotaFiscalRepository(q Querier) *NotaFiscalRepo {
	return &NotaFiscalRepo{q: q}
}

const notaColunas = `
	id, venda_id, referencia, status, status_sefaz, mensagem,
	valor_total, valor_produtos, valor_desconto, valor_frete,
	nome_destinatario, cpf_cnpj_destinatario,
	numero, serie, chave_acesso, url_xml, url_danfe,
	carta_correcao_numero, carta_correcao_texto, url_xml_carta_correcao,
	tentativas, ambiente, justificativa,
	criada_em, atualizada_em, autorizada_em, cancelada_em`

// Create insere a nota em status pendente.
// O índice único parcial uq_notas_fiscais_venda_ativa (venda_id WHERE status <> 'cancelada')
// fecha a corrida check-then-create: a segunda inserção concorrente recebe ErrDuplicate.
func (r *NotaFiscalRepo) Create(ctx context.Context, nota *entity.NotaFiscal) error {
	if nota.ID == "" {
		nota.ID = uuid.New().String()
	}
	query := `
		INSERT INTO notas_fiscais (
			id, venda_id, referencia, status, status_sefaz, mensagem,
			valor_total, valor_produtos, valor_desconto, valor_frete,
			nome_destinatario, cpf_cnpj_destinatario,
			tentativas, ambiente, criada_em, atualizada_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		nota.ID, nota.VendaID, nota.Referencia, nota.Status,
		nullIfEmpty(nota.StatusSefaz), nullIfEmpty(nota.Mensagem),
		nota.ValorTotal, nota.ValorProdutos, nota.ValorDesconto, nota.ValorFrete,
		nota.NomeDestinatario, nota.CPFCNPJDestinatario,
		nota.Tentativas, nota.Ambiente, nota.CriadaEm, nota.AtualizadaEm,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("nota ativa já existe para a venda %d: %w", nota.VendaID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert nota fiscal: %w", err)
	}
	return nil
}

// Update persiste todos os campos mutáveis do ciclo de vida da nota.
func (r *NotaFiscalRepo) Update(ctx context.Context, nota *entity.NotaFiscal) error {
	query := `
		UPDATE notas_fiscais
		SET status                 = $2,
		    status_sefaz           = COALESCE($3,  status_sefaz),
		    mensagem               = COALESCE($4,  mensagem),
		    numero                 = COALESCE($5,  numero),
		    serie                  = COALESCE($6,  serie),
		    chave_acesso           = COALESCE($7,  chave_acesso),
		    url_xml                = COALESCE($8,  url_xml),
		    url_danfe              = COALESCE($9,  url_danfe),
		    carta_correcao_numero  = $10,
		    carta_correcao_texto   = COALESCE($11, carta_correcao_texto),
		    url_xml_carta_correcao = COALESCE($12, url_xml_carta_correcao),
		    tentativas             = $13,
		    justificativa          = COALESCE($14, justificativa),
		    atualizada_em          = $15,
		    autorizada_em          = COALESCE($16, autorizada_em),
		    cancelada_em           = COALESCE($17, cancelada_em)
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		nota.ID,
		nota.Status,
		nullIfEmpty(nota.StatusSefaz),
		nullIfEmpty(nota.Mensagem),
		nullIfEmpty(nota.Numero),
		nullIfEmpty(nota.Serie),
		nullIfEmpty(nota.ChaveAcesso),
		nullIfEmpty(nota.URLXml),
		nullIfEmpty(nota.URLDanfe),
		nota.CartaCorrecaoNumero,
		nullIfEmpty(nota.CartaCorrecaoTexto),
		nullIfEmpty(nota.URLXmlCartaCorrecao),
		nota.Tentativas,
		nullIfEmpty(nota.Justificativa),
		nota.AtualizadaEm,
		nota.AutorizadaEm,
		nota.CanceladaEm,
	)
	if err != nil {
		return fmt.Errorf("update nota fiscal: %w", err)
	}
	return nil
}

// GetByID obtém a nota completa por ID.
func (r *NotaFiscalRepo) GetByID(ctx context.Context, id string) (*entity.NotaFiscal, error) {
	row := r.q.QueryRow(ctx, `SELECT `+notaColunas+` FROM notas_fiscais WHERE id = $1`, id)
	return scanNota(row)
}

// GetByReferencia obtém a nota pela referência de idempotência.
func (r *NotaFiscalRepo) GetByReferencia(ctx context.Context, referencia string) (*entity.NotaFiscal, error) {
	row := r.q.QueryRow(ctx, `SELECT `+notaColunas+` FROM notas_fiscais WHERE referencia = $1`, referencia)
	return scanNota(row)
}

// FindAtivaByVenda devolve a nota não cancelada da venda (checagem de idempotência).
func (r *NotaFiscalRepo) FindAtivaByVenda(ctx context.Context, vendaID int64) (*entity.NotaFiscal, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+notaColunas+` FROM notas_fiscais WHERE venda_id = $1 AND status <> 'cancelada'`,
		vendaID)
	return scanNota(row)
}

// ListarEmProcessamento devolve as notas em voo mais antigas, até limite.
func (r *NotaFiscalRepo) ListarEmProcessamento(ctx context.Context, limite int) ([]*entity.NotaFiscal, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+notaColunas+` FROM notas_fiscais
		 WHERE status = 'processando' ORDER BY atualizada_em ASC LIMIT $1`,
		limite)
	if err != nil {
		return nil, fmt.Errorf("listar notas em processamento: %w", err)
	}
	defer rows.Close()
	var lista []*entity.NotaFiscal
	for rows.Next() {
		nota, err := scanNota(rows)
		if err != nil {
			return nil, err
		}
		lista = append(lista, nota)
	}
	return lista, rows.Err()
}

// ClaimTentativa incrementa o contador apenas se ainda tiver o valor esperado
// (lock otimista contra varreduras concorrentes).
func (r *NotaFiscalRepo) ClaimTentativa(ctx context.Context, id string, tentativasEsperadas int) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE notas_fiscais
		 SET tentativas = tentativas + 1, atualizada_em = NOW()
		 WHERE id = $1 AND tentativas = $2 AND status = 'processando'`,
		id, tentativasEsperadas)
	if err != nil {
		return false, fmt.Errorf("claim tentativa: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// scanNota lê uma linha de notas_fiscais (colunas de notaColunas, na ordem).
func scanNota(row pgx.Row) (*entity.NotaFiscal, error) {
	var n entity.NotaFiscal
	var statusSefaz, mensagem, numero, serie, chave, urlXml, urlDanfe *string
	var ccNumero *int
	var ccTexto, ccURL, justificativa *string
	err := row.Scan(
		&n.ID, &n.VendaID, &n.Referencia, &n.Status, &statusSefaz, &mensagem,
		&n.ValorTotal, &n.ValorProdutos, &n.ValorDesconto, &n.ValorFrete,
		&n.NomeDestinatario, &n.CPFCNPJDestinatario,
		&numero, &serie, &chave, &urlXml, &urlDanfe,
		&ccNumero, &ccTexto, &ccURL,
		&n.Tentativas, &n.Ambiente, &justificativa,
		&n.CriadaEm, &n.AtualizadaEm, &n.AutorizadaEm, &n.CanceladaEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan nota fiscal: %w", err)
	}
	n.StatusSefaz = derefStr(statusSefaz)
	n.Mensagem = derefStr(mensagem)
	n.Numero = derefStr(numero)
	n.Serie = derefStr(serie)
	n.ChaveAcesso = derefStr(chave)
	n.URLXml = derefStr(urlXml)
	n.URLDanfe = derefStr(urlDanfe)
	if ccNumero != nil {
		n.CartaCorrecaoNumero = *ccNumero
	}
	n.CartaCorrecaoTexto = derefStr(ccTexto)
	n.URLXmlCartaCorrecao = derefStr(ccURL)
	n.Justificativa = derefStr(justificativa)
	return &n, nil
}
