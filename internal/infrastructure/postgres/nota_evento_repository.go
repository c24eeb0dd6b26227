package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
)

var _ repository.NotaEventoRepository = (*NotaEventoRepo)(nil)

// NotaEventoRepo trilha de auditoria append-only (sem UPDATE nem DELETE).
type NotaEventoRepo struct {
	q Querier
}

// NewNotaEventoRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewNotaEventoRepository(q Querier) *NotaEventoRepo {
	return &NotaEventoRepo{q: q}
}

// Append insere um evento da nota.
func (r *NotaEventoRepo) Append(ctx context.Context, e *entity.NotaEvento) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO notas_fiscais_eventos
			(id, nota_id, tipo, mensagem, payload, resposta, http_status, duracao_ms, erro, usuario_id, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.NotaID, e.Tipo, nullIfEmpty(e.Mensagem),
		nullIfEmpty(e.Payload), nullIfEmpty(e.Resposta),
		e.HTTPStatus, e.DuracaoMs, nullIfEmpty(e.Erro), nullIfEmpty(e.UsuarioID),
		e.CriadoEm,
	)
	if err != nil {
		return fmt.Errorf("insert evento da nota: %w", err)
	}
	return nil
}

// ListByNota devolve a trilha completa de uma nota, em ordem cronológica.
func (r *NotaEventoRepo) ListByNota(ctx context.Context, notaID string) ([]*entity.NotaEvento, error) {
	query := `
		SELECT id, nota_id, tipo, COALESCE(mensagem, ''), COALESCE(payload, ''),
		       COALESCE(resposta, ''), http_status, duracao_ms,
		       COALESCE(erro, ''), COALESCE(usuario_id, ''), criado_em
		FROM notas_fiscais_eventos WHERE nota_id = $1 ORDER BY criado_em ASC`
	rows, err := r.q.Query(ctx, query, notaID)
	if err != nil {
		return nil, fmt.Errorf("listar eventos da nota: %w", err)
	}
	defer rows.Close()
	var lista []*entity.NotaEvento
	for rows.Next() {
		var e entity.NotaEvento
		if err := rows.Scan(&e.ID, &e.NotaID, &e.Tipo, &e.Mensagem, &e.Payload,
			&e.Resposta, &e.HTTPStatus, &e.DuracaoMs, &e.Erro, &e.UsuarioID, &e.CriadoEm); err != nil {
			return nil, fmt.Errorf("scan evento: %w", err)
		}
		lista = append(lista, &e)
	}
	return lista, rows.Err()
}
