package postgres

import (
	"context"
	"fmt"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
)

var _ repository.MetricasRepository = (*MetricasRepo)(nil)

// MetricasRepo consultas agregadas sobre notas e eventos para observabilidade.
type MetricasRepo struct {
	q Querier
}

// NewMetricasRepository constrói o adaptador.
func NewMetricasRepository(q Querier) *MetricasRepo {
	return &MetricasRepo{q: q}
}

// ResumoNotas agrega contagens por status, tentativas médias e o tempo médio
// das chamadas de autorização na janela de dias/ambiente informada.
func (r *MetricasRepo) ResumoNotas(ctx context.Context, dias int, ambiente string) (*repository.ResumoNotas, error) {
	if dias <= 0 {
		dias = 30
	}
	resumo := &repository.ResumoNotas{PorStatus: make(map[string]int)}

	queryStatus := `
		SELECT status, COUNT(*), AVG(tentativas)
		FROM notas_fiscais
		WHERE criada_em >= NOW() - make_interval(days => $1)
		  AND ($2 = '' OR ambiente = $2)
		GROUP BY status`
	rows, err := r.q.Query(ctx, queryStatus, dias, ambiente)
	if err != nil {
		return nil, fmt.Errorf("agregar notas por status: %w", err)
	}
	defer rows.Close()

	var somaTentativas float64
	for rows.Next() {
		var status string
		var total int
		var mediaTentativas *float64
		if err := rows.Scan(&status, &total, &mediaTentativas); err != nil {
			return nil, fmt.Errorf("scan agregado de status: %w", err)
		}
		resumo.PorStatus[status] = total
		resumo.Total += total
		if mediaTentativas != nil {
			somaTentativas += *mediaTentativas * float64(total)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if resumo.Total > 0 {
		resumo.TentativasMedias = somaTentativas / float64(resumo.Total)
	}

	// Duração média das chamadas que culminaram em autorização.
	queryDuracao := `
		SELECT COALESCE(AVG(e.duracao_ms), 0)::BIGINT
		FROM notas_fiscais_eventos e
		JOIN notas_fiscais n ON n.id = e.nota_id
		WHERE e.tipo = 'autorizacao'
		  AND e.criado_em >= NOW() - make_interval(days => $1)
		  AND ($2 = '' OR n.ambiente = $2)`
	if err := r.q.QueryRow(ctx, queryDuracao, dias, ambiente).Scan(&resumo.TempoMedioAutorizacaoMs); err != nil {
		return nil, fmt.Errorf("agregar duração de autorização: %w", err)
	}
	return resumo, nil
}
