package fiscal

import (
	"context"
	"fmt"

	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
)

// MetricasUseCase agrega os indicadores operacionais do subsistema fiscal.
type MetricasUseCase struct {
	metricas repository.MetricasRepository
}

// NewMetricasUseCase cria o caso de uso de métricas.
func NewMetricasUseCase(metricas repository.MetricasRepository) *MetricasUseCase {
	return &MetricasUseCase{metricas: metricas}
}

// Execute devolve os agregados da janela pedida (dias, default 30) com filtro
// opcional de ambiente.
func (u *MetricasUseCase) Execute(ctx context.Context, dias int, ambiente string) (*dto.MetricasResponse, error) {
	if dias <= 0 {
		dias = 30
	}
	if dias > 365 {
		dias = 365
	}
	switch ambiente {
	case "", entity.AmbienteHomologacao, entity.AmbienteProducao:
	default:
		return nil, fmt.Errorf("%w: ambiente deve ser %s ou %s", domain.ErrInvalidInput,
			entity.AmbienteHomologacao, entity.AmbienteProducao)
	}

	resumo, err := u.metricas.ResumoNotas(ctx, dias, ambiente)
	if err != nil {
		return nil, err
	}
	return &dto.MetricasResponse{
		Dias:                    dias,
		Ambiente:                ambiente,
		Total:                   resumo.Total,
		PorStatus:               resumo.PorStatus,
		TempoMedioAutorizacaoMs: resumo.TempoMedioAutorizacaoMs,
		TentativasMedias:        resumo.TentativasMedias,
	}, nil
}
