package fiscal

import (
	"context"
	"fmt"

	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

// ConsultarNFeUseCase consulta o status de uma nota, sincronizando com o
// gateway apenas quando o status local não é terminal.
type ConsultarNFeUseCase struct {
	notas   repository.NotaFiscalRepository
	vendas  repository.VendaRepository
	eventos repository.NotaEventoRepository
	gateway Gateway
	aud     *auditoria
	log     *logger.Logger
}

// NewConsultarNFeUseCase cria o caso de uso de consulta.
func NewConsultarNFeUseCase(
	notas repository.NotaFiscalRepository,
	vendas repository.VendaRepository,
	eventos repository.NotaEventoRepository,
	gateway Gateway,
	log *logger.Logger,
) *ConsultarNFeUseCase {
	return &ConsultarNFeUseCase{
		notas:   notas,
		vendas:  vendas,
		eventos: eventos,
		gateway: gateway,
		aud:     &auditoria{eventos: eventos, log: log},
		log:     log,
	}
}

// resolver localiza a nota por id, referência ou venda (nessa ordem de
// prioridade). Ao menos um identificador deve ser informado.
func (u *ConsultarNFeUseCase) resolver(ctx context.Context, notaID, ref string, vendaID int64) (*entity.NotaFiscal, error) {
	switch {
	case notaID != "":
		return u.notas.GetByID(ctx, notaID)
	case ref != "":
		return u.notas.GetByReferencia(ctx, ref)
	case vendaID > 0:
		nota, err := u.notas.FindAtivaByVenda(ctx, vendaID)
		if err != nil {
			return nil, err
		}
		if nota == nil {
			return nil, fmt.Errorf("%w: venda %d não possui nota ativa", domain.ErrNotFound, vendaID)
		}
		return nota, nil
	}
	return nil, fmt.Errorf("%w: informe nota_id, ref ou venda_id", domain.ErrInvalidInput)
}

// Execute devolve o estado atual da nota. Notas em estado terminal são
// respondidas do banco sem chamar o gateway; notas em voo disparam uma
// consulta, aplicam a resposta e persistem a mudança.
func (u *ConsultarNFeUseCase) Execute(ctx context.Context, usuarioID, notaID, ref string, vendaID int64) (*dto.NotaResponse, error) {
	nota, err := u.resolver(ctx, notaID, ref, vendaID)
	if err != nil {
		return nil, err
	}
	if nota == nil {
		return nil, domain.ErrNotFound
	}

	if nota.Terminal() {
		return dto.NovaNotaResponse(nota), nil
	}

	if err := u.gateway.VerificarConfiguracao(); err != nil {
		return nil, err
	}
	res, err := u.gateway.Consultar(ctx, nota.Referencia, true)
	if err != nil {
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"falha de rede na consulta", usuarioID, "", res, err.Error())
		return nil, err
	}

	u.aud.registrarChamada(ctx, nota.ID, entity.EventoConsulta,
		"consulta de status no gateway", usuarioID, "", res, "")

	mudou, autorizadaAgora := aplicarResultado(nota, res, u.log)
	if mudou {
		if err := u.notas.Update(ctx, nota); err != nil {
			return nil, err
		}
	}
	if autorizadaAgora {
		if err := u.vendas.VincularNota(ctx, nota.VendaID, nota.Numero, nota.ChaveAcesso); err != nil {
			u.log.Error().Err(err).Int64("venda_id", nota.VendaID).Msg("falha ao vincular nota autorizada à venda")
		}
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoAutorizacao,
			"autorização confirmada na consulta", usuarioID, "", res, "")
	}

	return dto.NovaNotaResponse(nota), nil
}

// Eventos lista a trilha de auditoria da nota, do mais antigo ao mais novo.
func (u *ConsultarNFeUseCase) Eventos(ctx context.Context, notaID, ref string, vendaID int64) ([]dto.EventoResponse, error) {
	nota, err := u.resolver(ctx, notaID, ref, vendaID)
	if err != nil {
		return nil, err
	}
	if nota == nil {
		return nil, domain.ErrNotFound
	}
	eventos, err := u.eventos.ListByNota(ctx, nota.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EventoResponse, 0, len(eventos))
	for _, e := range eventos {
		out = append(out, dto.EventoResponse{
			ID:         e.ID,
			Tipo:       e.Tipo,
			Mensagem:   e.Mensagem,
			HTTPStatus: e.HTTPStatus,
			DuracaoMs:  e.DuracaoMs,
			Erro:       e.Erro,
			CriadoEm:   e.CriadoEm,
		})
	}
	return out, nil
}
