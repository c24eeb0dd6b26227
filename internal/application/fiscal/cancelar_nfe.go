package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/nfe"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

// CancelarNFeUseCase cancela uma nota autorizada dentro da janela legal.
type CancelarNFeUseCase struct {
	notas   repository.NotaFiscalRepository
	vendas  repository.VendaRepository
	gateway Gateway
	aud     *auditoria
	log     *logger.Logger
}

// NewCancelarNFeUseCase cria o caso de uso de cancelamento.
func NewCancelarNFeUseCase(
	notas repository.NotaFiscalRepository,
	vendas repository.VendaRepository,
	eventos repository.NotaEventoRepository,
	gateway Gateway,
	log *logger.Logger,
) *CancelarNFeUseCase {
	return &CancelarNFeUseCase{
		notas:   notas,
		vendas:  vendas,
		gateway: gateway,
		aud:     &auditoria{eventos: eventos, log: log},
		log:     log,
	}
}

// Execute cancela a nota ativa da venda. Exige status autorizada,
// justificativa de 15 a 255 caracteres e menos de 24h desde a autorização.
// Se o gateway recusar, o status local permanece intacto.
func (u *CancelarNFeUseCase) Execute(ctx context.Context, usuarioID string, req dto.CancelarNFeRequest) (*dto.CancelamentoResponse, error) {
	if req.VendaID <= 0 {
		return nil, fmt.Errorf("%w: venda_id é obrigatório e positivo", domain.ErrInvalidInput)
	}
	if err := nfe.ValidarJustificativaCancelamento(req.Justificativa); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	nota, err := u.notas.FindAtivaByVenda(ctx, req.VendaID)
	if err != nil {
		return nil, err
	}
	if nota == nil {
		return nil, fmt.Errorf("%w: venda %d não possui nota ativa", domain.ErrNotFound, req.VendaID)
	}
	if nota.Status != entity.NotaStatusAutorizada {
		return nil, fmt.Errorf("%w: cancelamento exige nota autorizada (atual: %s)", domain.ErrInvalidStatus, nota.Status)
	}
	if !nfe.DentroDoPrazoCancelamento(nota, time.Now()) {
		return nil, domain.ErrPrazoExpirado
	}

	if err := u.gateway.VerificarConfiguracao(); err != nil {
		return nil, err
	}
	res, err := u.gateway.Cancelar(ctx, nota.Referencia, req.Justificativa)
	if err != nil {
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"falha de rede no cancelamento", usuarioID, req.Justificativa, res, err.Error())
		return nil, err
	}

	if res.HTTPStatus >= 400 || res.Resposta.Status != nfe.FocusCancelado {
		// Recusa da SEFAZ/gateway: nada muda localmente, só fica auditado.
		msg := mensagemDaResposta(res.Resposta)
		if msg == "" {
			msg = fmt.Sprintf("cancelamento recusado pelo gateway (HTTP %d)", res.HTTPStatus)
		}
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"cancelamento recusado: "+msg, usuarioID, req.Justificativa, res, "")
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, msg)
	}

	agora := time.Now()
	nota.Status = entity.NotaStatusCancelada
	nota.Justificativa = req.Justificativa
	nota.CanceladaEm = &agora
	nota.AtualizadaEm = agora
	if res.Resposta.StatusSefaz != "" {
		nota.StatusSefaz = res.Resposta.StatusSefaz
	}
	if m := mensagemDaResposta(res.Resposta); m != "" {
		nota.Mensagem = m
	}
	if err := u.notas.Update(ctx, nota); err != nil {
		return nil, err
	}
	// A venda volta a poder receber uma nova emissão.
	if err := u.vendas.DesvincularNota(ctx, nota.VendaID); err != nil {
		u.log.Error().Err(err).Int64("venda_id", nota.VendaID).Msg("falha ao desvincular nota cancelada da venda")
	}

	u.aud.registrarChamada(ctx, nota.ID, entity.EventoCancelamento,
		"nota cancelada: "+req.Justificativa, usuarioID, req.Justificativa, res, "")

	return &dto.CancelamentoResponse{
		Status:        nota.Status,
		Justificativa: nota.Justificativa,
	}, nil
}
