package fiscal

import (
	"context"
	"fmt"
	"strings"

	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/nfe"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

// ReenviarEmailUseCase pede ao gateway o reenvio do XML/DANFE de uma nota
// autorizada para uma lista de destinatários. O envio em si é do gateway;
// aqui só há validação, repasse e auditoria.
type ReenviarEmailUseCase struct {
	notas   repository.NotaFiscalRepository
	gateway Gateway
	aud     *auditoria
	log     *logger.Logger
}

// NewReenviarEmailUseCase cria o caso de uso de reenvio de e-mail.
func NewReenviarEmailUseCase(
	notas repository.NotaFiscalRepository,
	eventos repository.NotaEventoRepository,
	gateway Gateway,
	log *logger.Logger,
) *ReenviarEmailUseCase {
	return &ReenviarEmailUseCase{
		notas:   notas,
		gateway: gateway,
		aud:     &auditoria{eventos: eventos, log: log},
		log:     log,
	}
}

// Execute valida a lista (1 a 10 endereços) e repassa ao gateway.
func (u *ReenviarEmailUseCase) Execute(ctx context.Context, usuarioID string, req dto.ReenviarEmailRequest) (*dto.EmailResponse, error) {
	if req.Ref == "" {
		return nil, fmt.Errorf("%w: ref é obrigatória", domain.ErrInvalidInput)
	}
	if err := nfe.ValidarEmails(req.Emails); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	nota, err := u.notas.GetByReferencia(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	if nota == nil {
		return nil, fmt.Errorf("%w: referência %s", domain.ErrNotFound, req.Ref)
	}
	if nota.Status != entity.NotaStatusAutorizada {
		return nil, fmt.Errorf("%w: reenvio de e-mail exige nota autorizada (atual: %s)", domain.ErrInvalidStatus, nota.Status)
	}

	if err := u.gateway.VerificarConfiguracao(); err != nil {
		return nil, err
	}
	res, err := u.gateway.ReenviarEmail(ctx, nota.Referencia, req.Emails)
	if err != nil {
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"falha de rede no reenvio de e-mail", usuarioID, strings.Join(req.Emails, ","), res, err.Error())
		return nil, err
	}
	if res.HTTPStatus >= 400 {
		msg := mensagemDaResposta(res.Resposta)
		if msg == "" {
			msg = fmt.Sprintf("reenvio recusado pelo gateway (HTTP %d)", res.HTTPStatus)
		}
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"reenvio de e-mail recusado: "+msg, usuarioID, strings.Join(req.Emails, ","), res, "")
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, msg)
	}

	u.aud.registrarChamada(ctx, nota.ID, entity.EventoEmail,
		fmt.Sprintf("XML/DANFE reenviados para %d destinatário(s)", len(req.Emails)),
		usuarioID, strings.Join(req.Emails, ","), res, "")

	return &dto.EmailResponse{Enviados: len(req.Emails)}, nil
}
