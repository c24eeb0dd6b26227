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

// CartaCorrecaoUseCase registra uma carta de correção eletrônica (CC-e) para
// uma nota autorizada. A carta corrige dados acessórios e não altera o status
// principal da nota.
type CartaCorrecaoUseCase struct {
	notas   repository.NotaFiscalRepository
	gateway Gateway
	aud     *auditoria
	log     *logger.Logger
}

// NewCartaCorrecaoUseCase cria o caso de uso de carta de correção.
func NewCartaCorrecaoUseCase(
	notas repository.NotaFiscalRepository,
	eventos repository.NotaEventoRepository,
	gateway Gateway,
	log *logger.Logger,
) *CartaCorrecaoUseCase {
	return &CartaCorrecaoUseCase{
		notas:   notas,
		gateway: gateway,
		aud:     &auditoria{eventos: eventos, log: log},
		log:     log,
	}
}

// Execute envia a correção ao gateway e guarda os metadados da carta na nota.
// Cartas subsequentes sobrescrevem os metadados (a SEFAZ considera vigente a
// última); a trilha de eventos preserva o histórico completo.
func (u *CartaCorrecaoUseCase) Execute(ctx context.Context, usuarioID string, req dto.CartaCorrecaoRequest) (*dto.CartaCorrecaoResponse, error) {
	if req.Ref == "" {
		return nil, fmt.Errorf("%w: ref é obrigatória", domain.ErrInvalidInput)
	}
	if err := nfe.ValidarTextoCartaCorrecao(req.Correcao); err != nil {
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
		return nil, fmt.Errorf("%w: carta de correção exige nota autorizada (atual: %s)", domain.ErrInvalidStatus, nota.Status)
	}

	if err := u.gateway.VerificarConfiguracao(); err != nil {
		return nil, err
	}
	res, err := u.gateway.CartaCorrecao(ctx, nota.Referencia, req.Correcao)
	if err != nil {
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"falha de rede na carta de correção", usuarioID, req.Correcao, res, err.Error())
		return nil, err
	}
	if res.HTTPStatus >= 400 {
		msg := mensagemDaResposta(res.Resposta)
		if msg == "" {
			msg = fmt.Sprintf("carta de correção recusada pelo gateway (HTTP %d)", res.HTTPStatus)
		}
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"carta de correção recusada: "+msg, usuarioID, req.Correcao, res, "")
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, msg)
	}

	nota.CartaCorrecaoTexto = req.Correcao
	if res.Resposta.NumeroCartaCorrecao > 0 {
		nota.CartaCorrecaoNumero = res.Resposta.NumeroCartaCorrecao
	} else {
		nota.CartaCorrecaoNumero++
	}
	if res.Resposta.CaminhoXmlCartaCorrecao != "" {
		nota.URLXmlCartaCorrecao = res.Resposta.CaminhoXmlCartaCorrecao
	}
	nota.AtualizadaEm = time.Now()
	if err := u.notas.Update(ctx, nota); err != nil {
		return nil, err
	}

	u.aud.registrarChamada(ctx, nota.ID, entity.EventoCartaCorrecao,
		fmt.Sprintf("carta de correção %d registrada", nota.CartaCorrecaoNumero),
		usuarioID, req.Correcao, res, "")

	return &dto.CartaCorrecaoResponse{
		Numero: nota.CartaCorrecaoNumero,
		URLXml: nota.URLXmlCartaCorrecao,
	}, nil
}
