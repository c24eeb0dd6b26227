package fiscal

import (
	"context"
	"time"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/focus"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

// auditoria registra eventos da nota engolindo falhas de persistência:
// a trilha nunca pode bloquear a operação principal.
type auditoria struct {
	eventos repository.NotaEventoRepository
	log     *logger.Logger
}

// registrar grava o evento; falha vira warning no log e a operação segue.
func (a *auditoria) registrar(ctx context.Context, e *entity.NotaEvento) {
	if e.CriadoEm.IsZero() {
		e.CriadoEm = time.Now()
	}
	if err := a.eventos.Append(ctx, e); err != nil {
		a.log.Warn().Err(err).
			Str("nota_id", e.NotaID).
			Str("tipo", e.Tipo).
			Msg("falha ao gravar evento de auditoria da nota")
	}
}

// registrarChamada monta e grava o evento de uma chamada ao gateway.
func (a *auditoria) registrarChamada(ctx context.Context, notaID, tipo, mensagem, usuarioID, payload string, res *focus.Resultado, errTexto string) {
	e := &entity.NotaEvento{
		NotaID:    notaID,
		Tipo:      tipo,
		Mensagem:  mensagem,
		Payload:   payload,
		UsuarioID: usuarioID,
		Erro:      errTexto,
	}
	if res != nil {
		e.Resposta = string(res.Corpo)
		e.HTTPStatus = res.HTTPStatus
		e.DuracaoMs = res.DuracaoMs()
	}
	a.registrar(ctx, e)
}
