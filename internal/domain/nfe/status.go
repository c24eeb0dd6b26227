// Package nfe contém as regras de domínio da emissão de NF-e via gateway
// fiscal: mapeamento do vocabulário de status do gateway para o banco,
// janela legal de cancelamento e limites das justificativas.
package nfe

import "github.com/seu-usuario/controle-orcamentos/internal/domain/entity"

// Status reportados pelo gateway Focus NFe.
const (
	FocusProcessandoAutorizacao = "processando_autorizacao"
	FocusAutorizado             = "autorizado"
	FocusErroAutorizacao        = "erro_autorizacao"
	FocusDenegado               = "denegado"
	FocusCancelado              = "cancelado"
)

// MapearStatusFocus traduz o status do gateway para o enum local.
// erro_autorizacao e denegado são mantidos distintos no banco.
// Um status desconhecido é devolvido como veio com ok=false: o chamador deve
// registrar um warning e NÃO alterar o status local (revisão manual, nunca
// default silencioso para um estado terminal).
func MapearStatusFocus(statusFocus string) (status string, ok bool) {
	switch statusFocus {
	case FocusProcessandoAutorizacao:
		return entity.NotaStatusProcessando, true
	case FocusAutorizado:
		return entity.NotaStatusAutorizada, true
	case FocusErroAutorizacao:
		return entity.NotaStatusRejeitada, true
	case FocusDenegado:
		return entity.NotaStatusDenegada, true
	case FocusCancelado:
		return entity.NotaStatusCancelada, true
	}
	return statusFocus, false
}
