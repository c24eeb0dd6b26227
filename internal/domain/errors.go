package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound             = errors.New("recurso não encontrado")
	ErrVendaNotFound        = errors.New("venda não encontrada")
	ErrConfigNotFound       = errors.New("configuração fiscal ativa não encontrada")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("não autorizado")
	ErrConfigError          = errors.New("configuração do gateway fiscal incompleta")
	ErrAlreadyEmitted       = errors.New("venda já possui nota fiscal emitida")
	ErrInvalidStatus        = errors.New("status da nota não permite a operação")
	ErrPrazoExpirado        = errors.New("prazo de cancelamento expirado")
	ErrGatewayIndisponivel  = errors.New("gateway fiscal indisponível")
)
