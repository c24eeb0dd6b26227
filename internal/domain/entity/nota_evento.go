package entity

import "time"

// Tipos de evento da trilha de auditoria da nota fiscal.
const (
	EventoCriacao       = "criacao"
	EventoEnvio         = "envio"
	EventoConsulta      = "consulta"
	EventoAutorizacao   = "autorizacao"
	EventoRejeicao      = "rejeicao"
	EventoCancelamento  = "cancelamento"
	EventoCartaCorrecao = "carta_correcao"
	EventoEmail         = "email"
	EventoErro          = "erro"
)

// NotaEvento é uma linha append-only da trilha de auditoria: registra cada
// transição de estado ou tentativa de interação com o gateway. Nunca é
// atualizada nem removida.
type NotaEvento struct {
	ID         string
	NotaID     string
	Tipo       string
	Mensagem   string
	Payload    string // JSON enviado ao gateway (vazio quando não há envio)
	Resposta   string // JSON bruto devolvido pelo gateway
	HTTPStatus int
	DuracaoMs  int64
	Erro       string
	UsuarioID  string
	CriadoEm   time.Time
}
