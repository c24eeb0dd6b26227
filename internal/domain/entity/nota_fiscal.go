package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status locais da nota fiscal eletrônica.
// Ciclo: pendente → processando → autorizada | rejeitada | denegada → cancelada.
// rejeitada (erro_autorizacao) e denegada (denegado) são mantidas distintas:
// uma nota denegada tem chave consumida na SEFAZ, uma rejeitada pode ser reemitida.
const (
	NotaStatusPendente    = "pendente"    // Registro criado, envio ainda não confirmado
	NotaStatusProcessando = "processando" // Enviada ao gateway, autorização em andamento
	NotaStatusAutorizada  = "autorizada"  // Autorizada pela SEFAZ
	NotaStatusRejeitada   = "rejeitada"   // erro_autorizacao (ou Timeout do worker)
	NotaStatusDenegada    = "denegada"    // Denegada pela SEFAZ
	NotaStatusCancelada   = "cancelada"   // Cancelada dentro do prazo legal
)

// Ambientes de emissão.
const (
	AmbienteHomologacao = "homologacao"
	AmbienteProducao    = "producao"
)

// NotaFiscal representa uma tentativa de emissão de NF-e e seu ciclo de vida.
// Existe no máximo uma nota ativa (não cancelada) por venda; a unicidade é
// garantida por índice parcial em vendas_id no banco, não só pela aplicação.
type NotaFiscal struct {
	ID         string
	VendaID    int64
	Referencia string // Referência de idempotência enviada ao gateway (venda-<id>-<sufixo>)

	Status      string // pendente|processando|autorizada|rejeitada|denegada|cancelada
	StatusSefaz string // Sub-status bruto reportado pelo gateway (ex.: "100")
	Mensagem    string // Mensagem humana do gateway/SEFAZ

	// Snapshot financeiro no momento da emissão.
	ValorTotal    decimal.Decimal
	ValorProdutos decimal.Decimal
	ValorDesconto decimal.Decimal
	ValorFrete    decimal.Decimal

	// Snapshot do destinatário.
	NomeDestinatario    string
	CPFCNPJDestinatario string

	// Artefatos devolvidos pelo gateway após autorização.
	Numero      string
	Serie       string
	ChaveAcesso string
	URLXml      string
	URLDanfe    string

	// Carta de correção (não altera o status principal).
	CartaCorrecaoNumero int
	CartaCorrecaoTexto  string
	URLXmlCartaCorrecao string

	Tentativas    int    // Consultas do worker já realizadas
	Ambiente      string // homologacao|producao
	Justificativa string // Justificativa do cancelamento, quando houver

	CriadaEm     time.Time
	AtualizadaEm time.Time
	AutorizadaEm *time.Time
	CanceladaEm  *time.Time
}

// Ativa informa se a nota conta para a checagem de idempotência por venda.
func (n *NotaFiscal) Ativa() bool {
	return n.Status != NotaStatusCancelada
}

// Terminal informa se o status local é final e não deve ser reconsultado no gateway.
func (n *NotaFiscal) Terminal() bool {
	switch n.Status {
	case NotaStatusAutorizada, NotaStatusCancelada, NotaStatusDenegada:
		return true
	}
	return false
}
