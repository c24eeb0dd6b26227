package dto

import (
	"time"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// EmitirNFeRequest body para POST /nfe/emitir.
type EmitirNFeRequest struct {
	VendaID int64 `json:"venda_id"`
}

// CancelarNFeRequest body para POST /nfe/cancelar.
type CancelarNFeRequest struct {
	VendaID       int64  `json:"venda_id"`
	Justificativa string `json:"justificativa"`
}

// CartaCorrecaoRequest body para POST /nfe/carta-correcao.
type CartaCorrecaoRequest struct {
	Ref      string `json:"ref"`
	Correcao string `json:"correcao"`
}

// ReenviarEmailRequest body para POST /nfe/email.
type ReenviarEmailRequest struct {
	Ref    string   `json:"ref"`
	Emails []string `json:"emails"`
}

// NotaResponse nota fiscal nas respostas dos endpoints.
type NotaResponse struct {
	ID          string `json:"id"`
	VendaID     int64  `json:"venda_id"`
	Referencia  string `json:"referencia"`
	Status      string `json:"status"`
	StatusSefaz string `json:"status_sefaz,omitempty"`
	Mensagem    string `json:"mensagem,omitempty"`

	Numero      string `json:"numero,omitempty"`
	Serie       string `json:"serie,omitempty"`
	ChaveAcesso string `json:"chave_acesso,omitempty"`
	URLXml      string `json:"url_xml,omitempty"`
	URLDanfe    string `json:"url_danfe,omitempty"`

	ValorTotal decimal.Decimal `json:"valor_total"`
	Ambiente   string          `json:"ambiente"`
	Tentativas int             `json:"tentativas"`

	CartaCorrecaoNumero int    `json:"carta_correcao_numero,omitempty"`
	URLXmlCartaCorrecao string `json:"url_xml_carta_correcao,omitempty"`

	CriadaEm     time.Time  `json:"criada_em"`
	AutorizadaEm *time.Time `json:"autorizada_em,omitempty"`
	CanceladaEm  *time.Time `json:"cancelada_em,omitempty"`

	Idempotente bool     `json:"idempotente,omitempty"` // true quando a emissão foi replay
	Avisos      []string `json:"avisos,omitempty"`      // avisos da validação (não bloqueiam)
	DuracaoMs   int64    `json:"duracao_ms"`
}

// NovaNotaResponse converte a entidade para o DTO de resposta.
func NovaNotaResponse(n *entity.NotaFiscal) *NotaResponse {
	return &NotaResponse{
		ID:                  n.ID,
		VendaID:             n.VendaID,
		Referencia:          n.Referencia,
		Status:              n.Status,
		StatusSefaz:         n.StatusSefaz,
		Mensagem:            n.Mensagem,
		Numero:              n.Numero,
		Serie:               n.Serie,
		ChaveAcesso:         n.ChaveAcesso,
		URLXml:              n.URLXml,
		URLDanfe:            n.URLDanfe,
		ValorTotal:          n.ValorTotal,
		Ambiente:            n.Ambiente,
		Tentativas:          n.Tentativas,
		CartaCorrecaoNumero: n.CartaCorrecaoNumero,
		URLXmlCartaCorrecao: n.URLXmlCartaCorrecao,
		CriadaEm:            n.CriadaEm,
		AutorizadaEm:        n.AutorizadaEm,
		CanceladaEm:         n.CanceladaEm,
	}
}

// EventoResponse linha da trilha de auditoria em GET /nfe/eventos.
type EventoResponse struct {
	ID         string    `json:"id"`
	Tipo       string    `json:"tipo"`
	Mensagem   string    `json:"mensagem,omitempty"`
	HTTPStatus int       `json:"http_status,omitempty"`
	DuracaoMs  int64     `json:"duracao_ms"`
	Erro       string    `json:"erro,omitempty"`
	CriadoEm   time.Time `json:"criado_em"`
}

// CancelamentoResponse confirmação de POST /nfe/cancelar.
type CancelamentoResponse struct {
	Status        string `json:"status"`
	Justificativa string `json:"justificativa"`
	DuracaoMs     int64  `json:"duracao_ms"`
}

// CartaCorrecaoResponse confirmação de POST /nfe/carta-correcao.
type CartaCorrecaoResponse struct {
	Numero    int    `json:"numero"`
	URLXml    string `json:"url_xml,omitempty"`
	DuracaoMs int64  `json:"duracao_ms"`
}

// EmailResponse confirmação de POST /nfe/email.
type EmailResponse struct {
	Enviados  int   `json:"enviados"`
	DuracaoMs int64 `json:"duracao_ms"`
}

// WorkerNotaReport resultado do processamento de uma nota na varredura.
type WorkerNotaReport struct {
	NotaID     string `json:"nota_id"`
	Referencia string `json:"referencia"`
	Status     string `json:"status"`
	Tentativas int    `json:"tentativas"`
	Erro       string `json:"erro,omitempty"`
}

// WorkerResponse relatório de POST /nfe/worker.
type WorkerResponse struct {
	Processadas int                `json:"processadas"`
	Notas       []WorkerNotaReport `json:"notas"`
	DuracaoMs   int64              `json:"duracao_ms"`
}

// MetricasResponse agregados de GET /nfe/metricas.
type MetricasResponse struct {
	Dias                    int            `json:"dias"`
	Ambiente                string         `json:"ambiente,omitempty"`
	Total                   int            `json:"total"`
	PorStatus               map[string]int `json:"por_status"`
	TempoMedioAutorizacaoMs int64          `json:"tempo_medio_autorizacao_ms"`
	TentativasMedias        float64        `json:"tentativas_medias"`
	DuracaoMs               int64          `json:"duracao_ms"`
}
