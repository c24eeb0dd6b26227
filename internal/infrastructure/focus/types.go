package focus

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// NotaPayload é o corpo de emissão aceito pela API Focus NFe (POST /v2/nfe).
// Os campos fiscais por item (NCM, CFOP, CSTs) são opacos para nós: o payload
// só é montado depois que a validação de domínio garantiu a presença deles.
type NotaPayload struct {
	NaturezaOperacao  string `json:"natureza_operacao"`
	DataEmissao       string `json:"data_emissao"` // RFC3339
	TipoDocumento     string `json:"tipo_documento"`     // 1 = saída
	FinalidadeEmissao string `json:"finalidade_emissao"` // 1 = normal
	Serie             string `json:"serie,omitempty"`

	// Bloco do emitente (cadastro fiscal ativo).
	CNPJEmitente              string `json:"cnpj_emitente"`
	NomeEmitente              string `json:"nome_emitente"`
	InscricaoEstadualEmitente string `json:"inscricao_estadual_emitente,omitempty"`
	RegimeTributarioEmitente  string `json:"regime_tributario_emitente,omitempty"`
	UFEmitente                string `json:"uf_emitente"`
	MunicipioEmitente         string `json:"municipio_emitente"`
	LogradouroEmitente        string `json:"logradouro_emitente,omitempty"`
	NumeroEmitente            string `json:"numero_emitente,omitempty"`
	BairroEmitente            string `json:"bairro_emitente,omitempty"`
	CEPEmitente               string `json:"cep_emitente,omitempty"`

	// Bloco do destinatário (cliente da venda).
	NomeDestinatario       string `json:"nome_destinatario"`
	CPFDestinatario        string `json:"cpf_destinatario,omitempty"`
	CNPJDestinatario       string `json:"cnpj_destinatario,omitempty"`
	EmailDestinatario      string `json:"email_destinatario,omitempty"`
	LogradouroDestinatario string `json:"logradouro_destinatario,omitempty"`
	NumeroDestinatario     string `json:"numero_destinatario,omitempty"`
	BairroDestinatario     string `json:"bairro_destinatario,omitempty"`
	MunicipioDestinatario  string `json:"municipio_destinatario,omitempty"`
	UFDestinatario         string `json:"uf_destinatario,omitempty"`
	CEPDestinatario        string `json:"cep_destinatario,omitempty"`

	// Totais (snapshot financeiro da venda).
	ValorProdutos   decimal.Decimal `json:"valor_produtos"`
	ValorDesconto   decimal.Decimal `json:"valor_desconto"`
	ValorFrete      decimal.Decimal `json:"valor_frete"`
	ValorTotal      decimal.Decimal `json:"valor_total"`
	ModalidadeFrete string          `json:"modalidade_frete"` // 9 = sem frete

	Items           []ItemPayload      `json:"items"`
	FormasPagamento []PagamentoPayload `json:"formas_pagamento"`
}

// ItemPayload linha de produto com os códigos fiscais obrigatórios.
type ItemPayload struct {
	NumeroItem              int             `json:"numero_item"`
	CodigoProduto           string          `json:"codigo_produto"`
	Descricao               string          `json:"descricao"`
	CodigoNCM               string          `json:"codigo_ncm"`
	CFOP                    string          `json:"cfop"`
	UnidadeComercial        string          `json:"unidade_comercial"`
	QuantidadeComercial     decimal.Decimal `json:"quantidade_comercial"`
	ValorUnitarioComercial  decimal.Decimal `json:"valor_unitario_comercial"`
	ValorBruto              decimal.Decimal `json:"valor_bruto"`
	ICMSSituacaoTributaria  string          `json:"icms_situacao_tributaria"`
	ICMSOrigem              string          `json:"icms_origem"`
	PISSituacaoTributaria   string          `json:"pis_situacao_tributaria"`
	COFINSSituacaoTributaria string         `json:"cofins_situacao_tributaria"`
}

// PagamentoPayload bloco de pagamento.
type PagamentoPayload struct {
	FormaPagamento string          `json:"forma_pagamento"`
	ValorPagamento decimal.Decimal `json:"valor_pagamento"`
}

// RespostaNota campos relevantes das respostas do gateway (emissão, consulta,
// cancelamento, carta de correção). Campos ausentes ficam zerados.
type RespostaNota struct {
	Status        string `json:"status"`
	StatusSefaz   string `json:"status_sefaz"`
	Mensagem      string `json:"mensagem,omitempty"`
	MensagemSefaz string `json:"mensagem_sefaz,omitempty"`

	Ref         string `json:"ref,omitempty"`
	Numero      string `json:"numero,omitempty"`
	Serie       string `json:"serie,omitempty"`
	ChaveNFe    string `json:"chave_nfe,omitempty"`
	CaminhoXml  string `json:"caminho_xml_nota_fiscal,omitempty"`
	CaminhoDanfe string `json:"caminho_danfe,omitempty"`

	CaminhoXmlCancelamento  string `json:"caminho_xml_cancelamento,omitempty"`
	CaminhoXmlCartaCorrecao string `json:"caminho_xml_carta_correcao,omitempty"`
	NumeroCartaCorrecao     int    `json:"numero_carta_correcao,omitempty"`

	Erros []ErroValidacaoGateway `json:"erros,omitempty"`
}

// ErroValidacaoGateway erro de schema devolvido pelo gateway em HTTP 422.
type ErroValidacaoGateway struct {
	Codigo   string `json:"codigo"`
	Campo    string `json:"campo,omitempty"`
	Mensagem string `json:"mensagem"`
}

// Resultado é o retorno uniforme de toda chamada ao gateway: resposta
// decodificada, corpo bruto para auditoria, HTTP status e duração.
type Resultado struct {
	Resposta   RespostaNota
	Corpo      json.RawMessage
	HTTPStatus int
	Duracao    time.Duration
}

// DuracaoMs devolve a duração em milissegundos (campo duracao_ms dos eventos).
func (r *Resultado) DuracaoMs() int64 {
	if r == nil {
		return 0
	}
	return r.Duracao.Milliseconds()
}
