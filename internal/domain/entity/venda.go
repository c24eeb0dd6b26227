package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venda é a entidade comercial colaboradora: o subsistema fiscal apenas a lê
// e, após a autorização, grava de volta número/chave da nota e a flag NotaEmitida.
type Venda struct {
	ID             int64
	ClienteNome    string
	ClienteCPFCNPJ string
	ClienteEmail   string

	// Endereço do destinatário (exigido pela SEFAZ no payload).
	Logradouro string
	NumeroEnd  string
	Bairro     string
	Municipio  string
	UF         string
	CEP        string

	Itens []VendaItem

	ValorTotal     decimal.Decimal
	ValorProdutos  decimal.Decimal
	ValorDesconto  decimal.Decimal
	ValorFrete     decimal.Decimal
	FormaPagamento string // Código da forma de pagamento (01=dinheiro, 03=cartão...)

	DataVenda time.Time

	// Vínculo com a NF-e após autorização.
	NotaEmitida bool
	NotaNumero  string
	NotaChave   string
}

// VendaItem é uma linha da venda com os códigos fiscais por item.
// NCM, CFOP e as situações tributárias são tratados como campos opacos
// validados: sem eles a emissão é bloqueada, nunca preenchida com default.
type VendaItem struct {
	ID            int64
	Codigo        string
	Descricao     string
	NCM           string
	CFOP          string
	Unidade       string
	Quantidade    decimal.Decimal
	ValorUnitario decimal.Decimal

	ICMSSituacaoTributaria   string
	ICMSOrigem               string
	PISSituacaoTributaria    string
	COFINSSituacaoTributaria string
}
