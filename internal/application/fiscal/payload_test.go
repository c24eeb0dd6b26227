package fiscal_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-usuario/controle-orcamentos/internal/application/fiscal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Montagem do payload de emissão: determinística e com a semântica CPF/CNPJ.
// ──────────────────────────────────────────────────────────────────────────────

// O payload não pode conter nada gerado na hora (time.Now, aleatórios): duas
// montagens dos mesmos inputs devem serializar byte a byte iguais, senão um
// retry mudaria o documento fiscal sob a mesma referência.
func TestMontarPayload_Deterministico(t *testing.T) {
	venda := vendaValida(7)
	cfg := configFiscalValida()

	p1, err1 := json.Marshal(fiscal.MontarPayload(venda, cfg))
	p2, err2 := json.Marshal(fiscal.MontarPayload(venda, cfg))
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, string(p1), string(p2))
}

func TestMontarPayload_DataEmissaoVemDaVenda(t *testing.T) {
	p := fiscal.MontarPayload(vendaValida(7), configFiscalValida())
	assert.Equal(t, "2026-08-15T10:30:00-03:00", p.DataEmissao,
		"data de emissão é a data da venda, não o relógio da montagem")
}

func TestMontarPayload_CPFDestinatario(t *testing.T) {
	p := fiscal.MontarPayload(vendaValida(7), configFiscalValida())
	assert.Equal(t, "12345678909", p.CPFDestinatario, "CPF normalizado só com dígitos")
	assert.Empty(t, p.CNPJDestinatario, "CPF e CNPJ são mutuamente exclusivos")
}

func TestMontarPayload_CNPJDestinatario(t *testing.T) {
	venda := vendaValida(7)
	venda.ClienteCPFCNPJ = "12.345.678/0001-95"
	p := fiscal.MontarPayload(venda, configFiscalValida())
	assert.Equal(t, "12345678000195", p.CNPJDestinatario)
	assert.Empty(t, p.CPFDestinatario)
}

func TestMontarPayload_ItensNumeradosDesde1(t *testing.T) {
	venda := vendaValida(7)
	venda.Itens = append(venda.Itens, venda.Itens[0])
	p := fiscal.MontarPayload(venda, configFiscalValida())
	require.Len(t, p.Items, 2)
	assert.Equal(t, 1, p.Items[0].NumeroItem)
	assert.Equal(t, 2, p.Items[1].NumeroItem)
}

func TestMontarPayload_ValorBrutoQuantidadeVezesUnitario(t *testing.T) {
	p := fiscal.MontarPayload(vendaValida(7), configFiscalValida())
	assert.Equal(t, "51", p.Items[0].ValorBruto.String(), "2 x 25.50 = 51.00")
}

func TestMontarPayload_CodigosFiscaisPreservados(t *testing.T) {
	p := fiscal.MontarPayload(vendaValida(7), configFiscalValida())
	item := p.Items[0]
	assert.Equal(t, "90178010", item.CodigoNCM)
	assert.Equal(t, "5102", item.CFOP)
	assert.Equal(t, "102", item.ICMSSituacaoTributaria)
	assert.Equal(t, "0", item.ICMSOrigem)
}

// ──────────────────────────────────────────────────────────────────────────────
// Referência de idempotência
// ──────────────────────────────────────────────────────────────────────────────

func TestGerarReferencia_FormatoEUnicidade(t *testing.T) {
	r1 := fiscal.GerarReferencia(42)
	r2 := fiscal.GerarReferencia(42)

	assert.True(t, strings.HasPrefix(r1, "venda-42-"), "referência carrega o id da venda: %s", r1)
	assert.NotEqual(t, r1, r2,
		"referências da mesma venda diferem: reemissão pós-cancelamento não pode colidir no gateway")
}
