package fiscal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/focus"
)

// GerarReferencia cria a referência de idempotência da emissão:
// venda-<id>-<sufixo aleatório>. O sufixo permite reemitir a mesma venda após
// um cancelamento sem colidir com a referência anterior no gateway.
func GerarReferencia(vendaID int64) string {
	sufixo := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("venda-%d-%s", vendaID, sufixo)
}

// MontarPayload transforma venda + configuração no corpo de emissão do gateway.
// Determinística para os mesmos inputs: a data de emissão vem da venda, não de
// time.Now(), e nenhum campo aleatório é gerado aqui (a referência é gerada
// fora e enviada na query string). Só deve ser chamada depois que
// ValidarVendaParaEmissao passou.
func MontarPayload(venda *entity.Venda, cfg *entity.ConfiguracaoFiscal) *focus.NotaPayload {
	natureza := cfg.NaturezaOperacaoPadrao
	if natureza == "" {
		natureza = "Venda de mercadoria"
	}

	p := &focus.NotaPayload{
		NaturezaOperacao:  natureza,
		DataEmissao:       venda.DataVenda.Format("2006-01-02T15:04:05-07:00"),
		TipoDocumento:     "1",
		FinalidadeEmissao: "1",
		Serie:             cfg.SerieNFe,

		CNPJEmitente:              somenteDigitos(cfg.CNPJ),
		NomeEmitente:              cfg.RazaoSocial,
		InscricaoEstadualEmitente: cfg.InscricaoEstadual,
		RegimeTributarioEmitente:  cfg.RegimeTributario,
		UFEmitente:                cfg.UF,
		MunicipioEmitente:         cfg.Municipio,
		LogradouroEmitente:        cfg.Logradouro,
		NumeroEmitente:            cfg.NumeroEnd,
		BairroEmitente:            cfg.Bairro,
		CEPEmitente:               somenteDigitos(cfg.CEP),

		NomeDestinatario:       venda.ClienteNome,
		EmailDestinatario:      venda.ClienteEmail,
		LogradouroDestinatario: venda.Logradouro,
		NumeroDestinatario:     venda.NumeroEnd,
		BairroDestinatario:     venda.Bairro,
		MunicipioDestinatario:  venda.Municipio,
		UFDestinatario:         venda.UF,
		CEPDestinatario:        somenteDigitos(venda.CEP),

		ValorProdutos:   venda.ValorProdutos,
		ValorDesconto:   venda.ValorDesconto,
		ValorFrete:      venda.ValorFrete,
		ValorTotal:      venda.ValorTotal,
		ModalidadeFrete: "9",
	}

	// CPF (11 dígitos) ou CNPJ (14): campos mutuamente exclusivos no gateway.
	doc := somenteDigitos(venda.ClienteCPFCNPJ)
	if len(doc) == 14 {
		p.CNPJDestinatario = doc
	} else {
		p.CPFDestinatario = doc
	}

	for i, item := range venda.Itens {
		unidade := item.Unidade
		if unidade == "" {
			unidade = "UN"
		}
		codigo := item.Codigo
		if codigo == "" {
			codigo = fmt.Sprintf("ITEM-%d", item.ID)
		}
		p.Items = append(p.Items, focus.ItemPayload{
			NumeroItem:               i + 1,
			CodigoProduto:            codigo,
			Descricao:                item.Descricao,
			CodigoNCM:                item.NCM,
			CFOP:                     item.CFOP,
			UnidadeComercial:         unidade,
			QuantidadeComercial:      item.Quantidade,
			ValorUnitarioComercial:   item.ValorUnitario,
			ValorBruto:               item.Quantidade.Mul(item.ValorUnitario).Round(2),
			ICMSSituacaoTributaria:   item.ICMSSituacaoTributaria,
			ICMSOrigem:               item.ICMSOrigem,
			PISSituacaoTributaria:    item.PISSituacaoTributaria,
			COFINSSituacaoTributaria: item.COFINSSituacaoTributaria,
		})
	}

	forma := venda.FormaPagamento
	if forma == "" {
		forma = "01" // dinheiro
	}
	p.FormasPagamento = []focus.PagamentoPayload{
		{FormaPagamento: forma, ValorPagamento: venda.ValorTotal},
	}

	return p
}
