package fiscal

import (
	"fmt"
	"strings"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ResultadoValidacao saída da validação pré-emissão.
// Erros bloqueiam a emissão; avisos não.
type ResultadoValidacao struct {
	Valida bool
	Erros  []string
	Avisos []string
}

// ErroValidacao é devolvido pela emissão quando a venda não passa na validação.
// Carrega a lista completa para a resposta HTTP (VALIDATION_ERROR).
type ErroValidacao struct {
	Erros  []string
	Avisos []string
}

func (e *ErroValidacao) Error() string {
	return "venda inválida para emissão: " + strings.Join(e.Erros, "; ")
}

// ValidarVendaParaEmissao valida venda e configuração antes de montar o payload.
// Pura, sem I/O. Campo fiscal ausente por item (NCM, CFOP, CSTs) é erro, nunca
// default silencioso: código de imposto errado em documento fiscal real tem
// consequência legal.
func ValidarVendaParaEmissao(venda *entity.Venda, cfg *entity.ConfiguracaoFiscal) ResultadoValidacao {
	var r ResultadoValidacao

	if venda == nil {
		r.Erros = append(r.Erros, "venda ausente")
		return r
	}
	if cfg == nil {
		r.Erros = append(r.Erros, "configuração fiscal ausente")
		return r
	}

	// Emitente
	if cfg.CNPJ == "" {
		r.Erros = append(r.Erros, "configuração fiscal sem CNPJ do emitente")
	}
	if cfg.RazaoSocial == "" {
		r.Erros = append(r.Erros, "configuração fiscal sem razão social")
	}
	if cfg.UF == "" || cfg.Municipio == "" {
		r.Erros = append(r.Erros, "configuração fiscal sem UF/município do emitente")
	}

	// Destinatário
	if venda.ClienteNome == "" {
		r.Erros = append(r.Erros, "venda sem nome do destinatário")
	}
	doc := somenteDigitos(venda.ClienteCPFCNPJ)
	switch len(doc) {
	case 11, 14:
		// CPF ou CNPJ
	case 0:
		r.Erros = append(r.Erros, "destinatário sem CPF/CNPJ")
	default:
		r.Erros = append(r.Erros, fmt.Sprintf("CPF/CNPJ do destinatário com tamanho inválido (%d dígitos)", len(doc)))
	}
	if venda.ClienteEmail == "" {
		r.Avisos = append(r.Avisos, "destinatário sem e-mail; XML/DANFE não serão enviados automaticamente")
	}

	// Itens e códigos fiscais
	if len(venda.Itens) == 0 {
		r.Erros = append(r.Erros, "venda sem itens")
	}
	for i, item := range venda.Itens {
		pos := i + 1
		if item.Descricao == "" {
			r.Erros = append(r.Erros, fmt.Sprintf("item %d sem descrição", pos))
		}
		if !item.Quantidade.GreaterThan(decimal.Zero) {
			r.Erros = append(r.Erros, fmt.Sprintf("item %d com quantidade não positiva", pos))
		}
		if item.ValorUnitario.LessThan(decimal.Zero) {
			r.Erros = append(r.Erros, fmt.Sprintf("item %d com valor unitário negativo", pos))
		}
		if item.NCM == "" {
			r.Erros = append(r.Erros, fmt.Sprintf("item %d sem código NCM", pos))
		}
		if item.CFOP == "" {
			r.Erros = append(r.Erros, fmt.Sprintf("item %d sem CFOP", pos))
		}
		if item.ICMSSituacaoTributaria == "" {
			r.Erros = append(r.Erros, fmt.Sprintf("item %d sem situação tributária de ICMS", pos))
		}
		if item.PISSituacaoTributaria == "" {
			r.Erros = append(r.Erros, fmt.Sprintf("item %d sem situação tributária de PIS", pos))
		}
		if item.COFINSSituacaoTributaria == "" {
			r.Erros = append(r.Erros, fmt.Sprintf("item %d sem situação tributária de COFINS", pos))
		}
	}

	// Totais
	if !venda.ValorTotal.GreaterThan(decimal.Zero) {
		r.Erros = append(r.Erros, "venda com valor total não positivo")
	}
	if venda.ValorDesconto.GreaterThan(decimal.Zero) && venda.ValorTotal.GreaterThan(decimal.Zero) {
		limite := venda.ValorTotal.Mul(decimal.NewFromFloat(0.3))
		if venda.ValorDesconto.GreaterThan(limite) {
			r.Avisos = append(r.Avisos, "desconto acima de 30% do total; confira antes de emitir")
		}
	}

	r.Valida = len(r.Erros) == 0
	return r
}

func somenteDigitos(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
