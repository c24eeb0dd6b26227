package fiscal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/focus"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes em memória dos repositórios e do gateway, para exercitar os casos de
// uso sem banco nem rede.
// ──────────────────────────────────────────────────────────────────────────────

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// fakeNotas implementa repository.NotaFiscalRepository sobre um map.
type fakeNotas struct {
	mu    sync.Mutex
	porID map[string]*entity.NotaFiscal
}

func newFakeNotas() *fakeNotas {
	return &fakeNotas{porID: map[string]*entity.NotaFiscal{}}
}

func (f *fakeNotas) clonar(n *entity.NotaFiscal) *entity.NotaFiscal {
	c := *n
	return &c
}

func (f *fakeNotas) Create(_ context.Context, nota *entity.NotaFiscal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.porID {
		if n.VendaID == nota.VendaID && n.Status != entity.NotaStatusCancelada {
			return fmt.Errorf("%w: venda %d já tem nota ativa", domain.ErrDuplicate, nota.VendaID)
		}
	}
	f.porID[nota.ID] = f.clonar(nota)
	return nil
}

func (f *fakeNotas) GetByID(_ context.Context, id string) (*entity.NotaFiscal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.porID[id]
	if !ok {
		return nil, nil
	}
	return f.clonar(n), nil
}

func (f *fakeNotas) GetByReferencia(_ context.Context, referencia string) (*entity.NotaFiscal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.porID {
		if n.Referencia == referencia {
			return f.clonar(n), nil
		}
	}
	return nil, nil
}

func (f *fakeNotas) FindAtivaByVenda(_ context.Context, vendaID int64) (*entity.NotaFiscal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.porID {
		if n.VendaID == vendaID && n.Status != entity.NotaStatusCancelada {
			return f.clonar(n), nil
		}
	}
	return nil, nil
}

func (f *fakeNotas) Update(_ context.Context, nota *entity.NotaFiscal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.porID[nota.ID]; !ok {
		return domain.ErrNotFound
	}
	f.porID[nota.ID] = f.clonar(nota)
	return nil
}

func (f *fakeNotas) ListarEmProcessamento(_ context.Context, limite int) ([]*entity.NotaFiscal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.NotaFiscal
	for _, n := range f.porID {
		if n.Status == entity.NotaStatusProcessando && len(out) < limite {
			out = append(out, f.clonar(n))
		}
	}
	return out, nil
}

func (f *fakeNotas) ClaimTentativa(_ context.Context, id string, tentativasEsperadas int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.porID[id]
	if !ok || n.Status != entity.NotaStatusProcessando || n.Tentativas != tentativasEsperadas {
		return false, nil
	}
	n.Tentativas++
	n.AtualizadaEm = time.Now()
	return true, nil
}

// fakeEventos implementa repository.NotaEventoRepository acumulando em slice.
type fakeEventos struct {
	mu      sync.Mutex
	eventos []*entity.NotaEvento
}

func (f *fakeEventos) Append(_ context.Context, e *entity.NotaEvento) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *e
	c.ID = fmt.Sprintf("evt-%d", len(f.eventos)+1)
	f.eventos = append(f.eventos, &c)
	return nil
}

func (f *fakeEventos) ListByNota(_ context.Context, notaID string) ([]*entity.NotaEvento, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.NotaEvento
	for _, e := range f.eventos {
		if e.NotaID == notaID {
			out = append(out, e)
		}
	}
	return out, nil
}

// porTipo conta os eventos de um tipo para uma nota.
func (f *fakeEventos) porTipo(notaID, tipo string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.eventos {
		if e.NotaID == notaID && e.Tipo == tipo {
			n++
		}
	}
	return n
}

// fakeVendas implementa repository.VendaRepository.
type fakeVendas struct {
	mu            sync.Mutex
	porID         map[int64]*entity.Venda
	vinculadas    []int64
	desvinculadas []int64
}

func newFakeVendas(vendas ...*entity.Venda) *fakeVendas {
	f := &fakeVendas{porID: map[int64]*entity.Venda{}}
	for _, v := range vendas {
		f.porID[v.ID] = v
	}
	return f
}

func (f *fakeVendas) GetByID(_ context.Context, id int64) (*entity.Venda, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.porID[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (f *fakeVendas) VincularNota(_ context.Context, vendaID int64, numero, chave string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.porID[vendaID]; ok {
		v.NotaEmitida = true
		v.NotaNumero = numero
		v.NotaChave = chave
	}
	f.vinculadas = append(f.vinculadas, vendaID)
	return nil
}

func (f *fakeVendas) DesvincularNota(_ context.Context, vendaID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.porID[vendaID]; ok {
		v.NotaEmitida = false
		v.NotaNumero = ""
		v.NotaChave = ""
	}
	f.desvinculadas = append(f.desvinculadas, vendaID)
	return nil
}

// fakeConfigs implementa repository.ConfiguracaoFiscalRepository.
type fakeConfigs struct {
	cfg *entity.ConfiguracaoFiscal
}

func (f *fakeConfigs) GetAtiva(_ context.Context) (*entity.ConfiguracaoFiscal, error) {
	return f.cfg, nil
}

// fakeGateway implementa fiscal.Gateway com respostas programáveis.
type fakeGateway struct {
	mu sync.Mutex

	emitirResp    *focus.Resultado
	emitirErr     error
	consultarResp *focus.Resultado
	consultarErr  error
	cancelarResp  *focus.Resultado
	cartaResp     *focus.Resultado
	emailResp     *focus.Resultado

	emitirChamadas    int
	consultarChamadas int
}

func (f *fakeGateway) VerificarConfiguracao() error { return nil }

func (f *fakeGateway) Emitir(_ context.Context, _ string, _ *focus.NotaPayload) (*focus.Resultado, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitirChamadas++
	if f.emitirErr != nil {
		return nil, f.emitirErr
	}
	return f.emitirResp, nil
}

func (f *fakeGateway) Consultar(_ context.Context, _ string, _ bool) (*focus.Resultado, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consultarChamadas++
	if f.consultarErr != nil {
		return nil, f.consultarErr
	}
	return f.consultarResp, nil
}

func (f *fakeGateway) Cancelar(_ context.Context, _, _ string) (*focus.Resultado, error) {
	return f.cancelarResp, nil
}

func (f *fakeGateway) CartaCorrecao(_ context.Context, _, _ string) (*focus.Resultado, error) {
	return f.cartaResp, nil
}

func (f *fakeGateway) ReenviarEmail(_ context.Context, _ string, _ []string) (*focus.Resultado, error) {
	return f.emailResp, nil
}

// resultadoFocus monta um focus.Resultado a partir de uma RespostaNota.
func resultadoFocus(httpStatus int, resp focus.RespostaNota) *focus.Resultado {
	corpo, _ := json.Marshal(resp)
	return &focus.Resultado{
		Resposta:   resp,
		Corpo:      corpo,
		HTTPStatus: httpStatus,
		Duracao:    5 * time.Millisecond,
	}
}

// ── fixtures ──────────────────────────────────────────────────────────────────

func vendaValida(id int64) *entity.Venda {
	return &entity.Venda{
		ID:             id,
		ClienteNome:    "Maria da Silva",
		ClienteCPFCNPJ: "123.456.789-09",
		ClienteEmail:   "maria@exemplo.com.br",
		Logradouro:     "Rua das Flores",
		NumeroEnd:      "100",
		Bairro:         "Centro",
		Municipio:      "São Paulo",
		UF:             "SP",
		CEP:            "01001-000",
		Itens: []entity.VendaItem{
			{
				ID:                       1,
				Codigo:                   "PROD-1",
				Descricao:                "Régua de alumínio 30cm",
				NCM:                      "90178010",
				CFOP:                     "5102",
				Unidade:                  "UN",
				Quantidade:               decimal.NewFromInt(2),
				ValorUnitario:            decimal.NewFromFloat(25.50),
				ICMSSituacaoTributaria:   "102",
				ICMSOrigem:               "0",
				PISSituacaoTributaria:    "07",
				COFINSSituacaoTributaria: "07",
			},
		},
		ValorTotal:     decimal.NewFromFloat(51.00),
		ValorProdutos:  decimal.NewFromFloat(51.00),
		ValorDesconto:  decimal.Zero,
		ValorFrete:     decimal.Zero,
		FormaPagamento: "01",
		DataVenda:      time.Date(2026, 8, 15, 10, 30, 0, 0, time.FixedZone("-03", -3*3600)),
	}
}

func configFiscalValida() *entity.ConfiguracaoFiscal {
	return &entity.ConfiguracaoFiscal{
		ID:                     "cfg-1",
		CNPJ:                   "12.345.678/0001-95",
		RazaoSocial:            "Comercial Exemplo LTDA",
		InscricaoEstadual:      "111222333444",
		RegimeTributario:       "1",
		Logradouro:             "Av. Paulista",
		NumeroEnd:              "1000",
		Bairro:                 "Bela Vista",
		Municipio:              "São Paulo",
		UF:                     "SP",
		CEP:                    "01310-100",
		SerieNFe:               "1",
		NaturezaOperacaoPadrao: "Venda de mercadoria",
		Ativa:                  true,
	}
}
