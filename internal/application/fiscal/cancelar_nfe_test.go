package fiscal_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
	"github.com/seu-usuario/controle-orcamentos/internal/application/fiscal"
	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/focus"
)

// ──────────────────────────────────────────────────────────────────────────────
// Cancelamento: janela de 24h, justificativa obrigatória e recusa sem efeito.
// ──────────────────────────────────────────────────────────────────────────────

const justificativaOK = "cancelamento por erro no valor total da venda"

type cancelarFixture struct {
	notas   *fakeNotas
	eventos *fakeEventos
	vendas  *fakeVendas
	uc      *fiscal.CancelarNFeUseCase
}

func novaCancelarFixture(gw *fakeGateway, autorizadaHa time.Duration) *cancelarFixture {
	notas := newFakeNotas()
	eventos := &fakeEventos{}
	vendas := newFakeVendas(vendaValida(1))

	autorizada := time.Now().Add(-autorizadaHa)
	_ = notas.Create(context.Background(), &entity.NotaFiscal{
		ID: "n1", VendaID: 1, Referencia: "venda-1-aaa",
		Status: entity.NotaStatusAutorizada, Numero: "123",
		CriadaEm: autorizada.Add(-time.Minute), AutorizadaEm: &autorizada,
	})

	uc := fiscal.NewCancelarNFeUseCase(notas, vendas, eventos, gw, testLogger())
	return &cancelarFixture{notas: notas, eventos: eventos, vendas: vendas, uc: uc}
}

func TestCancelar_DentroDoPrazo_NotaCanceladaEVendaLiberada(t *testing.T) {
	gw := &fakeGateway{
		cancelarResp: resultadoFocus(200, focus.RespostaNota{
			Status: "cancelado", StatusSefaz: "135",
		}),
	}
	fx := novaCancelarFixture(gw, 2*time.Hour)

	resp, err := fx.uc.Execute(context.Background(), "user-1",
		dto.CancelarNFeRequest{VendaID: 1, Justificativa: justificativaOK})
	require.NoError(t, err)

	assert.Equal(t, entity.NotaStatusCancelada, resp.Status)

	nota, _ := fx.notas.GetByID(context.Background(), "n1")
	assert.Equal(t, entity.NotaStatusCancelada, nota.Status)
	assert.Equal(t, justificativaOK, nota.Justificativa)
	assert.NotNil(t, nota.CanceladaEm)

	assert.Equal(t, []int64{1}, fx.vendas.desvinculadas,
		"a venda volta a poder receber nova emissão")
	assert.Equal(t, 1, fx.eventos.porTipo("n1", entity.EventoCancelamento))
}

func TestCancelar_ForaDoPrazo_ErrPrazoExpirado(t *testing.T) {
	fx := novaCancelarFixture(&fakeGateway{}, 25*time.Hour)
	_, err := fx.uc.Execute(context.Background(), "user-1",
		dto.CancelarNFeRequest{VendaID: 1, Justificativa: justificativaOK})
	assert.ErrorIs(t, err, domain.ErrPrazoExpirado)
}

func TestCancelar_JustificativaCurta_ErrInvalidInput(t *testing.T) {
	fx := novaCancelarFixture(&fakeGateway{}, time.Hour)
	_, err := fx.uc.Execute(context.Background(), "user-1",
		dto.CancelarNFeRequest{VendaID: 1, Justificativa: "curta demais"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCancelar_NotaNaoAutorizada_ErrInvalidStatus(t *testing.T) {
	fx := novaCancelarFixture(&fakeGateway{}, time.Hour)
	nota, _ := fx.notas.GetByID(context.Background(), "n1")
	nota.Status = entity.NotaStatusProcessando
	_ = fx.notas.Update(context.Background(), nota)

	_, err := fx.uc.Execute(context.Background(), "user-1",
		dto.CancelarNFeRequest{VendaID: 1, Justificativa: justificativaOK})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

// Recusa da SEFAZ: nada muda localmente, só fica auditado.
func TestCancelar_GatewayRecusa_StatusLocalIntacto(t *testing.T) {
	gw := &fakeGateway{
		cancelarResp: resultadoFocus(400, focus.RespostaNota{
			Mensagem: "prazo de cancelamento excedido na SEFAZ",
		}),
	}
	fx := novaCancelarFixture(gw, 2*time.Hour)

	_, err := fx.uc.Execute(context.Background(), "user-1",
		dto.CancelarNFeRequest{VendaID: 1, Justificativa: justificativaOK})
	require.Error(t, err)

	nota, _ := fx.notas.GetByID(context.Background(), "n1")
	assert.Equal(t, entity.NotaStatusAutorizada, nota.Status, "recusa não altera o status local")
	assert.Empty(t, fx.vendas.desvinculadas)
	assert.Equal(t, 1, fx.eventos.porTipo("n1", entity.EventoErro))
}

// ──────────────────────────────────────────────────────────────────────────────
// Carta de correção
// ──────────────────────────────────────────────────────────────────────────────

const correcaoOK = "corrigir o endereço de entrega do destinatário"

func TestCartaCorrecao_Sucesso_MetadadosNaNota(t *testing.T) {
	notas := newFakeNotas()
	eventos := &fakeEventos{}
	gw := &fakeGateway{
		cartaResp: resultadoFocus(200, focus.RespostaNota{
			NumeroCartaCorrecao:     2,
			CaminhoXmlCartaCorrecao: "/arquivos/cce-2.xml",
		}),
	}
	_ = notas.Create(context.Background(), &entity.NotaFiscal{
		ID: "n1", VendaID: 1, Referencia: "venda-1-aaa",
		Status: entity.NotaStatusAutorizada,
	})
	uc := fiscal.NewCartaCorrecaoUseCase(notas, eventos, gw, testLogger())

	resp, err := uc.Execute(context.Background(), "user-1",
		dto.CartaCorrecaoRequest{Ref: "venda-1-aaa", Correcao: correcaoOK})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Numero)
	nota, _ := notas.GetByID(context.Background(), "n1")
	assert.Equal(t, entity.NotaStatusAutorizada, nota.Status, "a CC-e não altera o status principal")
	assert.Equal(t, correcaoOK, nota.CartaCorrecaoTexto)
	assert.Equal(t, "/arquivos/cce-2.xml", nota.URLXmlCartaCorrecao)
	assert.Equal(t, 1, eventos.porTipo("n1", entity.EventoCartaCorrecao))
}

func TestCartaCorrecao_TextoLongoDemais_ErrInvalidInput(t *testing.T) {
	uc := fiscal.NewCartaCorrecaoUseCase(newFakeNotas(), &fakeEventos{}, &fakeGateway{}, testLogger())
	_, err := uc.Execute(context.Background(), "user-1",
		dto.CartaCorrecaoRequest{Ref: "venda-1-aaa", Correcao: strings.Repeat("a", 1001)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCartaCorrecao_NotaNaoAutorizada_ErrInvalidStatus(t *testing.T) {
	notas := newFakeNotas()
	_ = notas.Create(context.Background(), &entity.NotaFiscal{
		ID: "n1", VendaID: 1, Referencia: "venda-1-aaa",
		Status: entity.NotaStatusProcessando,
	})
	uc := fiscal.NewCartaCorrecaoUseCase(notas, &fakeEventos{}, &fakeGateway{}, testLogger())
	_, err := uc.Execute(context.Background(), "user-1",
		dto.CartaCorrecaoRequest{Ref: "venda-1-aaa", Correcao: correcaoOK})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reenvio de e-mail
// ──────────────────────────────────────────────────────────────────────────────

func TestReenviarEmail_Sucesso(t *testing.T) {
	notas := newFakeNotas()
	eventos := &fakeEventos{}
	gw := &fakeGateway{emailResp: resultadoFocus(200, focus.RespostaNota{})}
	_ = notas.Create(context.Background(), &entity.NotaFiscal{
		ID: "n1", VendaID: 1, Referencia: "venda-1-aaa",
		Status: entity.NotaStatusAutorizada,
	})
	uc := fiscal.NewReenviarEmailUseCase(notas, eventos, gw, testLogger())

	resp, err := uc.Execute(context.Background(), "user-1",
		dto.ReenviarEmailRequest{Ref: "venda-1-aaa", Emails: []string{"a@exemplo.com", "b@exemplo.com"}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Enviados)
	assert.Equal(t, 1, eventos.porTipo("n1", entity.EventoEmail))
}

func TestReenviarEmail_EnderecoInvalido_ErrInvalidInput(t *testing.T) {
	uc := fiscal.NewReenviarEmailUseCase(newFakeNotas(), &fakeEventos{}, &fakeGateway{}, testLogger())
	_, err := uc.Execute(context.Background(), "user-1",
		dto.ReenviarEmailRequest{Ref: "venda-1-aaa", Emails: []string{"sem-arroba"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Recusa do gateway é um problema de estado da nota lá, não da entrada do
// usuário: vira ErrInvalidStatus (409), com evento de erro registrado.
func TestReenviarEmail_RecusaDoGateway_ErrInvalidStatus(t *testing.T) {
	notas := newFakeNotas()
	eventos := &fakeEventos{}
	gw := &fakeGateway{emailResp: resultadoFocus(400, focus.RespostaNota{
		Mensagem: "nota não disponível para reenvio",
	})}
	_ = notas.Create(context.Background(), &entity.NotaFiscal{
		ID: "n1", VendaID: 1, Referencia: "venda-1-aaa",
		Status: entity.NotaStatusAutorizada,
	})
	uc := fiscal.NewReenviarEmailUseCase(notas, eventos, gw, testLogger())

	_, err := uc.Execute(context.Background(), "user-1",
		dto.ReenviarEmailRequest{Ref: "venda-1-aaa", Emails: []string{"a@exemplo.com"}})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, eventos.porTipo("n1", entity.EventoErro))
	assert.Equal(t, 0, eventos.porTipo("n1", entity.EventoEmail))
}
