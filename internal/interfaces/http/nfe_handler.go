package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
	"github.com/seu-usuario/controle-orcamentos/internal/application/fiscal"
	"github.com/seu-usuario/controle-orcamentos/internal/domain"
)

// NFeHandler trata as requisições HTTP do ciclo de vida da NF-e (protegido).
type NFeHandler struct {
	emitir    *fiscal.EmitirNFeUseCase
	consultar *fiscal.ConsultarNFeUseCase
	cancelar  *fiscal.CancelarNFeUseCase
	carta     *fiscal.CartaCorrecaoUseCase
	email     *fiscal.ReenviarEmailUseCase
	worker    *fiscal.ProcessarPendentesUseCase
	metricas  *fiscal.MetricasUseCase
}

// NewNFeHandler constrói o handler.
func NewNFeHandler(
	emitir *fiscal.EmitirNFeUseCase,
	consultar *fiscal.ConsultarNFeUseCase,
	cancelar *fiscal.CancelarNFeUseCase,
	carta *fiscal.CartaCorrecaoUseCase,
	email *fiscal.ReenviarEmailUseCase,
	worker *fiscal.ProcessarPendentesUseCase,
	metricas *fiscal.MetricasUseCase,
) *NFeHandler {
	return &NFeHandler{
		emitir:    emitir,
		consultar: consultar,
		cancelar:  cancelar,
		carta:     carta,
		email:     email,
		worker:    worker,
		metricas:  metricas,
	}
}

// responderErro traduz erros de domínio para o par (HTTP status, code).
func responderErro(c *fiber.Ctx, err error, duracaoMs int64) error {
	var val *fiscal.ErroValidacao
	if errors.As(err, &val) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   "venda inválida para emissão",
			Erros:     val.Erros,
			Avisos:    val.Avisos,
			DuracaoMs: duracaoMs,
		})
	}

	status := fiber.StatusInternalServerError
	code := "INTERNAL_ERROR"
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrVendaNotFound):
		status, code = fiber.StatusNotFound, "VENDA_NOT_FOUND"
	case errors.Is(err, domain.ErrConfigNotFound):
		status, code = fiber.StatusPreconditionFailed, "CONFIG_NOT_FOUND"
	case errors.Is(err, domain.ErrConfigError):
		status, code = fiber.StatusInternalServerError, "CONFIG_ERROR"
	case errors.Is(err, domain.ErrAlreadyEmitted):
		status, code = fiber.StatusConflict, "ALREADY_EMITTED"
	case errors.Is(err, domain.ErrInvalidStatus):
		status, code = fiber.StatusConflict, "INVALID_STATUS"
	case errors.Is(err, domain.ErrPrazoExpirado):
		status, code = fiber.StatusUnprocessableEntity, "DEADLINE_EXPIRED"
	case errors.Is(err, domain.ErrGatewayIndisponivel):
		status, code = fiber.StatusBadGateway, "GATEWAY_UNAVAILABLE"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error(), DuracaoMs: duracaoMs})
}

func duracaoDesde(inicio time.Time) int64 {
	return time.Since(inicio).Milliseconds()
}

// Emitir emite a NF-e de uma venda (idempotente por venda).
// POST /api/nfe/emitir
func (h *NFeHandler) Emitir(c *fiber.Ctx) error {
	inicio := time.Now()
	usuarioID := GetUserID(c)
	if usuarioID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.EmitirNFeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "corpo inválido"})
	}
	resp, err := h.emitir.Execute(c.Context(), usuarioID, in)
	if err != nil {
		return responderErro(c, err, duracaoDesde(inicio))
	}
	resp.DuracaoMs = duracaoDesde(inicio)
	if resp.Idempotente {
		return c.JSON(resp)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Consultar devolve o status atual da nota (sincroniza se não terminal).
// GET /api/nfe/consultar?venda_id=|ref=|nota_id=
func (h *NFeHandler) Consultar(c *fiber.Ctx) error {
	inicio := time.Now()
	usuarioID := GetUserID(c)
	if usuarioID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	resp, err := h.consultar.Execute(c.Context(), usuarioID,
		c.Query("nota_id"), c.Query("ref"), int64(c.QueryInt("venda_id")))
	if err != nil {
		return responderErro(c, err, duracaoDesde(inicio))
	}
	resp.DuracaoMs = duracaoDesde(inicio)
	return c.JSON(resp)
}

// Eventos lista a trilha de auditoria da nota.
// GET /api/nfe/eventos?venda_id=|ref=|nota_id=
func (h *NFeHandler) Eventos(c *fiber.Ctx) error {
	inicio := time.Now()
	usuarioID := GetUserID(c)
	if usuarioID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	eventos, err := h.consultar.Eventos(c.Context(),
		c.Query("nota_id"), c.Query("ref"), int64(c.QueryInt("venda_id")))
	if err != nil {
		return responderErro(c, err, duracaoDesde(inicio))
	}
	return c.JSON(fiber.Map{"eventos": eventos, "duracao_ms": duracaoDesde(inicio)})
}

// Cancelar cancela a nota autorizada da venda (janela de 24h).
// POST /api/nfe/cancelar
func (h *NFeHandler) Cancelar(c *fiber.Ctx) error {
	inicio := time.Now()
	usuarioID := GetUserID(c)
	if usuarioID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CancelarNFeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "corpo inválido"})
	}
	resp, err := h.cancelar.Execute(c.Context(), usuarioID, in)
	if err != nil {
		return responderErro(c, err, duracaoDesde(inicio))
	}
	resp.DuracaoMs = duracaoDesde(inicio)
	return c.JSON(resp)
}

// CartaCorrecao registra uma carta de correção para a nota autorizada.
// POST /api/nfe/carta-correcao
func (h *NFeHandler) CartaCorrecao(c *fiber.Ctx) error {
	inicio := time.Now()
	usuarioID := GetUserID(c)
	if usuarioID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CartaCorrecaoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "corpo inválido"})
	}
	resp, err := h.carta.Execute(c.Context(), usuarioID, in)
	if err != nil {
		return responderErro(c, err, duracaoDesde(inicio))
	}
	resp.DuracaoMs = duracaoDesde(inicio)
	return c.JSON(resp)
}

// ReenviarEmail reenvia XML/DANFE para até 10 destinatários.
// POST /api/nfe/email
func (h *NFeHandler) ReenviarEmail(c *fiber.Ctx) error {
	inicio := time.Now()
	usuarioID := GetUserID(c)
	if usuarioID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReenviarEmailRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "corpo inválido"})
	}
	resp, err := h.email.Execute(c.Context(), usuarioID, in)
	if err != nil {
		return responderErro(c, err, duracaoDesde(inicio))
	}
	resp.DuracaoMs = duracaoDesde(inicio)
	return c.JSON(resp)
}

// Worker dispara a varredura de reconciliação das notas em processamento.
// POST /api/nfe/worker?limite=&max_tentativas= (protegido por segredo compartilhado)
func (h *NFeHandler) Worker(c *fiber.Ctx) error {
	inicio := time.Now()
	resp, err := h.worker.Execute(c.Context(), c.QueryInt("limite"), c.QueryInt("max_tentativas"))
	if err != nil {
		return responderErro(c, err, duracaoDesde(inicio))
	}
	resp.DuracaoMs = duracaoDesde(inicio)
	return c.JSON(resp)
}

// Metricas devolve os agregados operacionais da janela pedida.
// GET /api/nfe/metricas?dias=&ambiente=
func (h *NFeHandler) Metricas(c *fiber.Ctx) error {
	inicio := time.Now()
	usuarioID := GetUserID(c)
	if usuarioID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	resp, err := h.metricas.Execute(c.Context(), c.QueryInt("dias"), c.Query("ambiente"))
	if err != nil {
		return responderErro(c, err, duracaoDesde(inicio))
	}
	resp.DuracaoMs = duracaoDesde(inicio)
	return c.JSON(resp)
}
