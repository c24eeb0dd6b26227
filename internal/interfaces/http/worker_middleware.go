package http

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
)

// WorkerMiddleware protege o endpoint da varredura com um segredo compartilhado
// (Bearer fixo, para schedulers/cron), separado da autenticação de usuários.
func WorkerMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CONFIG_ERROR", Message: "NFE_WORKER_SECRET não configurado"})
		}
		authHeader := c.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "formato: Bearer <segredo>"})
		}
		token := strings.TrimSpace(parts[1])
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "segredo do worker inválido"})
		}
		return c.Next()
	}
}
