package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/seu-usuario/controle-orcamentos/internal/application/fiscal"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	EmitirNFe     *fiscal.EmitirNFeUseCase
	ConsultarNFe  *fiscal.ConsultarNFeUseCase
	CancelarNFe   *fiscal.CancelarNFeUseCase
	CartaCorrecao *fiscal.CartaCorrecaoUseCase
	ReenviarEmail *fiscal.ReenviarEmailUseCase
	Worker        *fiscal.ProcessarPendentesUseCase
	Metricas      *fiscal.MetricasUseCase
	JWTSecret     string
	WorkerSecret  string
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	handler := NewNFeHandler(deps.EmitirNFe, deps.ConsultarNFe, deps.CancelarNFe,
		deps.CartaCorrecao, deps.ReenviarEmail, deps.Worker, deps.Metricas)

	// Varredura (segredo compartilhado, para cron/scheduler)
	api.Post("/nfe/worker", WorkerMiddleware(deps.WorkerSecret), handler.Worker)

	// Rotas de usuário (requerem Bearer Token JWT)
	nfe := api.Group("/nfe", AuthMiddleware(deps.JWTSecret))
	nfe.Post("/emitir", handler.Emitir)
	nfe.Get("/consultar", handler.Consultar)
	nfe.Get("/status", handler.Consultar)
	nfe.Get("/eventos", handler.Eventos)
	nfe.Post("/cancelar", handler.Cancelar)
	nfe.Post("/carta-correcao", handler.CartaCorrecao)
	nfe.Post("/email", handler.ReenviarEmail)
	nfe.Get("/metricas", handler.Metricas)
}
