package http_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	apphttp "github.com/seu-usuario/controle-orcamentos/internal/interfaces/http"
)

// A superfície pública registra as duas rotas de consulta (consultar por
// venda e status por ref/nota_id) e as demais operações do ciclo de vida.
// O 401 do grupo cobre qualquer caminho sob /api/nfe, então a existência da
// rota é verificada na tabela de registro, não por requisição.
func TestRouter_RegistraRotasDoCicloDeVida(t *testing.T) {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		JWTSecret:    testJWTSecret,
		WorkerSecret: testWorkerSecret,
	})

	registradas := make(map[string]bool)
	for _, r := range app.GetRoutes() {
		registradas[r.Method+" "+r.Path] = true
	}

	esperadas := []string{
		"POST /api/nfe/emitir",
		"GET /api/nfe/consultar",
		"GET /api/nfe/status",
		"GET /api/nfe/eventos",
		"POST /api/nfe/cancelar",
		"POST /api/nfe/carta-correcao",
		"POST /api/nfe/email",
		"GET /api/nfe/metricas",
		"POST /api/nfe/worker",
	}
	for _, rota := range esperadas {
		assert.True(t, registradas[rota], "rota %s deve estar registrada", rota)
	}
}
