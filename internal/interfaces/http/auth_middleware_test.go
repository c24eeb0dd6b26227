package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/seu-usuario/controle-orcamentos/internal/interfaces/http"
	pkgjwt "github.com/seu-usuario/controle-orcamentos/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de teste
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "controle-orcamentos-test"
	testExpMin    = 60
)

// buildAuthApp constrói uma aplicação Fiber mínima com o AuthMiddleware e um
// handler que devolve o user_id carregado nos locals.
func buildAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/protegida", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c)})
	})
	return app
}

func tokenValido(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "Usuária Teste", testIssuer, testExpMin)
	require.NoError(t, err, "deve gerar um token JWT válido")
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: token válido → HTTP 200 com o user_id extraído para os locals.
func TestAuthMiddleware_TokenValido_ExtraiUserID(t *testing.T) {
	app := buildAuthApp()
	resp := doRequest(t, app, "/protegida", tokenValido(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
}

// Caso 2: sem header Authorization → HTTP 401 MISSING_TOKEN.
func TestAuthMiddleware_SemHeader_Retorna401(t *testing.T) {
	app := buildAuthApp()
	resp := doRequest(t, app, "/protegida", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

// Caso 3: token malformado → HTTP 401 INVALID_TOKEN.
func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildAuthApp()
	resp := doRequest(t, app, "/protegida", "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// Caso 4: scheme diferente de Bearer → HTTP 401.
func TestAuthMiddleware_SchemeErrado_Retorna401(t *testing.T) {
	app := buildAuthApp()
	resp := doRequest(t, app, "/protegida", "Basic abc123")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 5: token expirado → HTTP 401.
func TestAuthMiddleware_TokenExpirado_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "Usuária Teste", testIssuer, -1)
	require.NoError(t, err)

	app := buildAuthApp()
	resp := doRequest(t, app, "/protegida", "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg — integridade do generate/parse
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "Usuária Teste", testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
}

func TestJWT_SecretIncorreto_RetornaErro(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "Usuária Teste", testIssuer, testExpMin)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("outro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorreto deve invalidar o token")
}
