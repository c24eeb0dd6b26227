// Package focus implementa o cliente HTTP do gateway fiscal Focus NFe.
// Toda a conversa com a SEFAZ (assinatura, transmissão, DANFE) acontece do
// lado do gateway; aqui só há chamadas REST autenticadas com timeout.
package focus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/pkg/config"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

// Client cliente autenticado da API Focus NFe.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

// NewClient constrói o cliente a partir da configuração.
func NewClient(cfg config.FocusConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// VerificarConfiguracao valida que token e URL estão presentes antes de
// qualquer chamada (fail-fast dos endpoints).
func (c *Client) VerificarConfiguracao() error {
	if c.token == "" {
		return fmt.Errorf("%w: FOCUS_TOKEN não definido", domain.ErrConfigError)
	}
	if c.baseURL == "" {
		return fmt.Errorf("%w: FOCUS_BASE_URL não definido", domain.ErrConfigError)
	}
	return nil
}

// Emitir envia o payload de emissão sob a referência de idempotência dada.
// POST /v2/nfe?ref=<referencia>
func (c *Client) Emitir(ctx context.Context, referencia string, payload *NotaPayload) (*Resultado, error) {
	path := "/v2/nfe?ref=" + url.QueryEscape(referencia)
	return c.doJSON(ctx, http.MethodPost, path, payload)
}

// Consultar consulta o status atual de uma referência.
// GET /v2/nfe/<ref>[?completa=1]
func (c *Client) Consultar(ctx context.Context, referencia string, completa bool) (*Resultado, error) {
	path := "/v2/nfe/" + url.PathEscape(referencia)
	if completa {
		path += "?completa=1"
	}
	return c.doJSON(ctx, http.MethodGet, path, nil)
}

// Cancelar pede o cancelamento da nota autorizada.
// DELETE /v2/nfe/<ref> com {"justificativa": ...}
func (c *Client) Cancelar(ctx context.Context, referencia, justificativa string) (*Resultado, error) {
	path := "/v2/nfe/" + url.PathEscape(referencia)
	body := map[string]string{"justificativa": justificativa}
	return c.doJSON(ctx, http.MethodDelete, path, body)
}

// CartaCorrecao registra uma carta de correção para a nota autorizada.
// POST /v2/nfe/<ref>/carta_correcao com {"correcao": ...}
func (c *Client) CartaCorrecao(ctx context.Context, referencia, correcao string) (*Resultado, error) {
	path := "/v2/nfe/" + url.PathEscape(referencia) + "/carta_correcao"
	body := map[string]string{"correcao": correcao}
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// ReenviarEmail pede o reenvio do XML/DANFE para os endereços informados.
// POST /v2/nfe/<ref>/email com {"emails": [...]}
func (c *Client) ReenviarEmail(ctx context.Context, referencia string, emails []string) (*Resultado, error) {
	path := "/v2/nfe/" + url.PathEscape(referencia) + "/email"
	body := map[string][]string{"emails": emails}
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// doJSON executa a chamada, mede a duração e decodifica a resposta.
// Falhas de rede/timeout viram domain.ErrGatewayIndisponivel; respostas HTTP
// de erro NÃO viram error aqui — o status e o corpo sobem para o caso de uso
// decidir (e auditar) o que fazer.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}) (*Resultado, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("serializar corpo %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("montar requisição %s %s: %w", method, path, err)
	}
	// A API Focus usa HTTP Basic com o token como usuário e senha vazia.
	req.SetBasicAuth(c.token, "")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	inicio := time.Now()
	resp, err := c.http.Do(req)
	duracao := time.Since(inicio)
	if err != nil {
		c.log.Warn().Err(err).Str("metodo", method).Str("path", path).
			Dur("duracao", duracao).Msg("falha de rede no gateway fiscal")
		return &Resultado{Duracao: duracao}, fmt.Errorf("%w: %v", domain.ErrGatewayIndisponivel, err)
	}
	defer resp.Body.Close()

	corpo, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Resultado{HTTPStatus: resp.StatusCode, Duracao: duracao},
			fmt.Errorf("%w: ler resposta: %v", domain.ErrGatewayIndisponivel, err)
	}

	resultado := &Resultado{
		Corpo:      json.RawMessage(corpo),
		HTTPStatus: resp.StatusCode,
		Duracao:    duracao,
	}
	// Corpo não-JSON (proxy, HTML de erro) não é fatal: o bruto fica no evento.
	if err := json.Unmarshal(corpo, &resultado.Resposta); err != nil {
		c.log.Warn().Int("http_status", resp.StatusCode).Str("path", path).
			Msg("resposta do gateway não é JSON decodificável")
	}
	return resultado, nil
}
