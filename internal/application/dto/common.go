package dto

// ErrorResponse corpo de erro HTTP: código legível por máquina + mensagem humana.
type ErrorResponse struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Erros     []string `json:"erros,omitempty"`  // Lista estruturada (VALIDATION_ERROR)
	Avisos    []string `json:"avisos,omitempty"` // Avisos não bloqueantes
	DuracaoMs int64    `json:"duracao_ms"`
}
