package nfe

import (
	"fmt"
	"regexp"
	"time"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
)

// Limites legais das operações pós-autorização.
const (
	JustificativaMin      = 15
	JustificativaMax      = 255  // cancelamento
	CartaCorrecaoMax      = 1000 // carta de correção
	PrazoCancelamento     = 24 * time.Hour
	MaxEmailsPorReenvio   = 10
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidarJustificativaCancelamento checa o tamanho exigido pela SEFAZ (15–255).
func ValidarJustificativaCancelamento(justificativa string) error {
	n := len([]rune(justificativa))
	if n < JustificativaMin || n > JustificativaMax {
		return fmt.Errorf("justificativa deve ter entre %d e %d caracteres (tem %d)",
			JustificativaMin, JustificativaMax, n)
	}
	return nil
}

// ValidarTextoCartaCorrecao checa o tamanho exigido pela SEFAZ (15–1000).
func ValidarTextoCartaCorrecao(correcao string) error {
	n := len([]rune(correcao))
	if n < JustificativaMin || n > CartaCorrecaoMax {
		return fmt.Errorf("correção deve ter entre %d e %d caracteres (tem %d)",
			JustificativaMin, CartaCorrecaoMax, n)
	}
	return nil
}

// DentroDoPrazoCancelamento verifica a janela de 24h a partir da autorização.
// Se AutorizadaEm não foi registrado (nota antiga), ancora em CriadaEm.
func DentroDoPrazoCancelamento(nota *entity.NotaFiscal, agora time.Time) bool {
	ancora := nota.CriadaEm
	if nota.AutorizadaEm != nil {
		ancora = *nota.AutorizadaEm
	}
	return agora.Sub(ancora) <= PrazoCancelamento
}

// ValidarEmails valida o lote de reenvio: 1 a 10 endereços, cada um no formato
// usuario@dominio.tld.
func ValidarEmails(emails []string) error {
	if len(emails) == 0 {
		return fmt.Errorf("informe ao menos um e-mail")
	}
	if len(emails) > MaxEmailsPorReenvio {
		return fmt.Errorf("máximo de %d e-mails por reenvio (recebidos %d)", MaxEmailsPorReenvio, len(emails))
	}
	for _, e := range emails {
		if !emailRegex.MatchString(e) {
			return fmt.Errorf("e-mail inválido: %q", e)
		}
	}
	return nil
}
