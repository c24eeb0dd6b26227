// Package fiscal contém os casos de uso do ciclo de vida da NF-e:
// emissão, consulta, cancelamento, carta de correção, reenvio de e-mail,
// varredura de notas em voo e métricas.
package fiscal

import (
	"context"

	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/focus"
)

// Gateway abstrai o cliente do gateway fiscal para os casos de uso
// (a implementação real é focus.Client; os testes usam um fake).
type Gateway interface {
	VerificarConfiguracao() error
	Emitir(ctx context.Context, referencia string, payload *focus.NotaPayload) (*focus.Resultado, error)
	Consultar(ctx context.Context, referencia string, completa bool) (*focus.Resultado, error)
	Cancelar(ctx context.Context, referencia, justificativa string) (*focus.Resultado, error)
	CartaCorrecao(ctx context.Context, referencia, correcao string) (*focus.Resultado, error)
	ReenviarEmail(ctx context.Context, referencia string, emails []string) (*focus.Resultado, error)
}

var _ Gateway = (*focus.Client)(nil)
