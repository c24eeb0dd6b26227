package fiscal

import (
	"context"
	"fmt"

	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

// ProcessarPendentesUseCase é a varredura de reconciliação: consulta no
// gateway as notas presas em processando e aplica o desfecho. Cada nota tem
// um orçamento de consultas (maxTentativas); estourado o orçamento, a nota é
// marcada como rejeitada por timeout em vez de ficar em voo para sempre.
type ProcessarPendentesUseCase struct {
	notas         repository.NotaFiscalRepository
	vendas        repository.VendaRepository
	gateway       Gateway
	aud           *auditoria
	log           *logger.Logger
	maxTentativas int
	limitePadrao  int
}

// NewProcessarPendentesUseCase cria a varredura de notas em processamento.
func NewProcessarPendentesUseCase(
	notas repository.NotaFiscalRepository,
	vendas repository.VendaRepository,
	eventos repository.NotaEventoRepository,
	gateway Gateway,
	log *logger.Logger,
	maxTentativas, limitePadrao int,
) *ProcessarPendentesUseCase {
	if maxTentativas <= 0 {
		maxTentativas = 10
	}
	if limitePadrao <= 0 {
		limitePadrao = 50
	}
	return &ProcessarPendentesUseCase{
		notas:         notas,
		vendas:        vendas,
		gateway:       gateway,
		aud:           &auditoria{eventos: eventos, log: log},
		log:           log,
		maxTentativas: maxTentativas,
		limitePadrao:  limitePadrao,
	}
}

// Execute processa até limite notas em voo (0 usa o limite padrão), das mais
// antigas para as mais novas. maxTentativas sobrepõe o orçamento configurado
// só nesta invocação (0 usa o padrão), para schedulers que queiram encurtar
// ou alongar a reconciliação. Varreduras concorrentes são seguras: cada nota
// é reivindicada por compare-and-swap no contador de tentativas, e quem
// perder a corrida simplesmente pula a nota.
func (u *ProcessarPendentesUseCase) Execute(ctx context.Context, limite, maxTentativas int) (*dto.WorkerResponse, error) {
	if err := u.gateway.VerificarConfiguracao(); err != nil {
		return nil, err
	}
	if limite <= 0 {
		limite = u.limitePadrao
	}
	if maxTentativas <= 0 {
		maxTentativas = u.maxTentativas
	}

	notas, err := u.notas.ListarEmProcessamento(ctx, limite)
	if err != nil {
		return nil, err
	}

	resp := &dto.WorkerResponse{Notas: make([]dto.WorkerNotaReport, 0, len(notas))}
	for _, nota := range notas {
		if ctx.Err() != nil {
			break
		}
		report := u.processar(ctx, nota, maxTentativas)
		resp.Notas = append(resp.Notas, report)
		resp.Processadas++
	}
	return resp, nil
}

func (u *ProcessarPendentesUseCase) processar(ctx context.Context, nota *entity.NotaFiscal, maxTentativas int) dto.WorkerNotaReport {
	report := dto.WorkerNotaReport{
		NotaID:     nota.ID,
		Referencia: nota.Referencia,
		Status:     nota.Status,
		Tentativas: nota.Tentativas,
	}

	esgotada := nota.Tentativas >= maxTentativas

	// O claim é o guarda de concorrência dos dois caminhos (consulta e
	// timeout): só quem incrementa o contador age sobre a nota.
	ok, err := u.notas.ClaimTentativa(ctx, nota.ID, nota.Tentativas)
	if err != nil {
		report.Erro = err.Error()
		return report
	}
	if !ok {
		report.Erro = "nota reivindicada por outra varredura"
		return report
	}
	nota.Tentativas++
	report.Tentativas = nota.Tentativas

	if esgotada {
		nota.Status = entity.NotaStatusRejeitada
		nota.Mensagem = fmt.Sprintf("Timeout: sem desfecho do gateway após %d consultas", maxTentativas)
		if err := u.notas.Update(ctx, nota); err != nil {
			report.Erro = err.Error()
			return report
		}
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro, nota.Mensagem, "", "", nil, "timeout")
		u.log.Warn().Str("nota_id", nota.ID).Str("referencia", nota.Referencia).
			Int("tentativas", nota.Tentativas).Msg("nota marcada como rejeitada por timeout de reconciliação")
		report.Status = nota.Status
		return report
	}

	res, err := u.gateway.Consultar(ctx, nota.Referencia, true)
	if err != nil {
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"falha de rede na consulta da varredura", "", "", res, err.Error())
		report.Erro = err.Error()
		return report
	}
	u.aud.registrarChamada(ctx, nota.ID, entity.EventoConsulta,
		"consulta da varredura de reconciliação", "", "", res, "")

	mudou, autorizadaAgora := aplicarResultado(nota, res, u.log)
	if mudou {
		if err := u.notas.Update(ctx, nota); err != nil {
			report.Erro = err.Error()
			return report
		}
	}
	if autorizadaAgora {
		if err := u.vendas.VincularNota(ctx, nota.VendaID, nota.Numero, nota.ChaveAcesso); err != nil {
			u.log.Error().Err(err).Int64("venda_id", nota.VendaID).Msg("falha ao vincular nota autorizada à venda")
		}
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoAutorizacao,
			"autorização confirmada pela varredura", "", "", res, "")
	} else if mudou && (nota.Status == entity.NotaStatusRejeitada || nota.Status == entity.NotaStatusDenegada) {
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoRejeicao,
			"desfecho negativo: "+nota.Mensagem, "", "", res, "")
	}

	report.Status = nota.Status
	return report
}
