package fiscal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seu-usuario/controle-orcamentos/internal/application/dto"
	"github.com/seu-usuario/controle-orcamentos/internal/domain"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/repository"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

// EmitirNFeUseCase orquestra a emissão de uma NF-e para uma venda:
// idempotência por venda, validação fiscal, montagem do payload, envio ao
// gateway e aplicação da primeira resposta.
type EmitirNFeUseCase struct {
	notas    repository.NotaFiscalRepository
	vendas   repository.VendaRepository
	configs  repository.ConfiguracaoFiscalRepository
	gateway  Gateway
	aud      *auditoria
	log      *logger.Logger
	ambiente string
}

// NewEmitirNFeUseCase cria o caso de uso de emissão.
func NewEmitirNFeUseCase(
	notas repository.NotaFiscalRepository,
	vendas repository.VendaRepository,
	configs repository.ConfiguracaoFiscalRepository,
	eventos repository.NotaEventoRepository,
	gateway Gateway,
	log *logger.Logger,
	ambiente string,
) *EmitirNFeUseCase {
	return &EmitirNFeUseCase{
		notas:    notas,
		vendas:   vendas,
		configs:  configs,
		gateway:  gateway,
		aud:      &auditoria{eventos: eventos, log: log},
		log:      log,
		ambiente: ambiente,
	}
}

// Execute emite a nota da venda. Se já existe nota ativa para a venda, devolve
// essa nota com Idempotente=true sem tocar no gateway.
func (u *EmitirNFeUseCase) Execute(ctx context.Context, usuarioID string, req dto.EmitirNFeRequest) (*dto.NotaResponse, error) {
	if req.VendaID <= 0 {
		return nil, fmt.Errorf("%w: venda_id é obrigatório e positivo", domain.ErrInvalidInput)
	}
	// Fail-fast: sem token/URL do gateway nenhuma emissão deve começar.
	if err := u.gateway.VerificarConfiguracao(); err != nil {
		return nil, err
	}

	// Idempotência no nível da aplicação: no máximo uma nota ativa por venda.
	existente, err := u.notas.FindAtivaByVenda(ctx, req.VendaID)
	if err != nil {
		return nil, err
	}
	if existente != nil {
		resp := dto.NovaNotaResponse(existente)
		resp.Idempotente = true
		return resp, nil
	}

	venda, err := u.vendas.GetByID(ctx, req.VendaID)
	if err != nil {
		return nil, err
	}
	if venda == nil {
		return nil, domain.ErrVendaNotFound
	}
	if venda.NotaEmitida {
		return nil, domain.ErrAlreadyEmitted
	}

	cfg, err := u.configs.GetAtiva(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrConfigNotFound
	}

	val := ValidarVendaParaEmissao(venda, cfg)
	if !val.Valida {
		return nil, &ErroValidacao{Erros: val.Erros, Avisos: val.Avisos}
	}

	referencia := GerarReferencia(venda.ID)
	payload := MontarPayload(venda, cfg)
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar payload de emissão: %w", err)
	}

	agora := time.Now()
	nota := &entity.NotaFiscal{
		ID:                  uuid.New().String(),
		VendaID:             venda.ID,
		Referencia:          referencia,
		Status:              entity.NotaStatusPendente,
		ValorTotal:          venda.ValorTotal,
		ValorProdutos:       venda.ValorProdutos,
		ValorDesconto:       venda.ValorDesconto,
		ValorFrete:          venda.ValorFrete,
		NomeDestinatario:    venda.ClienteNome,
		CPFCNPJDestinatario: venda.ClienteCPFCNPJ,
		Ambiente:            u.ambiente,
		CriadaEm:            agora,
		AtualizadaEm:        agora,
	}
	if err := u.notas.Create(ctx, nota); err != nil {
		// Corrida entre duas emissões da mesma venda: o índice único parcial
		// decide; quem perdeu relê e devolve a nota do vencedor.
		if errors.Is(err, domain.ErrDuplicate) {
			vencedora, rerr := u.notas.FindAtivaByVenda(ctx, req.VendaID)
			if rerr == nil && vencedora != nil {
				resp := dto.NovaNotaResponse(vencedora)
				resp.Idempotente = true
				return resp, nil
			}
		}
		return nil, err
	}

	u.aud.registrar(ctx, &entity.NotaEvento{
		NotaID:    nota.ID,
		Tipo:      entity.EventoCriacao,
		Mensagem:  "nota registrada para emissão",
		UsuarioID: usuarioID,
	})

	res, err := u.gateway.Emitir(ctx, referencia, payload)
	if err != nil {
		// Falha de rede: o envio pode ter chegado ao gateway. A nota fica em
		// processando e a reconciliação é responsabilidade exclusiva do worker.
		nota.Status = entity.NotaStatusProcessando
		nota.Mensagem = "falha de comunicação com o gateway; aguardando reconciliação"
		nota.AtualizadaEm = time.Now()
		if uerr := u.notas.Update(ctx, nota); uerr != nil {
			u.log.Error().Err(uerr).Str("nota_id", nota.ID).Msg("falha ao marcar nota como processando após erro de rede")
		}
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoErro,
			"falha de rede ao enviar emissão", usuarioID, string(payloadJSON), res, err.Error())
		return nil, err
	}

	u.aud.registrarChamada(ctx, nota.ID, entity.EventoEnvio,
		"emissão enviada ao gateway", usuarioID, string(payloadJSON), res, "")

	_, autorizadaAgora := aplicarResultado(nota, res, u.log)
	if nota.Status == entity.NotaStatusPendente {
		// Sem status mapeado na resposta: HTTP de erro é rejeição de schema,
		// HTTP de sucesso é envio aceito aguardando a SEFAZ.
		if res.HTTPStatus >= 400 {
			nota.Status = entity.NotaStatusRejeitada
			nota.AtualizadaEm = time.Now()
		} else {
			nota.Status = entity.NotaStatusProcessando
			nota.AtualizadaEm = time.Now()
		}
	}
	if err := u.notas.Update(ctx, nota); err != nil {
		return nil, err
	}

	switch {
	case autorizadaAgora:
		if err := u.vendas.VincularNota(ctx, venda.ID, nota.Numero, nota.ChaveAcesso); err != nil {
			u.log.Error().Err(err).Int64("venda_id", venda.ID).Msg("falha ao vincular nota autorizada à venda")
		}
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoAutorizacao,
			"nota autorizada na emissão síncrona", usuarioID, "", res, "")
	case nota.Status == entity.NotaStatusRejeitada || nota.Status == entity.NotaStatusDenegada:
		u.aud.registrarChamada(ctx, nota.ID, entity.EventoRejeicao,
			"emissão recusada: "+nota.Mensagem, usuarioID, "", res, "")
	}

	resp := dto.NovaNotaResponse(nota)
	resp.Avisos = val.Avisos
	return resp, nil
}
