package fiscal

import (
	"time"

	"github.com/seu-usuario/controle-orcamentos/internal/domain/entity"
	"github.com/seu-usuario/controle-orcamentos/internal/domain/nfe"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/focus"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

// aplicarResultado mapeia a resposta do gateway sobre a nota local e devolve
// se houve mudança e se a autorização aconteceu agora.
//
// Status desconhecido do gateway NÃO altera o status local: fica um warning
// no log para revisão manual e a nota segue como está — nunca default
// silencioso para um estado terminal.
func aplicarResultado(nota *entity.NotaFiscal, res *focus.Resultado, log *logger.Logger) (mudou, autorizadaAgora bool) {
	resp := res.Resposta
	if resp.Status == "" {
		// Resposta sem status (422 de schema, corpo não-JSON): só a mensagem.
		if resp.MensagemSefaz != "" || resp.Mensagem != "" || len(resp.Erros) > 0 {
			nota.Mensagem = mensagemDaResposta(resp)
			nota.AtualizadaEm = time.Now()
			return true, false
		}
		return false, false
	}

	statusLocal, ok := nfe.MapearStatusFocus(resp.Status)
	if !ok {
		log.Warn().
			Str("nota_id", nota.ID).
			Str("referencia", nota.Referencia).
			Str("status_gateway", resp.Status).
			Msg("status desconhecido do gateway; nota mantida para revisão manual")
		return false, false
	}

	agora := time.Now()
	eraAutorizada := nota.Status == entity.NotaStatusAutorizada

	mudou = nota.Status != statusLocal
	nota.Status = statusLocal
	nota.StatusSefaz = resp.StatusSefaz
	if m := mensagemDaResposta(resp); m != "" {
		nota.Mensagem = m
	}
	if resp.Numero != "" {
		nota.Numero = resp.Numero
	}
	if resp.Serie != "" {
		nota.Serie = resp.Serie
	}
	if resp.ChaveNFe != "" {
		nota.ChaveAcesso = resp.ChaveNFe
	}
	if resp.CaminhoXml != "" {
		nota.URLXml = resp.CaminhoXml
	}
	if resp.CaminhoDanfe != "" {
		nota.URLDanfe = resp.CaminhoDanfe
	}
	nota.AtualizadaEm = agora

	if statusLocal == entity.NotaStatusAutorizada && !eraAutorizada {
		if nota.AutorizadaEm == nil {
			nota.AutorizadaEm = &agora
		}
		autorizadaAgora = true
	}
	if statusLocal == entity.NotaStatusCancelada && nota.CanceladaEm == nil {
		nota.CanceladaEm = &agora
	}
	return mudou, autorizadaAgora
}

func mensagemDaResposta(resp focus.RespostaNota) string {
	if resp.MensagemSefaz != "" {
		return resp.MensagemSefaz
	}
	if resp.Mensagem != "" {
		return resp.Mensagem
	}
	if len(resp.Erros) > 0 {
		return resp.Erros[0].Mensagem
	}
	return ""
}
