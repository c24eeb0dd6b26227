// Varredura one-shot das notas em processamento, para rodar em cron/scheduler
// sem passar pelo endpoint HTTP. Sai com código != 0 se a varredura falhar.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/seu-usuario/controle-orcamentos/internal/application/fiscal"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/focus"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/postgres"
	"github.com/seu-usuario/controle-orcamentos/pkg/config"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

func main() {
	limite := flag.Int("limite", 0, "máximo de notas por varredura (0 usa o padrão da configuração)")
	maxTentativas := flag.Int("max-tentativas", 0, "orçamento de consultas por nota nesta varredura (0 usa o padrão da configuração)")
	timeout := flag.Duration("timeout", 5*time.Minute, "tempo máximo da varredura")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().Str("ambiente_nfe", cfg.Focus.Ambiente).Msg("iniciando varredura de notas em processamento")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	notaRepo := postgres.NewNotaFiscalRepository(pool)
	eventoRepo := postgres.NewNotaEventoRepository(pool)
	vendaRepo := postgres.NewVendaRepository(pool)
	gateway := focus.NewClient(cfg.Focus, log)

	workerUC := fiscal.NewProcessarPendentesUseCase(notaRepo, vendaRepo, eventoRepo, gateway, log,
		cfg.Focus.MaxTentativas, cfg.Focus.LimitePadrao)

	resultado, err := workerUC.Execute(ctx, *limite, *maxTentativas)
	if err != nil {
		log.Error().Err(err).Msg("varredura falhou")
		os.Exit(1)
	}

	for _, nota := range resultado.Notas {
		evt := log.Info()
		if nota.Erro != "" {
			evt = log.Warn().Str("erro", nota.Erro)
		}
		evt.Str("nota_id", nota.NotaID).
			Str("referencia", nota.Referencia).
			Str("status", nota.Status).
			Int("tentativas", nota.Tentativas).
			Msg("nota processada")
	}
	log.Info().Int("processadas", resultado.Processadas).Msg("varredura concluída")
}
