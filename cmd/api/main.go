package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/seu-usuario/controle-orcamentos/internal/application/fiscal"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/focus"
	"github.com/seu-usuario/controle-orcamentos/internal/infrastructure/postgres"
	httpRouter "github.com/seu-usuario/controle-orcamentos/internal/interfaces/http"
	"github.com/seu-usuario/controle-orcamentos/pkg/config"
	"github.com/seu-usuario/controle-orcamentos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ambiente_nfe", cfg.Focus.Ambiente).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	notaRepo := postgres.NewNotaFiscalRepository(pool)
	eventoRepo := postgres.NewNotaEventoRepository(pool)
	vendaRepo := postgres.NewVendaRepository(pool)
	configRepo := postgres.NewConfiguracaoFiscalRepository(pool)
	metricasRepo := postgres.NewMetricasRepository(pool)

	gateway := focus.NewClient(cfg.Focus, log)

	emitirUC := fiscal.NewEmitirNFeUseCase(notaRepo, vendaRepo, configRepo, eventoRepo, gateway, log, cfg.Focus.Ambiente)
	consultarUC := fiscal.NewConsultarNFeUseCase(notaRepo, vendaRepo, eventoRepo, gateway, log)
	cancelarUC := fiscal.NewCancelarNFeUseCase(notaRepo, vendaRepo, eventoRepo, gateway, log)
	cartaUC := fiscal.NewCartaCorrecaoUseCase(notaRepo, eventoRepo, gateway, log)
	emailUC := fiscal.NewReenviarEmailUseCase(notaRepo, eventoRepo, gateway, log)
	workerUC := fiscal.NewProcessarPendentesUseCase(notaRepo, vendaRepo, eventoRepo, gateway, log,
		cfg.Focus.MaxTentativas, cfg.Focus.LimitePadrao)
	metricasUC := fiscal.NewMetricasUseCase(metricasRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // emissão síncrona espera o gateway
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		EmitirNFe:     emitirUC,
		ConsultarNFe:  consultarUC,
		CancelarNFe:   cancelarUC,
		CartaCorrecao: cartaUC,
		ReenviarEmail: emailUC,
		Worker:        workerUC,
		Metricas:      metricasUC,
		JWTSecret:     cfg.JWT.Secret,
		WorkerSecret:  cfg.Focus.WorkerSecret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
