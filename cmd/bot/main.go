package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/auditlog"
	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/chat/discord"
	"github.com/vhecode013/Bot-Atendimento/internal/closer"
	"github.com/vhecode013/Bot-Atendimento/internal/config"
	"github.com/vhecode013/Bot-Atendimento/internal/events"
	"github.com/vhecode013/Bot-Atendimento/internal/greeter"
	"github.com/vhecode013/Bot-Atendimento/internal/observability"
	"github.com/vhecode013/Bot-Atendimento/internal/payments"
	"github.com/vhecode013/Bot-Atendimento/internal/publisher"
	"github.com/vhecode013/Bot-Atendimento/internal/ticket"
	"github.com/vhecode013/Bot-Atendimento/internal/transcript"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Discord.Token == "" || cfg.Discord.GuildID == "" {
		log.Fatal("DISCORD_TOKEN and GUILD_ID are required")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("session create failed", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent
	session.State.MaxMessageCount = 2000

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brand := chat.Brand{FooterName: cfg.App.FooterName, FooterLogo: cfg.App.FooterLogo}
	gateway := discord.NewGateway(session, cfg.Discord.GuildID, logger)
	dispatcher := events.NewInMemoryDispatcher()
	fetcher := transcript.NewHTTPFetcher()

	pub := publisher.NewFTPPublisher(cfg.FTP, logger)
	collector := transcript.NewCollector(gateway, gateway, pub, fetcher, logger)
	collector.BatchPause = cfg.Closer.BatchPause()
	renderer := transcript.NewRenderer(fetcher, logger)

	registry := ticket.NewRegistry()
	queue := closer.NewQueue()
	runner := closer.NewRunner(gateway, collector, renderer, pub, registry, dispatcher, brand, logger)
	worker := closer.NewWorker(queue, runner, cfg.Closer.WorkerPause(), logger)

	workflow := ticket.NewWorkflow(gateway, registry, queue, dispatcher, cfg.Discord, brand, logger)
	ticket.NewLogbook(gateway, dispatcher, cfg.Discord, brand, logger)

	pay := payments.NewService(gateway, cfg.Payment, workflow, brand, logger)
	gr := greeter.NewGreeter(gateway, cfg.Discord, brand, logger)
	audit := auditlog.New(gateway, gateway, cfg.AuditLog, cfg.Discord.BotLogChannelID, brand, logger)

	registrar := discord.NewRegistrar(session, cfg.Discord.GuildID, logger)
	discord.NewRouter(gateway, workflow, pay, runner, registrar, logger)
	discord.WireEvents(gateway, cfg.Discord.GuildID, gr, audit, logger)

	if err := session.Open(); err != nil {
		logger.Fatal("gateway connection failed", zap.Error(err))
	}
	defer session.Close()
	logger.Info("connected",
		zap.String("guild", cfg.Discord.GuildID),
		zap.String("bot", session.State.User.Username))

	// Fill the member cache so role lookups and staff DMs work.
	if err := session.RequestGuildMembers(cfg.Discord.GuildID, "", 0, "", false); err != nil {
		logger.Warn("member chunk request failed", zap.Error(err))
	}

	if err := registrar.Register(ctx); err != nil {
		logger.Error("command registration failed", zap.Error(err))
	}
	if err := workflow.PostPanel(ctx); err != nil {
		logger.Error("panel post failed", zap.Error(err))
	}

	worker.Start(ctx)
	go discord.RotatePresence(ctx, session, logger)

	waitForShutdown(logger)
	cancel()
	logger.Info("shutdown complete")
}

func waitForShutdown(logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
