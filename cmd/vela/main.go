package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rahul/vela/internal/agent"
	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/events"
	"github.com/rahul/vela/internal/gateway"
	"github.com/rahul/vela/internal/governance"
	"github.com/rahul/vela/internal/observability"
	"github.com/rahul/vela/internal/store"
	"github.com/rahul/vela/internal/tasks"
	"github.com/rahul/vela/pkg/config"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	// Secrets come from the environment; config.json only references them.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on process environment")
	}

	cfg := config.LoadConfig("config.json")
	logger := observability.NewLogger()
	bus := events.NewBus()

	policy, err := governance.LoadPolicy(cfg.Governance.PolicyPath)
	if err != nil {
		log.Printf("Warning: %v; using built-in policy", err)
		policy = governance.DefaultPolicy()
	}
	gate, err := governance.NewGate(policy)
	if err != nil {
		log.Fatalf("Invalid governance policy: %v", err)
	}
	// Non-negotiable deny patterns, layered on top of whatever the policy
	// file says.
	for _, pattern := range []string{`rm\s+-rf`, `mkfs`, `shutdown`, `reboot`} {
		if err := gate.DenyArguments(pattern); err != nil {
			log.Fatalf("Invalid deny pattern %q: %v", pattern, err)
		}
	}

	db, err := store.NewStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	audit := store.NewAuditWriter(db)
	audit.Attach(bus)

	// Capability registrations. A capability that fails to initialize is
	// skipped, not fatal: the assistant degrades rather than refuses to boot.
	registry := capability.NewRegistry()
	register := func(c capability.Capability, err error) {
		if err != nil {
			log.Printf("Warning: failed to initialize capability: %v", err)
			return
		}
		if err := registry.Register(c); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	register(capability.NewOpenApp(), nil)
	register(capability.NewCloseApp(), nil)
	register(capability.NewFileManager(cfg.App.Workspace), nil)
	register(capability.NewFileSearch(cfg.App.Workspace), nil)
	register(capability.NewDeleteItem(cfg.App.Workspace), nil)
	register(capability.NewShred(cfg.App.Workspace), nil)
	search, err := capability.NewWebSearch()
	register(search, err)
	register(capability.NewReadPage(), nil)
	register(capability.NewBrowser(), nil)
	register(capability.NewSystemInfo(), nil)
	register(capability.NewSetVolume(), nil)
	register(capability.NewLockScreen(), nil)
	register(capability.NewDesktopControl(), nil)
	register(capability.NewCommandRunner(), nil)
	register(capability.NewScheduleTask(db), nil)
	notify := capability.NewNotify()
	register(notify, nil)

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var model llms.Model
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	manager := tasks.NewManager()
	svc := &agent.Services{
		Config:   cfg,
		Registry: registry,
		Gate:     gate,
		Bus:      bus,
		Store:    db,
		Tasks:    manager,
		Logger:   logger,
		Model:    model,
	}

	prompts := agent.NewPromptManager("./prompts")
	dispatcher := agent.NewDispatcher(svc.Registry, svc.Gate, svc.Bus, svc.Logger)
	planner := agent.NewPlanner(svc.Model, svc.Registry, prompts, svc.Logger)
	critic := agent.NewCritic(policy)
	responder := agent.NewResponder(svc.Model, svc.Store, prompts, svc.Logger)
	brain := agent.NewCoordinator(planner, critic, dispatcher, responder, svc.Bus, svc.Logger)

	var gateways []gateway.Messenger
	if gw, ok := cfg.GetGateway("telegram"); ok {
		tg, err := gateway.NewTelegramGateway(gw.Token, brain)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, tg)
	}
	if gw, ok := cfg.GetGateway("discord"); ok {
		dc, err := gateway.NewDiscordGateway(gw.Token, brain)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, dc)
	}
	if len(gateways) == 0 {
		log.Fatal("No gateway enabled in config")
	}

	// Proactive notifications go out through the first gateway.
	notify.Bind(gateways[0])

	// Forward system alerts to the primary gateway's default chat when one
	// is configured.
	if alertChat := os.Getenv("VELA_ALERT_CHAT"); alertChat != "" {
		bus.Subscribe(events.SystemAlert, func(payload any) {
			if text, ok := payload.(string); ok {
				if err := gateways[0].Send(alertChat, text); err != nil {
					log.Printf("Alert delivery failed: %v", err)
				}
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := agent.NewScheduler(dispatcher, db)
	manager.RunPeriodic("reminder-scheduler", scheduler.Poll, 30*time.Second)

	health := agent.NewHealthMonitor(healthEndpoint(pCfg), bus, logger)
	manager.RunPeriodic("health-monitor", health.Check, 30*time.Second)

	manager.RunPeriodic("dashboard", func(ctx context.Context) {
		observability.PrintLiveStatus()
	}, 1*time.Second)

	for _, gw := range gateways {
		gw := gw
		go func() {
			if err := gw.Start(); err != nil {
				log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
				stop()
			}
		}()
	}

	// Wait for shutdown signal
	<-ctx.Done()

	for _, gw := range gateways {
		_ = gw.Stop()
	}
	manager.Stop()

	// Reset terminal aesthetics
	observability.CleanupTerminal()

	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] CORE DE-INITIALIZED. GOODBYE.\033[0m")
}

func healthEndpoint(p config.ProviderConfig) string {
	if p.BaseURL != "" {
		return p.BaseURL + "/models"
	}
	return "https://api.openai.com/v1/models"
}
