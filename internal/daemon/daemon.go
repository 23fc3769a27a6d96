package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/judwhite/go-svc"

	"github.com/userorionik-source/aaravpos-agent/internal/auth"
	"github.com/userorionik-source/aaravpos-agent/internal/config"
	"github.com/userorionik-source/aaravpos-agent/internal/server"
	"github.com/userorionik-source/aaravpos-agent/internal/service"
	"github.com/userorionik-source/aaravpos-agent/internal/spool"
)

// How long the host waits between Start attempts when the port is claimed.
const startRetryDelay = 5 * time.Second

// GetEnvConfig returns the current environment configuration
func GetEnvConfig() config.Environment {
	return config.GetEnvironment(config.BuildEnvironment)
}

// Program implements svc.Service: it is the host process that owns one
// Service instance and drives start/stop around OS service signals.
type Program struct {
	wg        sync.WaitGroup
	quit      chan struct{}
	service   *service.Service
	platform  spool.PlatformPrinter
	startTime time.Time
}

// Init initializes logging before anything else runs.
func (p *Program) Init(_ svc.Environment) error {
	envConfig := GetEnvConfig()

	if err := initLogging(envConfig); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║   🧾 PRINT RELAY - POS Print Service                       ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")
	log.Printf("[INIT] 🚀 Starting service - Environment: %s", envConfig.Name)
	log.Printf("[INIT] 📅 Build: %s %s", config.BuildDate, config.BuildTime)

	return nil
}

// Start wires the components and binds the listener. A claimed port is not
// fatal to the host: it keeps retrying with a fixed delay until the bind
// succeeds or the service is stopped.
func (p *Program) Start() error {
	p.quit = make(chan struct{})
	p.startTime = time.Now()
	cfg := GetEnvConfig()

	p.platform = spool.ForHost()
	p.logStartupDiagnostics()

	tokens := auth.NewValidator(config.Token(), config.AuthTokenHashB64)
	ws := server.NewServer(tokens, p.platform)

	p.service = service.New(service.Config{
		Host:         cfg.Host,
		Port:         cfg.PortNumber(),
		LogPath:      LogFilePath(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, ws)

	if err := p.service.Start(); err != nil {
		log.Printf("[INIT] ❌ Could not bind port %s: %v (retrying every %v)", cfg.Port, err, startRetryDelay)
		p.wg.Add(1)
		go p.retryStart()
		return nil
	}

	log.Printf("[INIT] ✅ Ready - ws://%s/?token=<secret>", cfg.ListenAddr())
	return nil
}

// retryStart keeps attempting the bind on a fixed delay, forever, until it
// sticks or the service shuts down.
func (p *Program) retryStart() {
	defer p.wg.Done()

	ticker := time.NewTicker(startRetryDelay)
	defer ticker.Stop()

	for {
		select {
		case <-p.quit:
			return
		case <-ticker.C:
			if err := p.service.Start(); err != nil {
				log.Printf("[INIT] ❌ Bind retry failed: %v", err)
				continue
			}
			log.Println("[INIT] ✅ Port acquired on retry, service listening")
			return
		}
	}
}

// Stop shuts the service down gracefully.
func (p *Program) Stop() error {
	log.Println("[STOP] 🛑 Service shutting down...")

	close(p.quit)
	p.wg.Wait()

	if p.service != nil {
		if err := p.service.Stop(); err != nil {
			log.Printf("[STOP] ⚠️ Error stopping service: %v", err)
		}
	}

	uptime := time.Since(p.startTime)
	log.Printf("[STOP] ✅ Service stopped (uptime: %v)", uptime.Round(time.Second))
	return nil
}

// logStartupDiagnostics runs one discovery pass at service start so the log
// records what the spooler sees.
func (p *Program) logStartupDiagnostics() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	printers := p.platform.Discover(ctx)

	log.Println("[PRINTERS] ══════════════════════════════════════════════════")
	log.Printf("[PRINTERS] 🖨️ Detected %d installed printer(s) on %s", len(printers), p.platform.Platform())
	for _, pr := range printers {
		mark := ""
		if pr.IsDefault {
			mark = " ⭐"
		}
		log.Printf("[PRINTERS]    • %s (%s)%s", pr.Name, pr.Status, mark)
	}
	if len(printers) == 0 {
		log.Println("[PRINTERS] ⚠️ No printers detected!")
	}
	log.Println("[PRINTERS] ══════════════════════════════════════════════════")
}

func initLogging(envConfig config.Environment) error {
	logPath := envConfig.LogPath(defaultStateDir())
	logDir := filepath.Dir(logPath)

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}

	if err := InitLogger(logPath, envConfig.Verbose); err != nil {
		return err
	}

	log.Printf("[INIT] 📁 Log file: %s", logPath)
	return nil
}

// defaultStateDir picks the per-OS directory the log convention hangs off.
func defaultStateDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("PROGRAMDATA")
	}
	return "/var/log"
}
