// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/clinicflow/roteiros/internal/api"
	"github.com/clinicflow/roteiros/internal/config"
	"github.com/clinicflow/roteiros/internal/di"
	"github.com/clinicflow/roteiros/internal/services"
	"github.com/clinicflow/roteiros/internal/storage"
	"github.com/clinicflow/roteiros/internal/utils"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = 5 * time.Minute
	metricsInterval      = time.Minute
)

// Server is the subset of *http.Server the app drives.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App owns the process lifecycle: boot, serve, graceful stop.
type App struct {
	config   *config.AppConfig
	server   Server
	router   http.Handler
	stopChan chan os.Signal
	cancel   context.CancelFunc
}

var (
	instance   *App
	instanceMu sync.Mutex
)

// GetApp returns the process-wide app, creating it on first use.
func GetApp() *App {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		instance = &App{stopChan: make(chan os.Signal, 1)}
	}
	return instance
}

// Initialize loads configuration, starts the services and builds the HTTP server.
func Initialize() error {
	a := GetApp()

	base, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := createDirectories(base.DataDir, base.LogDir); err != nil {
		return err
	}
	if err := config.InitConfig(base.DataDir); err != nil {
		return fmt.Errorf("failed to init config: %w", err)
	}

	cfg := config.GetCurrentConfig()
	a.config = cfg
	if err := initLogger(cfg.LogDir, cfg.LogMode); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := InitServices(ctx, cfg); err != nil {
		return fmt.Errorf("failed to init services: %w", err)
	}

	router, err := api.SetupRouter(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}
	a.router = router
	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// InitServices builds every service in dependency order and registers it in the
// DI container. Background loops stop when ctx is done.
func InitServices(ctx context.Context, cfg *config.AppConfig) error {
	container := di.GetContainer()
	logger := utils.GetLogger()

	fs, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	fs.StartCacheCleanup(ctx, cacheCleanupInterval)
	container.Register(di.ServiceStorage, fs)

	llmService, err := services.NewLLMService()
	if err != nil {
		logger.Warn("LLM service unavailable, starting in standby", map[string]interface{}{"error": err})
		llmService = services.NewEmptyLLMService()
	}
	container.Register(di.ServiceLLM, llmService)

	metrics := utils.NewAPIMetrics()
	metrics.StartMetricsCollection(ctx, metricsInterval)
	container.Register(di.ServiceMetrics, metrics)

	scripts := services.NewScriptService(fs, llmService, services.ScriptServiceOptions{
		MaxScriptBytes:   cfg.MaxScriptBytes,
		BatchConcurrency: cfg.BatchConcurrency,
	})
	scripts.Locks().StartCleanup(ctx, cacheCleanupInterval)
	container.Register(di.ServiceScript, scripts)
	container.Register(di.ServiceExport, services.NewExportService(scripts, fs))
	container.Register(di.ServicePreview, api.NewPreviewHub(scripts, metrics.Collector(), cfg.MaxScriptBytes))

	logger.Info("services initialized", map[string]interface{}{
		"services":  container.GetNames(),
		"llm_ready": llmService.IsReady(),
		"provider":  llmService.GetProviderName(),
	})
	return nil
}

// Run serves until SIGINT/SIGTERM or a listener failure, then shuts down.
func Run() error {
	a := GetApp()
	if a.server == nil {
		return errors.New("app not initialized")
	}

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if a.config != nil {
		utils.GetLogger().Info("server listening", map[string]interface{}{"port": a.config.Port})
	}

	var serveErr error
	select {
	case sig := <-a.stopChan:
		utils.GetLogger().Info("shutting down", map[string]interface{}{"signal": sig.String()})
	case serveErr = <-errCh:
		utils.GetLogger().Error("server failed", map[string]interface{}{"error": serveErr})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.cleanup()
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return serveErr
}

// cleanup closes preview sockets and stops the background loops.
func (a *App) cleanup() {
	if hub, err := di.Resolve[*api.PreviewHub](di.GetContainer(), di.ServicePreview); err == nil {
		hub.Shutdown()
	}
	if a.cancel != nil {
		a.cancel()
	}
	utils.GetLogger().Sync()
}

func (a *App) GetConfig() *config.AppConfig {
	return a.config
}

func GetDIContainer() *di.Container {
	return di.GetContainer()
}

func IsDebugMode() bool {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instance != nil && instance.config != nil && instance.config.DebugMode
}

func initLogger(logDir, mode string) error {
	logFile := filepath.Join(logDir, fmt.Sprintf("roteiros_%s.log", time.Now().Format("2006-01-02")))
	if err := utils.InitLogger(logFile, mode); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	return nil
}

func createDirectories(dataDir, logDir string) error {
	dirs := []string{
		dataDir,
		filepath.Join(dataDir, "scripts"),
		filepath.Join(dataDir, "exports"),
		logDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
