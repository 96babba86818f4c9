package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"posture-watch/internal/capture"
	"posture-watch/internal/config"
	"posture-watch/internal/controllers"
	"posture-watch/internal/journal"
	"posture-watch/internal/logger"
	"posture-watch/internal/notify"
	"posture-watch/internal/pose"
	"posture-watch/internal/shutdown"
	"posture-watch/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName    = "Posture Corrector"
	AppID      = "com.posturewatch.corrector"
	AppVersion = "1.0.0"
)

// Application owns every long-lived component of the monitor
type Application struct {
	fyneApp  fyne.App
	window   fyne.Window
	logger   *logger.ZerologAdapter
	monitor  *controllers.MonitorController
	view     *views.MainView
	journal  *journal.Journal
	shutdown *shutdown.Manager
	settings config.Settings
}

func main() {
	configPath := flag.String("config", "", "path to the settings file")
	flag.Parse()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewApplicationLogger(logger.DetermineLevel(settings.Log.Level), logger.FileOptions{
		Path:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxAgeDays: settings.Log.MaxAgeDays,
		MaxBackups: settings.Log.MaxBackups,
	})

	application, err := NewApplication(settings, appLogger)
	if err != nil {
		appLogger.Error("Application", err, map[string]interface{}{"stage": "initialization"})
		appLogger.Shutdown()
		os.Exit(1)
	}

	application.Run()
}

// NewApplication validates configuration and acquires the camera and model
// before any window exists, so a bad setup fails without showing one.
func NewApplication(settings config.Settings, appLogger *logger.ZerologAdapter) (*Application, error) {
	appLogger.Info("Application", "starting application", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"camera":     settings.Camera.Index,
		"log_level":  settings.Log.Level,
	})

	people, err := config.LoadRoster(settings.Roster.Path)
	if err != nil {
		return nil, err
	}

	source, err := capture.Open(settings.Camera.Index)
	if err != nil {
		return nil, err
	}
	source.SetResolution(settings.Camera.Width, settings.Camera.Height)

	poseConfig := pose.DefaultConfig()
	poseConfig.ModelPath = settings.Pose.Model
	poseConfig.InputSize = settings.Pose.Input
	poseConfig.MinVisibility = settings.Pose.Visibility
	detector, err := pose.NewBlazePose(poseConfig)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("%w: loading pose model: %v", config.ErrConfig, err)
	}

	var recorder journal.Recorder = journal.Nop()
	var store *journal.Journal
	if settings.Journal.Enabled {
		store, err = journal.Open(settings.Journal.Path)
		if err != nil {
			detector.Close()
			source.Close()
			return nil, err
		}
		sessionID, err := store.StartSession(settings.Camera.Index)
		if err != nil {
			store.Close()
			detector.Close()
			source.Close()
			return nil, err
		}
		recorder = store
		appLogger.Info("Application", "journal session started", map[string]interface{}{
			"session": sessionID.String(),
			"path":    settings.Journal.Path,
		})
	}

	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	fyneApp := app.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	window.Resize(calculateWindowSize())
	window.CenterOnScreen()
	window.SetMaster()

	monitor := controllers.NewMonitorController(
		source,
		detector,
		notify.NewDesktop(fyneApp, settings.Notify.Title),
		recorder,
		controllers.UIScheduler{},
		appLogger,
		controllers.MonitorConfig{
			Refresh:      settings.Monitor.Refresh,
			AlertMessage: settings.Notify.Message,
		},
	)

	view := views.NewMainView(fyneApp, window, config.Names(people))

	application := &Application{
		fyneApp:  fyneApp,
		window:   window,
		logger:   appLogger,
		monitor:  monitor,
		view:     view,
		journal:  store,
		shutdown: shutdown.NewManager(appLogger, shutdown.DefaultTimeout),
		settings: settings,
	}

	application.wire()

	appLogger.Info("Application", "initialization complete", map[string]interface{}{
		"people":  len(people),
		"journal": settings.Journal.Enabled,
	})

	return application, nil
}

func (a *Application) wire() {
	a.view.SetStartHandler(a.monitor.Start)
	a.view.SetStopHandler(a.monitor.Stop)
	a.view.SetSetupHandler(a.monitor.Setup)
	a.view.SetThemeHandler(a.monitor.ToggleTheme)
	a.view.SetPersonHandler(a.monitor.SelectPerson)
	a.view.SetQuitHandler(a.fyneApp.Quit)
	a.monitor.SetView(a.view)

	// Registered first, stopped last.
	a.shutdown.Register("logger", a.logger)
	if a.journal != nil {
		a.shutdown.Register("journal", a.journal)
	}
	a.shutdown.Register("monitor", a.monitor)

	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "window close requested", nil)
		a.fyneApp.Quit()
	})
}

// Run shows the window and blocks until the application quits.
func (a *Application) Run() {
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.view.Show()
	if a.settings.Monitor.Warmup {
		a.fyneApp.Lifecycle().SetOnStarted(a.monitor.Warmup)
	}

	go a.startPerformanceMonitoring()

	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.shutdown.Shutdown()
}

// startPerformanceMonitoring logs tick statistics until shutdown
func (a *Application) startPerformanceMonitoring() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.logPerformanceMetrics()
		case <-a.shutdown.Done():
			return
		}
	}
}

func (a *Application) logPerformanceMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	ticks, alerts := a.monitor.Stats()
	fields := a.monitor.Timings().Averages()
	fields["ticks"] = ticks
	fields["alerts"] = alerts
	fields["playing"] = a.monitor.IsPlaying()
	fields["go_memory_mb"] = memStats.Alloc / 1024 / 1024
	fields["goroutine_count"] = runtime.NumGoroutine()

	a.logger.Debug("Application", "performance metrics", fields)
}

func calculateWindowSize() fyne.Size {
	baseWidth := float32(1280)
	baseHeight := float32(800)

	if runtime.NumCPU() >= 8 {
		baseWidth *= 1.2
		baseHeight *= 1.2
	}

	return fyne.NewSize(baseWidth, baseHeight)
}
