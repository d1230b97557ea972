package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"media-catalog/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// ErrInvalidConfig is wrapped by every validation failure of LoadConfig.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	// Document store
	StoreDriver   string
	MongoHost     string
	MongoPort     string
	StoreDatabase string
	SQLitePath    string
	EnsureIndexes bool
	StoreTimeout  time.Duration

	// Asset files, named by hash
	AssetDir string

	// HTTP
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogHealthChecks bool

	// Listing and background work
	ListingAllowPartial bool
	StatsInterval       time.Duration
	AuditInterval       time.Duration
	AuditTimeout        time.Duration
}

// ConnectionString returns the MongoDB URI built from MongoHost and MongoPort.
func (c *Config) ConnectionString() string {
	return fmt.Sprintf("mongodb://%s/", net.JoinHostPort(c.MongoHost, c.MongoPort))
}

// LoadConfig loads configuration from an optional .env file and the
// environment, logs it, and validates it. The env file is applied before
// the first log line so LOG_LEVEL, DEBUG and LOG_FORMAT may come from it.
func LoadConfig() (*Config, error) {
	envPath := getEnv("ENV_FILE", ".env")
	envLoaded, envErr := loadEnvFile(envPath)

	printBanner()
	logSystemInfo()
	logEnvFile(envPath, envLoaded, envErr)

	config, err := configFromEnv()
	if err != nil {
		return nil, err
	}

	logConfig(config)

	if err := config.prepare(); err != nil {
		return nil, err
	}
	return config, nil
}

// FromEnv reads and validates the configuration without the startup
// banner. Command-line tools use it.
func FromEnv() (*Config, error) {
	envPath := getEnv("ENV_FILE", ".env")
	envLoaded, envErr := loadEnvFile(envPath)
	logEnvFile(envPath, envLoaded, envErr)
	return configFromEnv()
}

// loadEnvFile loads key=value pairs from path without overriding
// variables that are already set. A missing file is not an error. It must
// not log: the logger reads its level and format once, on first use.
func loadEnvFile(path string) (bool, error) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func logEnvFile(path string, loaded bool, err error) {
	switch {
	case err != nil:
		logging.Warn("Failed to load env file %s: %v", path, err)
	case loaded:
		logging.Info("Loaded environment from %s", path)
	default:
		logging.Debug("No env file at %s", path)
	}
}

// configFromEnv reads every setting and checks the values that cannot be
// defaulted.
func configFromEnv() (*Config, error) {
	config := &Config{
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoHost:           getEnv("MONGO_HOST", "127.0.0.1"),
		MongoPort:           getEnv("MONGO_PORT", "27017"),
		StoreDatabase:       getEnv("STORE_DATABASE", "guava"),
		SQLitePath:          getEnv("SQLITE_PATH", "./catalog.db"),
		EnsureIndexes:       getEnvBool("STORE_ENSURE_INDEXES", true),
		StoreTimeout:        getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		AssetDir:            getEnv("ASSET_DIR", "content"),
		Port:                getEnv("PORT", "8080"),
		MetricsPort:         getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks:     getEnvBool("LOG_HEALTH_CHECKS", true),
		ListingAllowPartial: getEnvBool("LISTING_ALLOW_PARTIAL", false),
		StatsInterval:       getEnvDuration("STATS_INTERVAL", 5*time.Minute),
		AuditInterval:       getEnvDuration("AUDIT_INTERVAL", time.Hour),
		AuditTimeout:        getEnvDuration("AUDIT_TIMEOUT", 10*time.Minute),
	}

	switch config.StoreDriver {
	case "mongo", "sqlite":
	default:
		return nil, fmt.Errorf("%w: STORE_DRIVER must be mongo or sqlite, got %q", ErrInvalidConfig, config.StoreDriver)
	}

	for name, port := range map[string]string{"PORT": config.Port, "METRICS_PORT": config.MetricsPort, "MONGO_PORT": config.MongoPort} {
		if err := validatePort(port); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}

	if config.StoreTimeout <= 0 {
		return nil, fmt.Errorf("%w: STORE_TIMEOUT must be positive", ErrInvalidConfig)
	}

	if config.StatsInterval <= 0 {
		return nil, fmt.Errorf("%w: STATS_INTERVAL must be positive", ErrInvalidConfig)
	}

	// AUDIT_INTERVAL=0 disables the background audit
	if config.AuditInterval < 0 || config.AuditTimeout <= 0 {
		return nil, fmt.Errorf("%w: AUDIT_INTERVAL must not be negative and AUDIT_TIMEOUT must be positive", ErrInvalidConfig)
	}

	return config, nil
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%q is not a number", port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("%d is out of range", n)
	}
	return nil
}

// prepare resolves paths and checks the directories the selected store
// and the asset locator depend on.
func (c *Config) prepare() error {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	assetDir, err := filepath.Abs(c.AssetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve asset directory path: %w", err)
	}
	c.AssetDir = assetDir
	logging.Info("  Asset directory (absolute): %s", assetDir)

	// Assets are mounted, never created here
	if err := checkDirectory(assetDir); err != nil {
		logging.Warn("  Asset directory issue: %v (downloads will return 404)", err)
	}

	if c.StoreDriver == "sqlite" {
		dbPath, err := filepath.Abs(c.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to resolve sqlite path: %w", err)
		}
		c.SQLitePath = dbPath

		dbDir := filepath.Dir(dbPath)
		if err := ensureDirectory(dbDir, "database"); err != nil {
			return fmt.Errorf("database directory error: %w", err)
		}
		if err := testWriteAccess(dbDir); err != nil {
			return fmt.Errorf("database directory is not writable: %w", err)
		}
		logging.Info("  [OK] Database directory is writable")
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Store:          %s", c.StoreDriver)
	logging.Info("    Partial lists:  %s", enabledString(c.ListingAllowPartial))
	logging.Info("    Metrics:        %s", enabledString(c.MetricsEnabled))

	return nil
}

func logConfig(c *Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  STORE_DRIVER:          %s", c.StoreDriver)
	if c.StoreDriver == "sqlite" {
		logging.Info("  SQLITE_PATH:           %s", c.SQLitePath)
	} else {
		logging.Info("  MONGO_HOST:            %s", c.MongoHost)
		logging.Info("  MONGO_PORT:            %s", c.MongoPort)
		logging.Info("  STORE_ENSURE_INDEXES:  %v", c.EnsureIndexes)
	}
	logging.Info("  STORE_DATABASE:        %s", c.StoreDatabase)
	logging.Info("  STORE_TIMEOUT:         %s", c.StoreTimeout)
	logging.Info("  ASSET_DIR:             %s", c.AssetDir)
	logging.Info("  PORT:                  %s", c.Port)
	logging.Info("  METRICS_PORT:          %s", c.MetricsPort)
	logging.Info("  METRICS_ENABLED:       %v", c.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:     %v", c.LogHealthChecks)
	logging.Info("  LISTING_ALLOW_PARTIAL: %v", c.ListingAllowPartial)
	logging.Info("  STATS_INTERVAL:        %s", c.StatsInterval)
	if c.AuditInterval > 0 {
		logging.Info("  AUDIT_INTERVAL:        %s", c.AuditInterval)
	} else {
		logging.Info("  AUDIT_INTERVAL:        DISABLED")
	}
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogStoreInit logs store connection timing
func LogStoreInit(driver string, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STORE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] %s store connected in %v", driver, duration)
}

// LogCollectorInit logs the background stats collector configuration
func LogCollectorInit(interval time.Duration) {
	logging.Info("  [OK] Catalog stats collector started (interval: %v)", interval)
}

// LogAuditorInit logs the background asset audit configuration
func LogAuditorInit(interval time.Duration, workers int) {
	if interval <= 0 {
		logging.Info("  [--] Asset audit disabled")
		return
	}
	logging.Info("  [OK] Asset audit started (interval: %v, workers: %d)", interval, workers)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup returns the first path segment of a route template
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	first, _, _ := strings.Cut(path, "/")
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Catalog API:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
                     _ _                  _        _
  _ __ ___   ___  __| (_) __ _    ___ __ _| |_ __ _| | ___   __ _
 | '_ ' _ \ / _ \/ _' | |/ _' |  / __/ _' | __/ _' | |/ _ \ / _' |
 | | | | | |  __/ (_| | | (_| | | (_| (_| | || (_| | | (_) | (_| |
 |_| |_| |_|\___|\__,_|_|\__,_|  \___\__,_|\__\__,_|_|\___/ \__, |
                                                            |___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// checkDirectory verifies that path exists and is a directory.
func checkDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	return nil
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	return checkDirectory(path)
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
