package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trends-dashboard/internal/config"
	"trends-dashboard/pkg/api"
	"trends-dashboard/pkg/dashboard"
	"trends-dashboard/pkg/logger"
	"trends-dashboard/pkg/render"
	"trends-dashboard/pkg/trends"
	"trends-dashboard/pkg/wordcloud"
)

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("CRITICAL ERROR: application panic recovered: %v\n", r)
			os.Exit(1)
		}
	}()

	// .env is optional
	_ = godotenv.Load()

	var (
		terms      = flag.String("terms", getEnvOrDefault("TRENDS_TERMS", ""), "Comma-separated search terms (env: TRENDS_TERMS)")
		configPath = flag.String("config", getEnvOrDefault("TRENDS_CONFIG", ""), "Configuration file path (env: TRENDS_CONFIG)")
		outDir     = flag.String("out", getEnvOrDefault("TRENDS_OUT", "report"), "Output directory (env: TRENDS_OUT)")
		debug      = flag.Bool("debug", getEnvBoolOrDefault("DEBUG", false), "Enable debug logging (env: DEBUG)")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		printUsage()
		return
	}

	cfg, err := config.NewManager().Load(*configPath)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))
	log := logger.GetLogger().WithField("component", "main")

	client := api.NewClient(cfg.Trends.Client)
	defer client.Close()

	board := newDashboard(cfg, client, trends.NotifierFunc(func(n trends.Notice) {
		fmt.Printf("[%s] %s: %s\n", n.Level, n.Geo, n.Message)
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()
	report, err := board.Run(ctx, *terms)
	if errors.Is(err, trends.ErrNoTerms) {
		fmt.Println("ERROR: at least one search term is required.")
		fmt.Println("Use -terms flag, TRENDS_TERMS, or trends.default_terms in the config file.")
		fmt.Println("")
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.WithError(err).Fatal("Building dashboard failed")
	}

	if err := writeReport(*outDir, *terms, report, log); err != nil {
		log.WithError(err).Fatal("Writing report failed")
	}

	fmt.Printf("\n=== Search Trends Report ===\n")
	fmt.Printf("Terms: %s\n", report.Terms)
	fmt.Printf("Timeframe: %s\n", report.Timeframe)
	fmt.Printf("Charts: %d\n", report.Charts())
	fmt.Printf("No data: %d\n", report.NoDataNotices())
	fmt.Printf("Failed: %d\n", report.Failed())
	fmt.Printf("Duration: %s\n", time.Since(startTime).Round(time.Millisecond))

	for _, sec := range report.Sections {
		fmt.Printf("\n--- %s ---\n", sec.Geo.Label())
		switch {
		case sec.Error != "":
			fmt.Printf("   Error: %s\n", sec.Error)
		case sec.NoData != nil:
			fmt.Println(sec.NoData.Message)
		}
		for _, p := range sec.Panels {
			if len(p.Rising) == 0 {
				continue
			}
			fmt.Println(render.RisingTable(p.Term, p.Rising))
		}
	}

	fmt.Printf("\nReport written to %s\n", filepath.Join(*outDir, "report.html"))
}

func newDashboard(cfg *config.Config, provider trends.Provider, notifier trends.Notifier) *dashboard.Dashboard {
	return dashboard.New(trends.NewFetcher(provider, cfg.Retry), wordcloud.NewBuilder(cfg.Render.WordCloud), dashboard.Options{
		Geos:         cfg.Trends.Geos,
		Timeframe:    cfg.Trends.Timeframe,
		DefaultTerms: cfg.Trends.DefaultTerms,
		RisingLimit:  cfg.Render.RisingLimit,
		Chart:        cfg.Render.Chart,
		Notifier:     notifier,
	})
}

// writeReport stores the HTML page and one PNG per charted geography. A
// geography whose PNG cannot be drawn is skipped with a warning.
func writeReport(dir, input string, report *dashboard.Report, log *logger.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "report.html"))
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := dashboard.WriteHTML(f, input, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	for _, sec := range report.Sections {
		if sec.Chart == nil || sec.Result == nil {
			continue
		}
		png, err := render.SeriesPNG(sec.Result.Series, sec.Chart.Title)
		if err != nil {
			log.WithError(err).WithField("geo", sec.Geo.Code).Warn("Skipping PNG chart")
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, pngName(sec.Geo)), png, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func pngName(geo trends.GeoScope) string {
	code := strings.ToLower(geo.Code)
	if code == "" {
		code = "worldwide"
	}
	return code + ".png"
}

func printUsage() {
	fmt.Println("Search Trends Dashboard (report mode)")
	fmt.Println("")
	fmt.Println("USAGE:")
	fmt.Println("    ./trends-dashboard -terms \"python, golang\" [OPTIONS]")
	fmt.Println("    ./trends-dashboard  # Uses environment variables")
	fmt.Println("")
	fmt.Println("OPTIONS:")
	fmt.Println("    -terms string    Comma-separated search terms (env: TRENDS_TERMS)")
	fmt.Println("    -config string   Configuration file (env: TRENDS_CONFIG)")
	fmt.Println("    -out string      Output directory (default: report, env: TRENDS_OUT)")
	fmt.Println("    -debug           Enable debug logging (env: DEBUG)")
	fmt.Println("    -help            Show this help message")
	fmt.Println("")
	fmt.Println("Any configuration key can also be set as TRENDS_<SECTION>_<KEY>,")
	fmt.Println("e.g. TRENDS_RETRY_DELAY=30s or TRENDS_TRENDS_TIMEFRAME=\"today 3-m\".")
	fmt.Println("")
	fmt.Println("The server mode lives in cmd/server and serves the same dashboard over HTTP.")
}
