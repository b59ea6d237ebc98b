package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/waymark-app/waymark/internal/api"
	"github.com/waymark-app/waymark/internal/config"
	"github.com/waymark-app/waymark/internal/geo"
	"github.com/waymark-app/waymark/internal/handlers"
	"github.com/waymark-app/waymark/internal/imageutil"
	"github.com/waymark-app/waymark/internal/influx"
	"github.com/waymark-app/waymark/internal/logging"
	"github.com/waymark-app/waymark/internal/mapview"
	"github.com/waymark-app/waymark/internal/model"
	intOtel "github.com/waymark-app/waymark/internal/otel"
	"github.com/waymark-app/waymark/internal/storage"
	"github.com/waymark-app/waymark/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// version info - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "waymark"
)

var (
	logger zerolog.Logger
	svc    *handlers.Service
	st     *store.Store
)

func main() {
	sessionStart := time.Now()

	if err := config.Load("."); err != nil {
		// defaults still apply; a missing file is not fatal
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logs dir: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, AppName, sessionStart))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	otelCfg := intOtel.FromConfig(nil)
	if otelCfg.Enabled {
		otelFile, err := os.Create(logging.LogFilePath(logsDir, AppName+".otel", sessionStart))
		if err == nil {
			otelCfg.LogWriter = otelFile
			defer otelFile.Close()
		}
	}
	var otelBridge io.Writer
	otelProvider, otelErr := intOtel.New(otelCfg)
	if otelErr == nil {
		otelBridge = otelProvider.LogBridge()
		defer otelProvider.Shutdown(context.Background())
	}

	logger = logging.Setup(logFile, config.GetString("logLevel"), otelBridge)
	if otelErr != nil {
		logger.Warn().Err(otelErr).Msg("OTel log export disabled")
	}
	logger.Info().
		Str("version", CurrentVersion).
		Str("buildDate", BuildDate).
		Msg("Starting up")

	st, err = store.New(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create store")
	}

	baseURL := config.GetString("api.baseUrl")
	norm := imageutil.NewNormalizer(baseURL, config.GetString("api.mediaPrefix"), logger)
	client := api.New(
		baseURL,
		time.Duration(config.GetInt("api.timeoutSeconds"))*time.Second,
		norm,
		logger,
	)

	snapshots, err := storage.NewBackend(config.GetString("storage.type"), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create snapshot backend")
	}
	if err := snapshots.Init(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize snapshot backend")
	}
	defer snapshots.Close()

	var metrics *influx.Manager
	if viper.GetBool("influx.enabled") {
		metrics = influx.NewManager(logger, logging.LogFilePath(logsDir, AppName+".metrics.gz", sessionStart))
		if err := metrics.Connect(); err != nil {
			logger.Warn().Err(err).Msg("Session metrics disabled")
			metrics = nil
		}
	}
	if metrics != nil {
		defer func() {
			if err := metrics.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close metrics writer")
			}
		}()
	}

	svc = handlers.NewService(handlers.Dependencies{
		Store:     st,
		API:       client,
		Snapshots: snapshots,
		Metrics:   metrics,
		Confirm:   confirmPrompt,
		Log:       logger,
	})

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return
	}

	ctx := context.Background()
	switch strings.ToLower(args[0]) {
	case "fetch":
		err = runFetch(ctx)
	case "export":
		if len(args) < 2 {
			fmt.Println("export needs a target file")
			os.Exit(2)
		}
		err = runExport(ctx, args[1])
	case "show":
		if len(args) < 2 {
			fmt.Println("show needs a route id")
			os.Exit(2)
		}
		err = runShow(ctx, args[1])
	case "status":
		err = runStatus()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%s %s (%s)\n", AppName, CurrentVersion, BuildDate)
	fmt.Println("usage: waymark <fetch | export <file> | show <route-id> | status>")
}

// confirmPrompt blocks on stdin for a yes/no answer.
func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N]: ", message)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// runFetch loads all routes and prints a summary line per route.
func runFetch(ctx context.Context) error {
	if err := svc.FetchRoutes(ctx); err != nil {
		// a snapshot fallback still leaves routes to show
		if len(st.State().Routes) == 0 {
			return err
		}
		fmt.Println("(backend unreachable, showing cached routes)")
	}

	routes := st.State().Routes
	if len(routes) == 0 {
		fmt.Println("No routes.")
		return nil
	}
	for _, r := range routes {
		length := geo.RouteLengthMeters(r.Points)
		fmt.Printf("%-8s %-30s %3d points  %8.0f m\n",
			r.ID.String(), r.Name, len(r.Points), length)
	}
	return nil
}

// runExport fetches all routes and writes them as JSON. A .gz suffix gets a
// gzip-compressed file.
func runExport(ctx context.Context, path string) error {
	if err := svc.FetchRoutes(ctx); err != nil && len(st.State().Routes) == 0 {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(file)
		defer gz.Close()
		w = gz
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st.State().Routes); err != nil {
		return fmt.Errorf("failed to encode routes: %w", err)
	}

	logger.Info().Str("path", path).Int("routes", len(st.State().Routes)).
		Msg("Routes exported")
	fmt.Printf("Exported %d routes to %s\n", len(st.State().Routes), path)
	return nil
}

// runShow opens one route read-only and prints what the map would render.
func runShow(ctx context.Context, rawID string) error {
	if err := svc.FetchRoutes(ctx); err != nil && len(st.State().Routes) == 0 {
		return err
	}

	num, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("route id must be numeric: %q", rawID)
	}
	if err := svc.StartViewRoute(model.SavedID(num)); err != nil {
		return err
	}

	state := st.State()
	route := state.CurrentRoute
	fmt.Printf("%s - %s\n", route.Name, route.Description)

	scene := mapview.Build(state)
	for _, m := range scene.Markers {
		fmt.Printf("  %2d. %-20s %s  %s\n", m.Number, m.Hover.Name, m.Hover.LatDMS, m.Hover.LonDMS)
		for _, thumb := range m.Hover.Thumbnails {
			fmt.Printf("      img: %s\n", thumb)
		}
		if m.Hover.MoreImages > 0 {
			fmt.Printf("      (+%d more)\n", m.Hover.MoreImages)
		}
	}
	if scene.DrawLine {
		fmt.Printf("  travel line: %.0f m\n", scene.LengthMeters)
	}
	return nil
}

// runStatus reports the snapshot cache and configuration without touching
// the network.
func runStatus() error {
	fmt.Printf("%s %s (%s)\n", AppName, CurrentVersion, BuildDate)
	fmt.Printf("backend:  %s\n", config.GetString("api.baseUrl"))
	fmt.Printf("storage:  %s\n", config.GetString("storage.type"))

	cached, err := svc.CachedRoutes()
	if err != nil {
		return err
	}
	if cached == nil {
		fmt.Println("snapshot: none")
		return nil
	}
	points := 0
	for _, r := range cached {
		points += len(r.Points)
	}
	fmt.Printf("snapshot: %d routes, %d points\n", len(cached), points)
	return nil
}
