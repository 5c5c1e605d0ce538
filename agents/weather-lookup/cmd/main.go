package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	weatherlookup "weather-app/agents/weather-lookup"
	"weather-app/agents/weather-lookup/web"
	"weather-app/internal/models"
	"weather-app/shared/cache"
	"weather-app/shared/config"
	"weather-app/shared/monitoring"
	"weather-app/shared/openmeteo"
	"weather-app/shared/scheduler"
)

const usage = `Usage:
  weather-app [serve]
  weather-app lookup [-units metric|imperial] [-pick N] [-lat LAT -lon LON] [city]
  weather-app digest [--once]`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command, args := "serve", []string{}
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	switch command {
	case "serve":
		err = runServe(ctx, cfg)
	case "lookup":
		err = runLookup(ctx, cfg, args)
	case "digest":
		err = runDigest(ctx, cfg, args)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil && ctx.Err() == nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

// clients holds the Open-Meteo clients shared by every command
type clients struct {
	resolver   *weatherlookup.LocationResolver
	forecaster weatherlookup.Forecaster
}

func newClients(cfg *config.Config) clients {
	om := &cfg.OpenMeteo
	limiter := openmeteo.NewLimiter(om.RequestsPerSecond, om.Burst)

	resolver := weatherlookup.NewLocationResolver(om, openmeteo.NewClient(om.GeocodingTimeout, limiter))

	var forecaster weatherlookup.Forecaster = weatherlookup.NewForecastClient(om, openmeteo.NewClient(om.ForecastTimeout, limiter))
	if om.CacheTTL > 0 {
		forecaster = cache.NewCachedForecaster(forecaster, om.CacheTTL)
		log.Printf("Forecast cache enabled (TTL %v)", om.CacheTTL)
	}

	return clients{resolver: resolver, forecaster: forecaster}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	c := newClients(cfg)
	lookup := weatherlookup.NewLookup(c.resolver, c.forecaster, cfg.OpenMeteo.MaxResults)
	monitor := monitoring.NewMonitor()

	if cfg.Digest.Enabled {
		s := scheduler.New(cfg, weatherlookup.NewDigestAgent(cfg, c.resolver, c.forecaster), monitor)
		s.DisableHealthServer()
		go func() {
			if err := s.Start(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Digest scheduler stopped: %v", err)
			}
		}()
	}

	return web.NewServer(cfg, lookup, monitor).Run(ctx)
}

func runLookup(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	unitsFlag := fs.String("units", cfg.Lookup.Units, "unit system (metric or imperial)")
	pick := fs.Int("pick", 0, "index of the search result to use")
	lat := fs.Float64("lat", 0, "latitude, used with -lon instead of a city")
	lon := fs.Float64("lon", 0, "longitude, used with -lat instead of a city")
	fs.Parse(args)

	units, err := models.ParseUnitSystem(*unitsFlag)
	if err != nil {
		return err
	}

	c := newClients(cfg)
	lookup := weatherlookup.NewLookup(c.resolver, c.forecaster, cfg.OpenMeteo.MaxResults)
	session := weatherlookup.NewSession("cli", units)

	coordsSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			coordsSet = true
		}
	})

	if coordsSet {
		source := weatherlookup.FixedCoordinates{Latitude: *lat, Longitude: *lon}
		if _, err := lookup.UseCurrentLocation(ctx, session, source); err != nil {
			return err
		}
	} else {
		city := strings.Join(fs.Args(), " ")
		if city == "" {
			city = cfg.Lookup.DefaultCity
		}

		outcome, err := lookup.Search(ctx, session, city)
		if err != nil {
			return err
		}
		if outcome.Status == weatherlookup.StatusNoResults {
			fmt.Printf("No results found for %q\n", city)
			return nil
		}

		for i, label := range outcome.Labels() {
			marker := " "
			if i == *pick {
				marker = "*"
			}
			fmt.Printf("%s [%d] %s\n", marker, i, label)
		}
		fmt.Println()

		if _, err := lookup.Pick(session, *pick); err != nil {
			return err
		}
	}

	view, err := lookup.Forecast(ctx, session)
	if err != nil {
		return err
	}
	return weatherlookup.RenderText(os.Stdout, view)
}

func runDigest(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	once := fs.Bool("once", false, "send one digest now and exit")
	fs.Parse(args)

	if err := cfg.ValidateDigest(); err != nil {
		return fmt.Errorf("invalid digest configuration: %w", err)
	}

	c := newClients(cfg)
	agent := weatherlookup.NewDigestAgent(cfg, c.resolver, c.forecaster)
	s := scheduler.New(cfg, agent, nil)

	if *once {
		fmt.Println("Running once...")
		if err := agent.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize agent: %w", err)
		}
		return s.RunOnce(ctx)
	}

	fmt.Println("Starting scheduler...")
	return s.Start(ctx)
}
