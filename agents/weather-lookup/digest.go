package weatherlookup

import (
	"context"
	"fmt"
	"log"
	"time"

	"weather-app/internal/models"
	"weather-app/shared/ai"
	"weather-app/shared/config"
	"weather-app/shared/email"
	"weather-app/shared/scheduler"
	"weather-app/shared/storage"
)

// digestRetention bounds how long send records are kept
const digestRetention = 30 * 24 * time.Hour

// Narrator writes a short prose summary of a digest
type Narrator interface {
	Summarize(ctx context.Context, digest *models.ForecastDigest) (string, error)
}

// DigestMailer delivers a digest
type DigestMailer interface {
	SendDigest(digest *models.ForecastDigest) error
}

// SendTracker remembers which digests were already delivered
type SendTracker interface {
	IsSent(key string) bool
	MarkSent(key string) error
}

// DigestMetrics represents the outcome of one digest run
type DigestMetrics struct {
	Location        string `json:"location"`
	ForecastFetched bool   `json:"forecast_fetched"`
	NarrativeAdded  bool   `json:"narrative_added"`
	EmailSent       bool   `json:"email_sent"`
	AlreadySent     bool   `json:"already_sent"`
}

// GetSummary implements the scheduler.Metrics interface
func (m DigestMetrics) GetSummary() string {
	switch {
	case m.AlreadySent:
		return fmt.Sprintf("digest for %s already sent today, skipped", m.Location)
	case m.EmailSent && m.NarrativeAdded:
		return fmt.Sprintf("forecast digest for %s sent with narrative", m.Location)
	case m.EmailSent:
		return fmt.Sprintf("forecast digest for %s sent", m.Location)
	default:
		return fmt.Sprintf("no digest sent for %s", m.Location)
	}
}

// DigestAgent implements scheduler.Agent: it emails the daily forecast of the
// configured location
type DigestAgent struct {
	config     *config.Config
	geocoder   Geocoder
	forecaster Forecaster
	narrator   Narrator
	mailer     DigestMailer
	tracker    SendTracker
	now        func() time.Time
}

func NewDigestAgent(cfg *config.Config, geocoder Geocoder, forecaster Forecaster) *DigestAgent {
	return &DigestAgent{
		config:     cfg,
		geocoder:   geocoder,
		forecaster: forecaster,
		now:        time.Now,
	}
}

func (d *DigestAgent) Name() string {
	return "Weather Digest Agent"
}

func (d *DigestAgent) Initialize() error {
	log.Printf("Initializing %s...", d.Name())

	if err := d.config.ValidateDigest(); err != nil {
		return fmt.Errorf("invalid digest configuration: %w", err)
	}

	if d.mailer == nil {
		d.mailer = email.NewSender(&d.config.Email)
		log.Println("Email sender initialized")
	}

	if d.tracker == nil {
		tracker, err := storage.NewDigestTracker(d.config.Digest.DataDir, digestRetention)
		if err != nil {
			return fmt.Errorf("failed to initialize digest tracker: %w", err)
		}
		d.tracker = tracker
		log.Printf("Digest tracker initialized with %d records", tracker.SentCount())
	}

	if d.narrator == nil && d.config.AI.GeminiAPIKey != "" {
		narrator, err := ai.NewNarrator(context.Background(), &d.config.AI)
		if err != nil {
			log.Printf("Warning: digest narrative disabled: %v", err)
		} else {
			d.narrator = narrator
			log.Printf("Gemini narrator initialized (%s)", d.config.AI.Model)
		}
	}

	if d.config.Digest.City != "" {
		log.Printf("Configured for %s", d.config.Digest.City)
	} else {
		log.Printf("Configured for %.4f, %.4f", d.config.Digest.Latitude, d.config.Digest.Longitude)
	}
	return nil
}

func (d *DigestAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	metrics := DigestMetrics{}

	critical := func(err error) error {
		if events != nil && events.OnCriticalFailure != nil {
			events.OnCriticalFailure(err, time.Since(startTime))
		}
		return err
	}
	partial := func(err error) {
		log.Printf("Warning: %v", err)
		if events != nil && events.OnPartialFailure != nil {
			events.OnPartialFailure(err, time.Since(startTime))
		}
	}

	units, err := models.ParseUnitSystem(d.config.Digest.Units)
	if err != nil {
		return critical(fmt.Errorf("invalid digest units: %w", err))
	}

	loc, err := d.resolveLocation(ctx)
	if err != nil {
		return critical(err)
	}
	metrics.Location = loc.Label()

	now := d.now()
	key := storage.DigestKey(metrics.Location, now)
	if d.tracker.IsSent(key) {
		log.Printf("Digest for %s already sent on %s, skipping", metrics.Location, now.Format("2006-01-02"))
		metrics.AlreadySent = true
		if events != nil && events.OnSuccess != nil {
			events.OnSuccess(metrics, time.Since(startTime))
		}
		return nil
	}

	result, err := d.forecaster.Fetch(ctx, loc.Latitude, loc.Longitude, units)
	if err != nil {
		return critical(fmt.Errorf("failed to fetch forecast: %w", err))
	}
	metrics.ForecastFetched = true

	digest := &models.ForecastDigest{
		Date: now,
		View: BuildView(loc, result),
	}

	if d.narrator != nil {
		narrative, err := d.narrator.Summarize(ctx, digest)
		if err != nil {
			partial(fmt.Errorf("failed to generate narrative: %w", err))
		} else {
			digest.Narrative = narrative
			metrics.NarrativeAdded = true
		}
	}

	if err := d.mailer.SendDigest(digest); err != nil {
		return critical(fmt.Errorf("failed to send digest email: %w", err))
	}
	metrics.EmailSent = true

	if err := d.tracker.MarkSent(key); err != nil {
		partial(fmt.Errorf("failed to record digest send: %w", err))
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}

	log.Printf("Weather digest complete: location=%s, narrative=%t, email_sent=%t",
		metrics.Location, metrics.NarrativeAdded, metrics.EmailSent)
	return nil
}

// resolveLocation picks the configured city's best match, or the configured
// coordinates when no city is set
func (d *DigestAgent) resolveLocation(ctx context.Context) (models.LocationCandidate, error) {
	cfg := d.config.Digest
	if cfg.City == "" {
		return ResolveByCoordinates(cfg.Latitude, cfg.Longitude), nil
	}

	candidates, err := d.geocoder.ResolveByName(ctx, cfg.City, 1)
	if err != nil {
		return models.LocationCandidate{}, fmt.Errorf("failed to resolve %q: %w", cfg.City, err)
	}
	if len(candidates) == 0 {
		return models.LocationCandidate{}, fmt.Errorf("no location found for %q", cfg.City)
	}
	return candidates[0], nil
}
