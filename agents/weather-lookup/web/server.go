package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"

	weatherlookup "weather-app/agents/weather-lookup"
	"weather-app/internal/models"
	"weather-app/shared/config"
	"weather-app/shared/monitoring"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "weather_session"

// Server is the HTTP front end of the weather lookup
type Server struct {
	app          *fiber.App
	lookup       *weatherlookup.Lookup
	sessions     *SessionStore
	defaultCity  string
	defaultUnits models.UnitSystem
	port         int
}

type searchResponse struct {
	*weatherlookup.SearchOutcome
	Labels []string `json:"labels"`
}

type selectionResponse struct {
	Selected models.LocationCandidate `json:"selected"`
	Label    string                   `json:"label"`
}

type selectRequest struct {
	Index *int `json:"index"`
}

func NewServer(cfg *config.Config, lookup *weatherlookup.Lookup, monitor *monitoring.Monitor) *Server {
	s := &Server{
		lookup:       lookup,
		sessions:     NewSessionStore(cfg.Server.SessionTTL),
		defaultCity:  cfg.Lookup.DefaultCity,
		defaultUnits: cfg.DefaultUnits(),
		port:         cfg.Server.Port,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "weather-app",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          90 * time.Second,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	if monitor != nil {
		monitoring.NewHealthServer(monitor, "").RegisterRoutes(s.app)
	}

	api := s.app.Group("/api")
	api.Get("/defaults", s.handleDefaults)
	api.Get("/search", s.handleSearch)
	api.Post("/select", s.handleSelect)
	api.Post("/location", s.handleLocation)
	api.Get("/forecast", s.handleForecast)

	return s
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on :%d", s.port)
		errCh <- s.app.Listen(fmt.Sprintf(":%d", s.port))
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	return nil
}

func (s *Server) handleDefaults(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"city":  s.defaultCity,
		"units": s.defaultUnits,
	})
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	entry, err := s.session(c)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	outcome, err := s.lookup.Search(c.UserContext(), entry.session, c.Query("q"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(searchResponse{SearchOutcome: outcome, Labels: outcome.Labels()})
}

func (s *Server) handleSelect(c *fiber.Ctx) error {
	var req selectRequest
	if err := c.BodyParser(&req); err != nil || req.Index == nil {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be {\"index\": n}")
	}

	entry, err := s.session(c)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	selected, err := s.lookup.Pick(entry.session, *req.Index)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(selectionResponse{Selected: selected, Label: selected.Label()})
}

func (s *Server) handleLocation(c *fiber.Ctx) error {
	entry, err := s.session(c)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	payload := append([]byte(nil), c.Body()...)
	selected, err := s.lookup.UseCurrentLocation(c.UserContext(), entry.session, weatherlookup.PayloadSource(payload))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(selectionResponse{Selected: selected, Label: selected.Label()})
}

func (s *Server) handleForecast(c *fiber.Ctx) error {
	entry, err := s.session(c)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	view, err := s.lookup.Forecast(c.UserContext(), entry.session)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(view)
}

// session loads or creates the caller's session and applies the units query
// parameter when present
func (s *Server) session(c *fiber.Ctx) (*sessionEntry, error) {
	var units models.UnitSystem
	if raw := utils.CopyString(c.Query("units")); raw != "" {
		u, err := models.ParseUnitSystem(raw)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		units = u
	}

	entry, found := s.sessions.get(c.Cookies(SessionCookie))
	if !found {
		entry = s.sessions.create(s.defaultUnits)
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    entry.session.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	if units != "" {
		entry.mu.Lock()
		entry.session.Units = units
		entry.mu.Unlock()
	}
	return entry, nil
}

// toHTTPError maps lookup errors onto status codes
func toHTTPError(err error) error {
	var unavailable *weatherlookup.LocationUnavailableError
	switch {
	case errors.Is(err, weatherlookup.ErrNoSelection):
		return fiber.NewError(fiber.StatusConflict, "no location selected; search for a city or use your current location")
	case errors.As(err, &unavailable):
		return fiber.NewError(fiber.StatusUnprocessableEntity, unavailable.Error())
	case weatherlookup.IsTransportError(err):
		log.Printf("Upstream error: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		log.Printf("Request failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
