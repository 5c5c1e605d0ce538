package monitoring

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

// HealthServer exposes /health and /status for a Monitor
type HealthServer struct {
	monitor *Monitor
	port    string
	app     *fiber.App
}

func NewHealthServer(monitor *Monitor, port string) *HealthServer {
	if port == "" {
		port = "8081"
	}
	return &HealthServer{
		monitor: monitor,
		port:    port,
	}
}

// RegisterRoutes mounts the health endpoints on an existing router
func (h *HealthServer) RegisterRoutes(r fiber.Router) {
	r.Get("/health", h.healthHandler)
	r.Get("/status", h.statusHandler)
}

// Start serves the health endpoints on their own port in the background
func (h *HealthServer) Start() {
	h.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	h.RegisterRoutes(h.app)

	log.Printf("Health check server starting on port %s", h.port)
	go func() {
		if err := h.app.Listen(":" + h.port); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()
}

func (h *HealthServer) Shutdown() error {
	if h.app == nil {
		return nil
	}
	return h.app.Shutdown()
}

func (h *HealthServer) healthHandler(c *fiber.Ctx) error {
	if h.monitor.IsHealthy() {
		return c.Status(fiber.StatusOK).SendString(fmt.Sprintf("OK - %s", h.monitor.GetStatusSummary()))
	}
	return c.Status(fiber.StatusServiceUnavailable).SendString(fmt.Sprintf("Service unhealthy - %s", h.monitor.GetStatusSummary()))
}

func (h *HealthServer) statusHandler(c *fiber.Ctx) error {
	if c.Query("format") == "json" {
		return c.JSON(h.monitor.Snapshot())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(h.monitor.GetStatusSummary())
}
