package handler

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"trends-dashboard/internal/service"
	"trends-dashboard/pkg/dashboard"
	"trends-dashboard/pkg/logger"
	"trends-dashboard/pkg/trends"
)

type Controller struct {
	dashboard service.DashboardService
	log       *logger.Logger
}

type ControllerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StatusResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Geos      []trends.GeoScope `json:"geos"`
}

const noTermsMessage = "Please enter at least one search term."

type errorResponse struct {
	Error string `json:"error"`
}

func NewController(dashboard service.DashboardService) *Controller {
	return &Controller{
		dashboard: dashboard,
		log:       logger.GetLogger().WithField("component", "controller"),
	}
}

// App builds the fiber application serving the dashboard.
func (c *Controller) App(cfg ControllerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "trends-dashboard",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/", c.Index)
	app.Get("/dashboard", c.Dashboard)
	app.Get("/api/trends", c.Trends)
	app.Get("/health", c.Health)
	return app
}

// Index renders the empty input form.
func (c *Controller) Index(ctx *fiber.Ctx) error {
	return c.sendPage(ctx, fiber.StatusOK, "", nil)
}

// Dashboard runs the submitted terms and renders the HTML page.
func (c *Controller) Dashboard(ctx *fiber.Ctx) error {
	input := ctx.Query("terms")
	report, err := c.dashboard.Run(ctx.UserContext(), input)
	if err != nil {
		if errors.Is(err, trends.ErrNoTerms) {
			return c.sendFormError(ctx, input, noTermsMessage)
		}
		c.log.WithError(err).Error("Dashboard request failed")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build dashboard")
	}
	return c.sendPage(ctx, fiber.StatusOK, input, report)
}

// Trends returns the report as JSON.
func (c *Controller) Trends(ctx *fiber.Ctx) error {
	report, err := c.dashboard.Run(ctx.UserContext(), ctx.Query("terms"))
	if err != nil {
		if errors.Is(err, trends.ErrNoTerms) {
			return ctx.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
		}
		c.log.WithError(err).Error("Trends request failed")
		return ctx.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to build dashboard"})
	}
	return ctx.JSON(report)
}

func (c *Controller) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Geos:      c.dashboard.Geos(),
	})
}

func (c *Controller) sendPage(ctx *fiber.Ctx, status int, input string, report *dashboard.Report) error {
	var buf bytes.Buffer
	if err := dashboard.WriteHTML(&buf, input, report); err != nil {
		c.log.WithError(err).Error("Rendering dashboard page failed")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
	}
	ctx.Type("html", "utf-8")
	return ctx.Status(status).Send(buf.Bytes())
}

func (c *Controller) sendFormError(ctx *fiber.Ctx, input, message string) error {
	var buf bytes.Buffer
	if err := dashboard.WriteFormError(&buf, input, message); err != nil {
		c.log.WithError(err).Error("Rendering dashboard page failed")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
	}
	ctx.Type("html", "utf-8")
	return ctx.Status(fiber.StatusBadRequest).Send(buf.Bytes())
}
