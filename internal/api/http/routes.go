package httpapi

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Form messages, worded as the page has always shown them.
const (
	msgFieldsRequired = "All fields are required."
	msgStateCode      = "State abbreviation must be exactly 2 letters."
)

var validate = validator.New()

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Looker runs the geocode-then-weather pipeline.
type Looker interface {
	Lookup(ctx context.Context, q weather.LocationQuery) (weather.WeatherSnapshot, error)
}

// RegisterRoutes wires the HTML form and JSON handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Looker, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-lookup",
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return renderIndex(c, indexView{})
	})

	app.Post("/", func(c *fiber.Ctx) error {
		form := locationQuery{
			City:    c.FormValue("cityName"),
			State:   c.FormValue("stateName"),
			Country: c.FormValue("countryName"),
		}
		view := indexView{Form: form}

		if err := form.validate(); err != nil {
			view.Error = err.Error()
			return renderIndex(c, view)
		}

		snap, err := service.Lookup(c.UserContext(), form.toQuery())
		if err != nil {
			logger.Info("form lookup failed", "request_id", requestID(c), "reason", weather.Diagnostic(err))
			view.Error = err.Error()
			return renderIndex(c, view)
		}
		view.Data = &snap
		return renderIndex(c, view)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q := locationQuery{
			City:    c.Query("city"),
			State:   c.Query("state"),
			Country: c.Query("country"),
		}
		if err := q.validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := service.Lookup(c.UserContext(), q.toQuery())
		if err != nil {
			logger.Info("api lookup failed", "request_id", requestID(c), "reason", weather.Diagnostic(err))
			return c.Status(lookupStatus(err)).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"reason":  weather.Diagnostic(err),
			})
		}
		return c.JSON(snap)
	})
}

// ErrorHandler renders every fiber error as the JSON envelope used by the API.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// locationQuery holds the three location fields as typed by the user.
type locationQuery struct {
	City    string `validate:"required"`
	State   string `validate:"required,len=2,alphaunicode"`
	Country string `validate:"required"`
}

func (l locationQuery) toQuery() weather.LocationQuery {
	return weather.LocationQuery{
		City:    l.City,
		State:   l.State,
		Country: l.Country,
	}
}

// validate reports missing fields first, then a malformed state code.
func (l locationQuery) validate() error {
	err := validate.Struct(l)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return errors.New(msgFieldsRequired)
		}
	}
	return errors.New(msgStateCode)
}

func lookupStatus(err error) int {
	switch weather.KindOf(err) {
	case weather.KindLocationNotFound, weather.KindCoordinatesUnavailable:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}

type indexView struct {
	Form  locationQuery
	Error string
	Data  *weather.WeatherSnapshot
}

func renderIndex(c *fiber.Ctx, view indexView) error {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, view); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
