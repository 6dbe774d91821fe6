package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/search"
	"github.com/i474232898/weather-lookup/internal/views"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	msgLocationRequired = "Location is required"
	msgProxyFailed      = "An error occurred while fetching weather data"
	msgInternal         = "Internal server error"
)

var validate = validator.New()

// WeatherService is the gateway surface the routes need, including the raw
// by-name proxy.
type WeatherService interface {
	weather.Gateway
	Proxy(ctx context.Context, location string) ([]byte, error)
}

// Deps are the collaborators behind the HTTP API.
type Deps struct {
	Weather     WeatherService
	Locations   *location.Store
	Session     *views.Session
	IconBaseURL string
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
// Errors that are not *fiber.Error get a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := msgInternal
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": msg,
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/api/weather", proxyWeather(d.Weather))

	v1 := app.Group("/api/v1")
	registerWeather(v1, d)
	registerLocation(v1, d)
	registerViews(v1, d.Session)
	registerSearch(v1, d.Session.Locations.Search())
	registerSearch(v1.Group("/views/current"), d.Session.Current.Search())
	registerFavorites(v1, d.Session.Locations)
	registerMaps(v1, d.Session.Maps)

	v1.Get("/icons/:code", func(c *fiber.Ctx) error {
		code := c.Params("code")
		if err := validate.Var(code, "alphanum,len=3"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid icon code")
		}
		return c.Redirect(weather.IconURL(d.IconBaseURL, code), fiber.StatusFound)
	})
}

func proxyWeather(svc WeatherService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Query("location")
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, msgLocationRequired)
		}

		body, err := svc.Proxy(c.UserContext(), name)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, msgProxyFailed)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
}

func registerWeather(r fiber.Router, d Deps) {
	r.Get("/weather/current", func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(d.Weather.CurrentWeather(c.UserContext(), lat, lon))
	})

	r.Get("/weather/forecast", func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fc := d.Weather.Forecast(c.UserContext(), lat, lon)
		daily := weather.AggregateDaily(fc.Samples)
		return c.JSON(fiber.Map{
			"city":    fc.City,
			"daily":   daily,
			"hourly":  weather.NextHours(fc.Samples, 8),
			"outlook": weather.BuildOutlook(daily),
		})
	})

	r.Get("/locations/search", func(c *fiber.Ctx) error {
		return c.JSON(d.Weather.Geocode(c.UserContext(), c.Query("q")))
	})
}

func registerLocation(r fiber.Router, d Deps) {
	r.Get("/location", func(c *fiber.Ctx) error {
		loc, ok := d.Locations.Current()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no current location")
		}
		return c.JSON(loc)
	})

	r.Put("/location", func(c *fiber.Ctx) error {
		var req locationBody
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.toLocation()
		d.Locations.Set(loc)
		return c.JSON(loc)
	})

	r.Post("/location/geolocate", func(c *fiber.Ctx) error {
		if err := d.Session.Current.UseCurrentLocation(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, d.Session.Current.State().Error)
		}
		loc, _ := d.Locations.Current()
		return c.JSON(loc)
	})
}

func registerViews(r fiber.Router, s *views.Session) {
	r.Get("/views/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(s.Dashboard.State())
	})
	r.Get("/views/current", func(c *fiber.Ctx) error {
		return c.JSON(s.Current.State())
	})
	r.Get("/views/forecast", func(c *fiber.Ctx) error {
		return c.JSON(s.Forecast.State())
	})

	r.Post("/views/forecast/days/:date", func(c *fiber.Ctx) error {
		date := c.Params("date")
		if err := validate.Var(date, "datetime=2006-01-02"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		if err := s.Forecast.SelectDay(date); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(s.Forecast.State())
	})

	r.Post("/views/refresh", func(c *fiber.Ctx) error {
		s.Refresh()
		return c.SendStatus(fiber.StatusAccepted)
	})
}

func registerSearch(r fiber.Router, ctl *search.Controller) {
	r.Get("/search", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Snapshot())
	})

	r.Post("/search/input", func(c *fiber.Ctx) error {
		var req searchInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		ctl.Input(req.Query)
		return c.Status(fiber.StatusAccepted).JSON(ctl.Snapshot())
	})

	r.Post("/search/select/:index", func(c *fiber.Ctx) error {
		i, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}
		loc, err := ctl.SelectIndex(c.UserContext(), i)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(loc)
	})

	r.Delete("/search", func(c *fiber.Ctx) error {
		ctl.Clear()
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerFavorites(r fiber.Router, v *views.LocationSearchView) {
	r.Get("/favorites", func(c *fiber.Ctx) error {
		return c.JSON(v.State().Saved)
	})

	r.Post("/favorites", func(c *fiber.Ctx) error {
		saved, ok := v.SaveCurrent(c.UserContext())
		if !ok {
			return fiber.NewError(fiber.StatusConflict, "no current location or already saved")
		}
		return c.Status(fiber.StatusCreated).JSON(saved)
	})

	r.Get("/favorites/recent", func(c *fiber.Ctx) error {
		return c.JSON(v.State().Recent)
	})

	r.Delete("/favorites/:id", func(c *fiber.Ctx) error {
		v.RemoveSaved(c.UserContext(), c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/favorites/:id/select", func(c *fiber.Ctx) error {
		loc, err := v.SelectSaved(c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(loc)
	})

	r.Post("/favorites/recent/:index/select", func(c *fiber.Ctx) error {
		i, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}
		loc, err := v.SelectRecent(c.UserContext(), i)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(loc)
	})

	r.Get("/cities/popular", func(c *fiber.Ctx) error {
		return c.JSON(views.PopularCities)
	})

	r.Post("/cities/popular/:index/select", func(c *fiber.Ctx) error {
		i, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}
		loc, err := v.SelectPopular(i)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(loc)
	})
}

func registerMaps(r fiber.Router, m *views.WeatherMapsView) {
	r.Get("/maps", func(c *fiber.Ctx) error {
		return c.JSON(m.State())
	})

	r.Post("/maps/layers/:id", func(c *fiber.Ctx) error {
		m.SelectLayer(c.Params("id"))
		return c.JSON(m.State())
	})

	r.Post("/maps/zoom/in", func(c *fiber.Ctx) error {
		m.ZoomIn()
		return c.JSON(m.State())
	})

	r.Post("/maps/zoom/out", func(c *fiber.Ctx) error {
		m.ZoomOut()
		return c.JSON(m.State())
	})

	r.Post("/maps/regions/:index", func(c *fiber.Ctx) error {
		i, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}
		if _, err := m.JumpTo(i); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(m.State())
	})

	r.Post("/maps/center", func(c *fiber.Ctx) error {
		if !m.CenterOnCurrent() {
			return fiber.NewError(fiber.StatusConflict, "no current location")
		}
		return c.JSON(m.State())
	})
}

// toHTTPError maps domain errors onto status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, views.ErrUnknownDay),
		errors.Is(err, views.ErrUnknownSaved),
		errors.Is(err, views.ErrUnknownCity),
		errors.Is(err, views.ErrUnknownRecent),
		errors.Is(err, search.ErrNoSuchResult):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, search.ErrInvalidCandidate):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}

// coordQuery holds lat/lon query parameters.
type coordQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

func parseCoordQuery(c *fiber.Ctx) (float64, float64, error) {
	q := coordQuery{Lat: c.Query("lat"), Lon: c.Query("lon")}
	if err := validate.Struct(q); err != nil {
		return 0, 0, err
	}

	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

type locationBody struct {
	Name    string   `json:"name" validate:"required"`
	Lat     *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Country string   `json:"country"`
}

func (b locationBody) toLocation() weather.Location {
	return weather.Location{
		Name:    b.Name,
		Lat:     *b.Lat,
		Lon:     *b.Lon,
		Country: b.Country,
	}
}

type searchInput struct {
	Query string `json:"query"`
}
