package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/pk-weather-dashboard/internal/geocode"
	"github.com/i474232898/pk-weather-dashboard/internal/store"
	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. resolver may be
// nil, in which case city-name lookups are rejected.
func RegisterRoutes(app *fiber.App, service *weather.Service, resolver geocode.Resolver) {
	v1 := app.Group("/api/v1")

	// A failed lookup still answers 200: the entry has a null weather and the
	// failure text in error, the same shape as a batch entry.
	v1.Get("/weather", func(c *fiber.Ctx) error {
		loc, err := resolveLocation(c, resolver)
		if err != nil {
			return err
		}
		return c.JSON(service.Lookup(c.UserContext(), loc))
	})

	v1.Post("/weather/batch", func(c *fiber.Ctx) error {
		var req batchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid batch body: "+err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.Aggregate(c.UserContext(), req.Locations))
	})

	v1.Get("/weather/cities", func(c *fiber.Ctx) error {
		batch, err := service.GetLatest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "roster weather has not been fetched yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read roster weather")
		}
		return c.JSON(batch)
	})

	v1.Get("/weather/cities/roster", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"locations": service.Roster()})
	})

	v1.Get("/weather/cities/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		batches, err := service.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no roster weather for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read roster history")
		}

		return c.JSON(fiber.Map{
			"from":    req.From,
			"to":      req.To,
			"batches": batches,
		})
	})
}

type batchRequest struct {
	Locations []weather.Location `json:"locations" validate:"required,min=1,max=100"`
}

// resolveLocation reads ?lat=&lon=&name= or, failing that, geocodes
// ?city=&country=.
func resolveLocation(c *fiber.Ctx, resolver geocode.Resolver) (weather.Location, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return geocodeLocation(c, resolver)
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, "invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, "invalid lon")
	}

	name := c.Query("name")
	if name == "" {
		name = fmt.Sprintf("%.4f,%.4f", lat, lon)
	}
	loc := weather.Location{Name: name, Latitude: lat, Longitude: lon}
	if err := validate.Struct(loc); err != nil {
		return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return loc, nil
}

// cityQuery holds query parameters for a geocoded lookup.
type cityQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func geocodeLocation(c *fiber.Ctx, resolver geocode.Resolver) (weather.Location, error) {
	q := cityQuery{City: c.Query("city"), Country: c.Query("country", "Pakistan")}
	if err := validate.Struct(q); err != nil {
		return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, "lat and lon, or city, are required")
	}
	if resolver == nil {
		return weather.Location{}, fiber.NewError(fiber.StatusNotImplemented, "city lookup is not configured")
	}

	loc, err := resolver.Resolve(c.UserContext(), q.City, q.Country)
	if err != nil {
		if errors.Is(err, geocode.ErrNotConfigured) {
			return weather.Location{}, fiber.NewError(fiber.StatusNotImplemented, "city lookup is not configured")
		}
		return weather.Location{}, fiber.NewError(fiber.StatusBadGateway, "failed to geocode city")
	}
	return loc, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
