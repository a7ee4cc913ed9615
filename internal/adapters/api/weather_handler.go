package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/weather"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

// WeatherQuery is the query string of the weather and location endpoints
type WeatherQuery struct {
	Lat     *float64 `form:"lat" binding:"required_without=Address,required_with=Lon,omitempty,latitude,kma_domain"`
	Lon     *float64 `form:"lon" binding:"required_with=Lat,omitempty,longitude"`
	Address string   `form:"address" binding:"max=200"`
}

func (q WeatherQuery) request() weather.Request {
	request := weather.Request{Address: q.Address}
	if q.Lat != nil && q.Lon != nil {
		request.Coordinate = &location.Coordinate{Lat: *q.Lat, Lon: *q.Lon}
	}
	return request
}

func (s *HTTPServerAdapter) bindWeatherQuery(c *gin.Context) (weather.Request, bool) {
	var query WeatherQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.handleError(c, errors.NewValidationError("invalid query: "+err.Error()))
		return weather.Request{}, false
	}
	return query.request(), true
}

// getWeather handles GET /api/weather requests
func (s *HTTPServerAdapter) getWeather(c *gin.Context) {
	request, ok := s.bindWeatherQuery(c)
	if !ok {
		return
	}

	report, err := s.weatherUseCase.GetWeather(c.Request.Context(), request)
	if err != nil {
		s.logger.Error("Weather use case error",
			ports.F("request_id", c.GetString(requestIDKey)),
			ports.F("address", request.Address),
			ports.F("error", err))
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// getLocation handles GET /api/location requests
func (s *HTTPServerAdapter) getLocation(c *gin.Context) {
	request, ok := s.bindWeatherQuery(c)
	if !ok {
		return
	}

	loc, err := s.weatherUseCase.Locate(c.Request.Context(), request)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, loc)
}

// getHealth handles GET /health requests
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	results := s.healthChecker.CheckAll(c.Request.Context())

	status := http.StatusOK
	overall := "healthy"
	for _, result := range results {
		if result.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
			break
		}
	}

	c.JSON(status, gin.H{
		"status":     overall,
		"components": results,
	})
}
