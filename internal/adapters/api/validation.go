package api

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"todayweather.app/internal/core/location"
)

// RegisterValidators installs the custom binding tags on gin's validator engine
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("kma_domain", validateKmaDomain)
}

// validateKmaDomain checks that a latitude field and its sibling Lon field
// project onto the forecast grid. A missing Lon is left to required_with.
func validateKmaDomain(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()

	lonField := reflect.Indirect(fl.Parent()).FieldByName("Lon")
	if !lonField.IsValid() {
		return false
	}
	if lonField.Kind() == reflect.Ptr {
		if lonField.IsNil() {
			return true
		}
		lonField = lonField.Elem()
	}

	return location.ToGrid(location.Coordinate{Lat: lat, Lon: lonField.Float()}).InDomain()
}
