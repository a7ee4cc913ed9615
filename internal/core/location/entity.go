package location

import (
	"fmt"
	"math"
	"strings"

	"todayweather.app/pkg/errors"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks the coordinate lies on the globe.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return errors.NewValidationError("coordinate must be a number")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return errors.NewValidationError(fmt.Sprintf("latitude %.4f out of range", c.Lat))
	}
	if c.Lon < -180 || c.Lon > 180 {
		return errors.NewValidationError(fmt.Sprintf("longitude %.4f out of range", c.Lon))
	}
	return nil
}

// GridCoord is a cell of the 5 km forecast grid.
type GridCoord struct {
	Nx int `json:"nx"`
	Ny int `json:"ny"`
}

// String renders the grid cell the way cache keys embed it.
func (g GridCoord) String() string {
	return fmt.Sprintf("%d_%d", g.Nx, g.Ny)
}

// RegionName is an administrative name pair as returned by a geocoder.
type RegionName struct {
	Province string `json:"region_1depth_name"`
	City     string `json:"region_2depth_name"`
	Town     string `json:"region_3depth_name,omitempty"`
	Code     string `json:"code,omitempty"`
}

// String joins the non-empty parts of the name.
func (r RegionName) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Province, r.City, r.Town} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// RegionKeys holds the region code of every region-keyed provider.
type RegionKeys struct {
	OutlookStnID string `json:"stnId"`
	LandRegID    string `json:"regId"`
	TempRegID    string `json:"regIdForTa"`
}

// Location is everything a fusion request needs to address the upstream feeds.
type Location struct {
	Coordinate Coordinate `json:"location"`
	Grid       GridCoord  `json:"grid"`
	Region     RegionName `json:"region"`
	Keys       RegionKeys `json:"regionKeys"`
	Stations   []Station  `json:"nearStations"`
}
