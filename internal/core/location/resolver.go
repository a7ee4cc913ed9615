package location

import (
	"strings"

	"todayweather.app/pkg/errors"
)

const defaultStationCount = 3

// Resolver turns a coordinate and its administrative names into provider addresses.
type Resolver struct {
	stationCount int
}

// NewResolver creates a resolver selecting stationCount nearby stations.
func NewResolver(stationCount int) *Resolver {
	if stationCount <= 0 {
		stationCount = defaultStationCount
	}
	return &Resolver{stationCount: stationCount}
}

// Resolve computes the grid cell and the region keys of every region-keyed provider.
// Regions are tried in order; the first one a table recognises wins for that table.
func (r *Resolver) Resolve(coord Coordinate, regions []RegionName) (Location, error) {
	if err := coord.Validate(); err != nil {
		return Location{}, err
	}
	if len(regions) == 0 {
		return Location{}, errors.NewRegionNotFoundError(ProviderOutlook, "")
	}

	loc := Location{
		Coordinate: coord,
		Grid:       ToGrid(coord),
		Region:     regions[0],
		Stations:   NearestStations(coord, r.stationCount),
	}

	var err error
	if loc.Keys.OutlookStnID, err = firstMatch(regions, ProviderOutlook, func(rn RegionName) (string, error) {
		return OutlookStationID(rn.Province)
	}); err != nil {
		return Location{}, err
	}
	if loc.Keys.LandRegID, err = firstMatch(regions, ProviderLand, func(rn RegionName) (string, error) {
		return LandRegionID(rn.Province, rn.City)
	}); err != nil {
		return Location{}, err
	}
	if loc.Keys.TempRegID, err = firstMatch(regions, ProviderTemperature, func(rn RegionName) (string, error) {
		return TemperatureRegionID(rn.Province, rn.City)
	}); err != nil {
		return Location{}, err
	}

	return loc, nil
}

func firstMatch(regions []RegionName, provider string, lookup func(RegionName) (string, error)) (string, error) {
	attempted := make([]string, 0, len(regions))
	for _, region := range regions {
		code, err := lookup(region)
		if err == nil {
			return code, nil
		}
		if !errors.IsRegionNotFoundError(err) {
			return "", err
		}
		attempted = append(attempted, region.Province)
	}
	return "", errors.NewRegionNotFoundError(provider, strings.Join(attempted, ", "))
}
