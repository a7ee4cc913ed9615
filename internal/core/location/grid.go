package location

import "math"

// Lambert Conformal Conic parameters of the 5 km forecast grid.
const (
	earthRadiusKm = 6371.00877
	gridSpacingKm = 5.0
	standardLat1  = 30.0
	standardLat2  = 60.0
	originLon     = 126.0
	originLat     = 38.0
	gridOffsetX   = 43
	gridOffsetY   = 136
	gridMaxX      = 149
	gridMaxY      = 253
)

const degToRad = math.Pi / 180.0

type lccProjection struct {
	re    float64
	sn    float64
	sf    float64
	ro    float64
	olon  float64
	olat  float64
	slat1 float64
}

var gridProjection = newLCCProjection()

func newLCCProjection() lccProjection {
	p := lccProjection{
		re:    earthRadiusKm / gridSpacingKm,
		olon:  originLon * degToRad,
		olat:  originLat * degToRad,
		slat1: standardLat1 * degToRad,
	}
	slat2 := standardLat2 * degToRad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+p.slat1*0.5)
	p.sn = math.Log(math.Cos(p.slat1)/math.Cos(slat2)) / math.Log(sn)

	sf := math.Tan(math.Pi*0.25 + p.slat1*0.5)
	p.sf = math.Pow(sf, p.sn) * math.Cos(p.slat1) / p.sn

	ro := math.Tan(math.Pi*0.25 + p.olat*0.5)
	p.ro = p.re * p.sf / math.Pow(ro, p.sn)
	return p
}

// ToGrid projects a WGS84 coordinate onto the forecast grid.
func ToGrid(c Coordinate) GridCoord {
	p := gridProjection

	ra := math.Tan(math.Pi*0.25 + c.Lat*degToRad*0.5)
	ra = p.re * p.sf / math.Pow(ra, p.sn)

	theta := c.Lon*degToRad - p.olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= p.sn

	return GridCoord{
		Nx: int(math.Floor(ra*math.Sin(theta) + gridOffsetX + 0.5)),
		Ny: int(math.Floor(p.ro - ra*math.Cos(theta) + gridOffsetY + 0.5)),
	}
}

// InDomain reports whether the cell lies on the published forecast grid.
func (g GridCoord) InDomain() bool {
	return g.Nx >= 1 && g.Nx <= gridMaxX && g.Ny >= 1 && g.Ny <= gridMaxY
}

// FromGrid returns the coordinate at the centre of a grid cell.
func FromGrid(g GridCoord) Coordinate {
	p := gridProjection

	xn := float64(g.Nx) - gridOffsetX
	yn := p.ro - float64(g.Ny) + gridOffsetY
	ra := math.Sqrt(xn*xn + yn*yn)
	if p.sn < 0 {
		ra = -ra
	}

	alat := math.Pow(p.re*p.sf/ra, 1.0/p.sn)
	alat = 2.0*math.Atan(alat) - math.Pi*0.5

	var theta float64
	switch {
	case math.Abs(xn) <= 0:
		theta = 0
	case math.Abs(yn) <= 0:
		theta = math.Pi * 0.5
		if xn < 0 {
			theta = -theta
		}
	default:
		theta = math.Atan2(xn, yn)
	}
	alon := theta/p.sn + p.olon

	return Coordinate{Lat: alat / degToRad, Lon: alon / degToRad}
}
