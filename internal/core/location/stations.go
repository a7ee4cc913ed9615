package location

import (
	"math"
	"sort"
)

// Station is a surface observation station.
type Station struct {
	ID   string  `json:"stnId"`
	Name string  `json:"stnName"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

var asosStations = []Station{
	{ID: "90", Name: "속초", Lat: 38.2509, Lon: 128.5647},
	{ID: "101", Name: "춘천", Lat: 37.9026, Lon: 127.7357},
	{ID: "105", Name: "강릉", Lat: 37.7515, Lon: 128.8910},
	{ID: "108", Name: "서울", Lat: 37.5714, Lon: 126.9658},
	{ID: "112", Name: "인천", Lat: 37.4777, Lon: 126.6249},
	{ID: "114", Name: "원주", Lat: 37.3376, Lon: 127.9466},
	{ID: "119", Name: "수원", Lat: 37.2723, Lon: 126.9853},
	{ID: "129", Name: "서산", Lat: 36.7766, Lon: 126.4939},
	{ID: "131", Name: "청주", Lat: 36.6392, Lon: 127.4407},
	{ID: "133", Name: "대전", Lat: 36.3720, Lon: 127.3721},
	{ID: "136", Name: "안동", Lat: 36.5729, Lon: 128.7073},
	{ID: "138", Name: "포항", Lat: 36.0326, Lon: 129.3796},
	{ID: "143", Name: "대구", Lat: 35.8780, Lon: 128.6530},
	{ID: "146", Name: "전주", Lat: 35.8215, Lon: 127.1550},
	{ID: "152", Name: "울산", Lat: 35.5601, Lon: 129.3201},
	{ID: "155", Name: "창원", Lat: 35.1702, Lon: 128.5729},
	{ID: "156", Name: "광주", Lat: 35.1729, Lon: 126.8916},
	{ID: "159", Name: "부산", Lat: 35.1047, Lon: 129.0320},
	{ID: "165", Name: "목포", Lat: 34.8169, Lon: 126.3812},
	{ID: "168", Name: "여수", Lat: 34.7393, Lon: 127.7406},
	{ID: "184", Name: "제주", Lat: 33.5141, Lon: 126.5297},
	{ID: "189", Name: "서귀포", Lat: 33.2461, Lon: 126.5653},
	{ID: "239", Name: "세종", Lat: 36.4850, Lon: 127.2440},
}

// DistanceKm is the great-circle distance between two coordinates.
func DistanceKm(a, b Coordinate) float64 {
	const meanEarthRadiusKm = 6371.0
	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * meanEarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// NearestStations returns up to n observation stations ordered by distance.
func NearestStations(c Coordinate, n int) []Station {
	if n <= 0 {
		return nil
	}
	stations := make([]Station, len(asosStations))
	copy(stations, asosStations)
	sort.SliceStable(stations, func(i, j int) bool {
		return DistanceKm(c, Coordinate{Lat: stations[i].Lat, Lon: stations[i].Lon}) <
			DistanceKm(c, Coordinate{Lat: stations[j].Lat, Lon: stations[j].Lon})
	})
	if n > len(stations) {
		n = len(stations)
	}
	return stations[:n]
}
