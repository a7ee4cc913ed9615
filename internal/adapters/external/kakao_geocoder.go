package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"todayweather.app/internal/core/location"
	"todayweather.app/pkg/errors"
)

const (
	kakaoCoordPath   = "/v2/local/geo/coord2regioncode.json"
	kakaoAddressPath = "/v2/local/search/address.json"
)

// KakaoGeocoder implements Geocoder port using the Kakao Local API
type KakaoGeocoder struct {
	restKey string
	baseURL string
	client  *ResilientHTTPClient
}

// KakaoGeocoderParams holds parameters for creating the Kakao geocoder
type KakaoGeocoderParams struct {
	RESTKey string
	BaseURL string
	Client  *ResilientHTTPClient
}

// NewKakaoGeocoder creates a new Kakao geocoder
func NewKakaoGeocoder(params KakaoGeocoderParams) (*KakaoGeocoder, error) {
	if params.RESTKey == "" {
		return nil, errors.NewConfigurationError("kakao REST key is required", nil)
	}
	if params.Client == nil {
		return nil, errors.NewConfigurationError("kakao http client is required", nil)
	}
	return &KakaoGeocoder{
		restKey: params.RESTKey,
		baseURL: strings.TrimRight(params.BaseURL, "/"),
		client:  params.Client,
	}, nil
}

type kakaoRegionDocument struct {
	RegionType string `json:"region_type"`
	Code       string `json:"code"`
	Province   string `json:"region_1depth_name"`
	City       string `json:"region_2depth_name"`
	Town       string `json:"region_3depth_name"`
}

type kakaoAddressDocument struct {
	AddressName string `json:"address_name"`
	X           string `json:"x"`
	Y           string `json:"y"`
	Address     *struct {
		Province string `json:"region_1depth_name"`
		City     string `json:"region_2depth_name"`
		Town     string `json:"region_3depth_name"`
		HCode    string `json:"h_code"`
		BCode    string `json:"b_code"`
	} `json:"address"`
	RoadAddress *struct {
		Province string `json:"region_1depth_name"`
		City     string `json:"region_2depth_name"`
		Town     string `json:"region_3depth_name"`
	} `json:"road_address"`
}

// ByCoordinate returns the administrative ("H") names before the legal ("B") ones.
func (g *KakaoGeocoder) ByCoordinate(ctx context.Context, coord location.Coordinate) ([]location.RegionName, error) {
	if err := coord.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("x", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(coord.Lat, 'f', -1, 64))

	var resp struct {
		Documents []kakaoRegionDocument `json:"documents"`
	}
	if err := g.call(ctx, kakaoCoordPath, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Documents) == 0 {
		return nil, errors.NewNotFoundError("no region found for coordinate")
	}

	docs := resp.Documents
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].RegionType == "H" && docs[j].RegionType != "H"
	})

	regions := make([]location.RegionName, 0, len(docs))
	for _, doc := range docs {
		regions = append(regions, location.RegionName{
			Province: doc.Province,
			City:     doc.City,
			Town:     doc.Town,
			Code:     doc.Code,
		})
	}
	return regions, nil
}

// ByAddress geocodes free-form address text using the best match.
func (g *KakaoGeocoder) ByAddress(ctx context.Context, query string) (location.Coordinate, []location.RegionName, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return location.Coordinate{}, nil, errors.NewValidationError("address cannot be empty")
	}

	params := url.Values{}
	params.Set("query", query)

	var resp struct {
		Documents []kakaoAddressDocument `json:"documents"`
	}
	if err := g.call(ctx, kakaoAddressPath, params, &resp); err != nil {
		return location.Coordinate{}, nil, err
	}
	if len(resp.Documents) == 0 {
		return location.Coordinate{}, nil, errors.NewNotFoundError("no match for address " + query)
	}

	doc := resp.Documents[0]
	lon, errX := strconv.ParseFloat(doc.X, 64)
	lat, errY := strconv.ParseFloat(doc.Y, 64)
	if errX != nil || errY != nil {
		return location.Coordinate{}, nil, errors.NewExternalAPIError("kakao returned an unparsable coordinate", nil)
	}

	var region location.RegionName
	switch {
	case doc.Address != nil:
		region = location.RegionName{
			Province: doc.Address.Province,
			City:     doc.Address.City,
			Town:     doc.Address.Town,
			Code:     doc.Address.HCode,
		}
		if region.Code == "" {
			region.Code = doc.Address.BCode
		}
	case doc.RoadAddress != nil:
		region = location.RegionName{
			Province: doc.RoadAddress.Province,
			City:     doc.RoadAddress.City,
			Town:     doc.RoadAddress.Town,
		}
	default:
		return location.Coordinate{}, nil, errors.NewNotFoundError("no region for address " + query)
	}

	return location.Coordinate{Lat: lat, Lon: lon}, []location.RegionName{region}, nil
}

func (g *KakaoGeocoder) call(ctx context.Context, path string, params url.Values, target interface{}) error {
	header := http.Header{}
	header.Set("Authorization", "KakaoAK "+g.restKey)

	body, err := g.client.Get(ctx, g.baseURL+path+"?"+params.Encode(), header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.NewExternalAPIError("failed to decode kakao response", err)
	}
	return nil
}
