package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todayweather.app/pkg/errors"
)

func TestStripSuffix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"SpecialCity", "서울특별시", "서울"},
		{"MetropolitanCity", "부산광역시", "부산"},
		{"SelfGoverningCity", "세종특별자치시", "세종"},
		{"SelfGoverningProvince", "제주특별자치도", "제주"},
		{"RenamedProvince", "전북특별자치도", "전라북도"},
		{"RenamedGangwon", "강원특별자치도", "강원도"},
		{"PlainProvince", "경기도", "경기도"},
		{"AlreadyStripped", "서울", "서울"},
		{"Whitespace", "  대구광역시 ", "대구"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripSuffix(tt.in))
		})
	}
}

func TestOutlookStationID_SuffixInsensitive(t *testing.T) {
	withSuffix, err := OutlookStationID("서울특별시")
	require.NoError(t, err)
	without, err := OutlookStationID("서울")
	require.NoError(t, err)

	assert.Equal(t, "109", withSuffix)
	assert.Equal(t, withSuffix, without)
}

func TestLandRegionID(t *testing.T) {
	tests := []struct {
		name     string
		province string
		city     string
		want     string
	}{
		{"Seoul", "서울특별시", "중구", "11B00000"},
		{"Gyeonggi", "경기도", "수원시 장안구", "11B00000"},
		{"GangwonWest", "강원특별자치도", "춘천시", "11D10000"},
		{"GangwonEast", "강원특별자치도", "강릉시", "11D20000"},
		{"GangwonUnknownCountyKeepsFirstZone", "강원도", "미상군", "11D10000"},
		{"Jeonbuk", "전북특별자치도", "전주시 완산구", "11F10000"},
		{"Sejong", "세종특별자치시", "", "11C20000"},
		{"Jeju", "제주특별자치도", "제주시", "11G00000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LandRegionID(tt.province, tt.city)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemperatureRegionID(t *testing.T) {
	tests := []struct {
		name     string
		province string
		city     string
		want     string
	}{
		{"SeoulDistrict", "서울특별시", "중구", "11B10101"},
		{"CityMatch", "경기도", "수원시 장안구", "11B20601"},
		{"ProvinceFallback", "경기도", "광주시", "11B20601"},
		{"SecondCity", "경상북도", "포항시 남구", "11H10201"},
		{"Seogwipo", "제주특별자치도", "서귀포시", "11G00401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TemperatureRegionID(tt.province, tt.city)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegionLookups_NotFound(t *testing.T) {
	_, err := OutlookStationID("Atlantis")
	require.Error(t, err)
	assert.True(t, errors.IsRegionNotFoundError(err))
	assert.Contains(t, err.Error(), "Atlantis")

	_, err = LandRegionID("", "")
	assert.True(t, errors.IsRegionNotFoundError(err))

	_, err = TemperatureRegionID("Atlantis", "")
	assert.True(t, errors.IsRegionNotFoundError(err))
}
