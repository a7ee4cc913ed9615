package series

// Addressing tells the normalizer how a record's time slot is expressed.
type Addressing int

const (
	// AddressByDateTime uses the record's Date ("YYYYMMDD") and Time ("HHmm").
	AddressByDateTime Addressing = iota
	// AddressByPublishTime puts every record at the publish hour.
	AddressByPublishTime
	// AddressByHourOffset counts Offset hours from the publish time.
	AddressByHourOffset
	// AddressByDayOffset counts Offset days from the publish date, at hour 0.
	AddressByDayOffset
	// AddressByTimestamp parses the record's "YYYY.MM.DD.HH:mm" timestamp.
	AddressByTimestamp
)

// ProviderSpec is the configuration data of one upstream endpoint.
type ProviderSpec struct {
	Name        string
	Path        string
	Addressing  Addressing
	Categorized bool
	// Fields maps upstream category codes or field names to canonical fields.
	Fields map[string]string
}

// Gridded short-range forecast, hourly for three days then 3-hourly.
var ShortRangeSpec = ProviderSpec{
	Name:        "kma-vilage-fcst",
	Path:        "/VilageFcstInfoService_2.0/getVilageFcst",
	Addressing:  AddressByDateTime,
	Categorized: true,
	Fields: map[string]string{
		"POP": FieldPrecipProb,
		"PTY": FieldPrecipType,
		"PCP": FieldPrecip,
		"REH": FieldHumidity,
		"SNO": FieldSnow,
		"SKY": FieldSky,
		"TMP": FieldTemperature,
		"TMN": FieldTempMin,
		"TMX": FieldTempMax,
		"UUU": FieldWindU,
		"VVV": FieldWindV,
		"WAV": FieldWave,
		"VEC": FieldWindDir,
		"WSD": FieldWindSpeed,
	},
}

// Ultra-short forecast, hourly for the next six hours.
var UltraShortForecastSpec = ProviderSpec{
	Name:        "kma-ultra-srt-fcst",
	Path:        "/VilageFcstInfoService_2.0/getUltraSrtFcst",
	Addressing:  AddressByDateTime,
	Categorized: true,
	Fields: map[string]string{
		"T1H": FieldTemperature,
		"RN1": FieldRain1h,
		"SKY": FieldSky,
		"UUU": FieldWindU,
		"VVV": FieldWindV,
		"REH": FieldHumidity,
		"PTY": FieldPrecipType,
		"LGT": FieldLightning,
		"VEC": FieldWindDir,
		"WSD": FieldWindSpeed,
	},
}

// Nowcast observation for the base hour.
var NowcastSpec = ProviderSpec{
	Name:        "kma-ultra-srt-ncst",
	Path:        "/VilageFcstInfoService_2.0/getUltraSrtNcst",
	Addressing:  AddressByPublishTime,
	Categorized: true,
	Fields: map[string]string{
		"T1H": FieldTemperature,
		"RN1": FieldRain1h,
		"UUU": FieldWindU,
		"VVV": FieldWindV,
		"REH": FieldHumidity,
		"PTY": FieldPrecipType,
		"VEC": FieldWindDir,
		"WSD": FieldWindSpeed,
	},
}

// Mid-range outlook text per forecast station.
var MidOutlookSpec = ProviderSpec{
	Name:       "kma-mid-fcst",
	Path:       "/MidFcstInfoService/getMidFcst",
	Addressing: AddressByPublishTime,
	Fields: map[string]string{
		"wfSv": FieldOutlookText,
	},
}

// Mid-range land outlook, days +3..+10 from the announcement.
var MidLandSpec = ProviderSpec{
	Name:       "kma-mid-land-fcst",
	Path:       "/MidFcstInfoService/getMidLandFcst",
	Addressing: AddressByDayOffset,
	Fields: map[string]string{
		"wfAm":   FieldSkyTextAM,
		"wfPm":   FieldSkyTextPM,
		"wf":     FieldSkyText,
		"rnStAm": FieldRainProbAM,
		"rnStPm": FieldRainProbPM,
		"rnSt":   FieldPrecipProb,
	},
}

// Mid-range temperature, days +3..+10 from the announcement.
var MidTemperatureSpec = ProviderSpec{
	Name:       "kma-mid-ta",
	Path:       "/MidFcstInfoService/getMidTa",
	Addressing: AddressByDayOffset,
	Fields: map[string]string{
		"taMin":     FieldTempMin,
		"taMax":     FieldTempMax,
		"taMinLow":  FieldTempMinLow,
		"taMinHigh": FieldTempMinHigh,
		"taMaxLow":  FieldTempMaxLow,
		"taMaxHigh": FieldTempMaxHigh,
	},
}

// Scraped multi-station hourly city table.
var CityObservationSpec = ProviderSpec{
	Name:       "kma-city-obs",
	Path:       "/w/observation/land/city-obs.do",
	Addressing: AddressByTimestamp,
	Fields: map[string]string{
		"stnId":      FieldStationID,
		"weather":    FieldWeather,
		"visibility": FieldVisibility,
		"cloud":      FieldCloud,
		"heavyCloud": FieldHeavyCloud,
		"t1h":        FieldTemperature,
		"dpt":        FieldDewPoint,
		"sensoryTem": FieldSensoryTemp,
		"dspls":      FieldDiscomfort,
		"r1d":        FieldRainDay,
		"s1d":        FieldSnowDay,
		"reh":        FieldHumidity,
		"wdd":        FieldWindName,
		"wsd":        FieldWindSpeed,
		"hPa":        FieldPressure,
	},
}

// Scraped single-station minute table (AWS/ASOS).
var MinuteObservationSpec = ProviderSpec{
	Name:       "kma-aws-min",
	Path:       "/cgi-bin/aws/nph-aws_txt_min",
	Addressing: AddressByTimestamp,
	Fields: map[string]string{
		"stnId": FieldStationID,
		"rns":   FieldRainFlag,
		"rs15m": FieldRain15m,
		"rs1h":  FieldRain1h,
		"rs1d":  FieldRainDay,
		"t1h":   FieldTemperature,
		"vec":   FieldWindDir,
		"wdd":   FieldWindName,
		"wsd":   FieldWindSpeed,
		"reh":   FieldHumidity,
		"hPa":   FieldPressure,
	},
}
