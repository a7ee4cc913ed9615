package series

// Canonical field names shared by every provider after normalization.
const (
	FieldTemperature = "t3h"
	FieldHumidity    = "reh"
	FieldWindU       = "uuu"
	FieldWindV       = "vvv"
	FieldWindDir     = "vec"
	FieldWindSpeed   = "wsd"
	FieldSky         = "sky"
	FieldPrecipType  = "pty"
	FieldPrecipProb  = "pop"
	FieldPrecip      = "pcp"
	FieldSnow        = "sno"
	FieldRain1h      = "rn1"
	FieldLightning   = "lgt"
	FieldWave        = "wav"
	FieldTempMin     = "tmn"
	FieldTempMax     = "tmx"
	FieldRainDay     = "r1d"
	FieldSnowDay     = "s1d"
	FieldRain3h      = "r03"
	FieldSnow3h      = "s03"
	FieldCloud       = "cloud"
	FieldHeavyCloud  = "heavyCloud"
	FieldDewPoint    = "dpt"
	FieldSensoryTemp = "sensoryTem"
	FieldDiscomfort  = "dspls"
	FieldPressure    = "hPa"
	FieldVisibility  = "visibility"
	FieldWeather     = "weather"
	FieldWindName    = "wdd"
	FieldRainFlag    = "rns"
	FieldRain15m     = "rs15m"
	FieldStationID   = "stnId"
	FieldSkyText     = "wf"
	FieldSkyTextAM   = "wfAm"
	FieldSkyTextPM   = "wfPm"
	FieldRainProbAM  = "rnStAm"
	FieldRainProbPM  = "rnStPm"
	FieldOutlookText = "wfSv"
	FieldTempMinLow  = "taMinLow"
	FieldTempMinHigh = "taMinHigh"
	FieldTempMaxLow  = "taMaxLow"
	FieldTempMaxHigh = "taMaxHigh"
)
