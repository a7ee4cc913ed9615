package weather

import (
	"context"
	"sort"
	"time"

	"todayweather.app/internal/core/fetch"
	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/series"
	"todayweather.app/internal/core/summary"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

const (
	defaultObservationHours      = 25
	defaultMeasuringStationCount = 3
	defaultFetchConcurrency      = 8
	defaultCacheTTL              = 24 * time.Hour
)

// UseCase fuses every upstream feed into one report per point.
type UseCase struct {
	geocoder   ports.Geocoder
	grid       ports.GridForecastProvider
	region     ports.RegionForecastProvider
	stations   ports.StationObservationSource
	airQuality ports.AirQualityProvider
	uv         ports.UVIndexProvider
	history    ports.DailyHistoryProvider
	store      ports.CacheProvider
	logger     ports.Logger
	metrics    ports.FetchMetrics
	clock      func() time.Time

	resolver   *location.Resolver
	normalizer *series.Normalizer
	engine     *series.Engine
	summaries  *summary.Generator
	config     ports.FusionConfig
}

// UseCaseDependencies lists the collaborators of the use case. AirQuality, UV,
// History, Store, Metrics and Clock are optional.
type UseCaseDependencies struct {
	Geocoder   ports.Geocoder
	Grid       ports.GridForecastProvider
	Region     ports.RegionForecastProvider
	Stations   ports.StationObservationSource
	AirQuality ports.AirQualityProvider
	UV         ports.UVIndexProvider
	History    ports.DailyHistoryProvider
	Store      ports.CacheProvider
	Config     ports.ConfigProvider
	Logger     ports.Logger
	Metrics    ports.FetchMetrics
	Clock      func() time.Time
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Geocoder == nil {
		return nil, errors.NewValidationError("geocoder is required")
	}
	if deps.Grid == nil {
		return nil, errors.NewValidationError("grid forecast provider is required")
	}
	if deps.Region == nil {
		return nil, errors.NewValidationError("region forecast provider is required")
	}
	if deps.Stations == nil {
		return nil, errors.NewValidationError("station observation source is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	cfg := deps.Config.GetFusionConfig()
	if cfg.ObservationHours <= 0 {
		cfg.ObservationHours = defaultObservationHours
	}
	if cfg.MeasuringStationCount <= 0 {
		cfg.MeasuringStationCount = defaultMeasuringStationCount
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaultFetchConcurrency
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &UseCase{
		geocoder:   deps.Geocoder,
		grid:       deps.Grid,
		region:     deps.Region,
		stations:   deps.Stations,
		airQuality: deps.AirQuality,
		uv:         deps.UV,
		history:    deps.History,
		store:      deps.Store,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      clock,
		resolver:   location.NewResolver(cfg.StationCount),
		normalizer: series.NewNormalizer(deps.Logger),
		engine:     series.NewEngine(deps.Logger),
		summaries:  summary.NewGenerator(deps.Logger),
		config:     cfg,
	}, nil
}

// GetWeather resolves the request to a location, fetches every source
// concurrently and fuses what succeeded.
func (uc *UseCase) GetWeather(ctx context.Context, request Request) (*Report, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	now := uc.clock().In(series.KST)
	orchestrator := fetch.NewOrchestrator(uc.store, uc.config.CacheTTL, uc.logger, uc.metrics)

	loc, err := uc.locate(ctx, orchestrator, request)
	if err != nil {
		return nil, err
	}
	uc.logger.Debug("resolved location",
		ports.F("grid", loc.Grid.String()),
		ports.F("region", loc.Region.String()),
		ports.F("stnId", loc.Keys.OutlookStnID),
		ports.F("regId", loc.Keys.LandRegID))

	raw := uc.gather(ctx, orchestrator, loc, now)
	report := uc.fuse(loc, raw, now)

	if len(report.Short) == 0 && len(report.Daily) == 0 && report.Current == nil {
		return nil, errors.NewProviderUnavailableError("all weather sources", nil)
	}

	uc.logger.Info("weather fused",
		ports.F("region", loc.Region.String()),
		ports.F("slots", len(report.Short)),
		ports.F("days", len(report.Daily)),
		ports.F("sources", len(report.Sources)))
	return report, nil
}

// Locate resolves a request without fetching any weather.
func (uc *UseCase) Locate(ctx context.Context, request Request) (*location.Location, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	orchestrator := fetch.NewOrchestrator(uc.store, uc.config.CacheTTL, uc.logger, uc.metrics)
	loc, err := uc.locate(ctx, orchestrator, request)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

type addressResult struct {
	Coordinate location.Coordinate   `json:"coordinate"`
	Regions    []location.RegionName `json:"regions"`
}

func (uc *UseCase) locate(ctx context.Context, orchestrator *fetch.Orchestrator, request Request) (location.Location, error) {
	var (
		coord   location.Coordinate
		regions []location.RegionName
	)

	if request.Coordinate != nil {
		coord = *request.Coordinate
		found, err := fetch.JSON(ctx, orchestrator, geocodeKey(coord), func(ctx context.Context) ([]location.RegionName, error) {
			return uc.geocoder.ByCoordinate(ctx, coord)
		})
		if err != nil {
			return location.Location{}, unavailable("geocoder", err)
		}
		regions = found
	} else {
		found, err := fetch.JSON(ctx, orchestrator, addressKey(request.Address), func(ctx context.Context) (addressResult, error) {
			c, r, err := uc.geocoder.ByAddress(ctx, request.Address)
			return addressResult{Coordinate: c, Regions: r}, err
		})
		if err != nil {
			return location.Location{}, unavailable("geocoder", err)
		}
		coord, regions = found.Coordinate, found.Regions
	}

	return uc.resolver.Resolve(coord, regions)
}

func (uc *UseCase) fuse(loc location.Location, raw *gathered, now time.Time) *Report {
	shortObs := uc.normalizer.Normalize(raw.shortRange, series.ShortRangeSpec)
	ultraObs := uc.normalizer.Normalize(raw.ultraShort, series.UltraShortForecastSpec)
	nowcastObs := uc.normalizer.Normalize(raw.nowcast, series.NowcastSpec)
	cityObs := uc.cityLayer(raw.city, loc.Stations)
	minuteObs := uc.minuteLayer(raw.minute, loc.Stations)

	short := uc.engine.Merge(
		series.Layer{Name: series.ShortRangeSpec.Name, Observations: shortObs},
		series.Layer{Name: series.UltraShortForecastSpec.Name, Observations: ultraObs},
		series.Layer{Name: series.NowcastSpec.Name, Observations: nowcastObs},
		series.Layer{Name: series.CityObservationSpec.Name, Observations: cityObs},
	)
	uc.enrich(short, now)

	// Current conditions prefer the grid-point nowcast over the hourly station table;
	// only the minute table is fresher.
	hourly := uc.engine.Overlay(
		series.Layer{Name: series.ShortRangeSpec.Name, Observations: shortObs},
		series.Layer{Name: series.UltraShortForecastSpec.Name, Observations: ultraObs},
		series.Layer{Name: series.CityObservationSpec.Name, Observations: cityObs},
		series.Layer{Name: series.NowcastSpec.Name, Observations: nowcastObs},
		series.Layer{Name: series.MinuteObservationSpec.Name, Observations: minuteObs},
	)

	report := &Report{
		Location:    loc,
		Short:       short,
		History:     raw.history,
		Sources:     raw.statuses,
		GeneratedAt: now,
	}
	report.Air = uc.airReport(raw, loc)
	report.UV = gradeUV(raw.uv)
	report.Current = uc.current(hourly, now, report.Air, report.UV)
	report.Daily = uc.daily(raw, short, now)
	report.Outlook = outlookText(uc.normalizer.Normalize(raw.outlook, series.MidOutlookSpec))

	sort.Slice(report.Sources, func(i, j int) bool { return report.Sources[i].Name < report.Sources[j].Name })
	return report
}

func unavailable(source string, err error) error {
	switch errors.TypeOf(err) {
	case errors.NotFoundError, errors.ValidationError, errors.RegionNotFoundError, errors.ProviderUnavailableError:
		return err
	}
	return errors.NewProviderUnavailableError(source, err)
}
