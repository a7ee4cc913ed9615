package weather

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"todayweather.app/internal/core/fetch"
	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/series"
	"todayweather.app/internal/ports"
)

const historyDays = 7

// gathered holds whatever the upstream sources returned for one request.
// A nil field means the source failed or is not configured.
type gathered struct {
	shortRange  *ports.RawResponse
	ultraShort  *ports.RawResponse
	nowcast     *ports.RawResponse
	outlook     *ports.RawResponse
	land        *ports.RawResponse
	temperature *ports.RawResponse
	city        []*ports.RawResponse
	minute      *ports.RawResponse
	air         []ports.AirQualityRecord
	measuring   []ports.MeasuringStation
	uv          *ports.UVIndex
	history     []ports.DailyObservation
	statuses    []SourceStatus
}

// gatherer fans fetches out on an errgroup. Its goroutines never return an
// error so one failed source cannot cancel the others.
type gatherer struct {
	group        *errgroup.Group
	ctx          context.Context
	orchestrator *fetch.Orchestrator
	logger       ports.Logger

	mu  sync.Mutex
	raw *gathered
}

func newGatherer(ctx context.Context, orchestrator *fetch.Orchestrator, logger ports.Logger, limit int) *gatherer {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	return &gatherer{
		group:        group,
		ctx:          groupCtx,
		orchestrator: orchestrator,
		logger:       logger,
		raw:          &gathered{},
	}
}

// run executes fn and records its outcome as a source status.
func (g *gatherer) run(name string, fn func(ctx context.Context) (int, error)) {
	g.group.Go(func() error {
		records, err := fn(g.ctx)
		g.report(name, records, err)
		return nil
	})
}

func (g *gatherer) report(name string, records int, err error) {
	status := SourceStatus{Name: name, OK: err == nil, Records: records}
	if err != nil {
		status.Error = err.Error()
		g.logger.Warn("source failed", ports.F("source", name), ports.F("error", err))
	}
	g.mu.Lock()
	g.raw.statuses = append(g.raw.statuses, status)
	g.mu.Unlock()
}

// response fetches one provider response through the orchestrator into target.
func (g *gatherer) response(name, key string, target **ports.RawResponse, remote func(ctx context.Context) (*ports.RawResponse, error)) {
	g.run(name, func(ctx context.Context) (int, error) {
		resp, err := fetch.JSON(ctx, g.orchestrator, key, remote)
		if err != nil {
			return 0, err
		}
		g.mu.Lock()
		*target = resp
		g.mu.Unlock()
		if resp == nil {
			return 0, nil
		}
		return len(resp.Records), nil
	})
}

func (g *gatherer) wait() *gathered {
	_ = g.group.Wait()
	return g.raw
}

func (uc *UseCase) gather(ctx context.Context, orchestrator *fetch.Orchestrator, loc location.Location, now time.Time) *gathered {
	g := newGatherer(ctx, orchestrator, uc.logger, uc.config.FetchConcurrency)
	raw := g.raw

	shortCycle := series.ShortRangeCycle(now)
	g.response(series.ShortRangeSpec.Name, gridKey(series.ShortRangeSpec.Path, shortCycle, loc.Grid), &raw.shortRange,
		func(ctx context.Context) (*ports.RawResponse, error) {
			return uc.grid.ShortRange(ctx, loc.Grid, shortCycle)
		})

	ultraCycle := series.UltraShortCycle(now)
	g.response(series.UltraShortForecastSpec.Name, gridKey(series.UltraShortForecastSpec.Path, ultraCycle, loc.Grid), &raw.ultraShort,
		func(ctx context.Context) (*ports.RawResponse, error) {
			return uc.grid.UltraShortForecast(ctx, loc.Grid, ultraCycle)
		})

	nowcastCycle := series.NowcastCycle(now)
	g.response(series.NowcastSpec.Name, gridKey(series.NowcastSpec.Path, nowcastCycle, loc.Grid), &raw.nowcast,
		func(ctx context.Context) (*ports.RawResponse, error) {
			return uc.grid.Nowcast(ctx, loc.Grid, nowcastCycle)
		})

	midCycle := series.MidCycle(now)
	if loc.Keys.OutlookStnID != "" {
		g.response(series.MidOutlookSpec.Name, regionKey(series.MidOutlookSpec.Path, midCycle, loc.Keys.OutlookStnID), &raw.outlook,
			func(ctx context.Context) (*ports.RawResponse, error) {
				return uc.region.Outlook(ctx, loc.Keys.OutlookStnID, midCycle)
			})
	}
	if loc.Keys.LandRegID != "" {
		g.response(series.MidLandSpec.Name, regionKey(series.MidLandSpec.Path, midCycle, loc.Keys.LandRegID), &raw.land,
			func(ctx context.Context) (*ports.RawResponse, error) {
				return uc.region.LandOutlook(ctx, loc.Keys.LandRegID, midCycle)
			})
	}
	if loc.Keys.TempRegID != "" {
		g.response(series.MidTemperatureSpec.Name, regionKey(series.MidTemperatureSpec.Path, midCycle, loc.Keys.TempRegID), &raw.temperature,
			func(ctx context.Context) (*ports.RawResponse, error) {
				return uc.region.Temperature(ctx, loc.Keys.TempRegID, midCycle)
			})
	}

	minuteAt := now.Truncate(time.Minute)
	g.response(series.MinuteObservationSpec.Name, scrapeKey(series.MinuteObservationSpec.Path, minuteAt), &raw.minute,
		func(ctx context.Context) (*ports.RawResponse, error) {
			return uc.stations.MinuteTable(ctx, minuteAt)
		})

	uc.gatherCity(g, now)

	if uc.airQuality != nil {
		hour := series.AirQualityHour(now)
		g.run("keco-air-quality", func(ctx context.Context) (int, error) {
			records, err := fetch.Records(ctx, g.orchestrator, airQualityKey(hour), func(ctx context.Context) ([]ports.AirQualityRecord, error) {
				return uc.airQuality.Readings(ctx, hour)
			})
			if err != nil {
				return 0, err
			}
			g.mu.Lock()
			raw.air = records
			g.mu.Unlock()
			return len(records), nil
		})
		g.run("keco-measuring-stations", func(ctx context.Context) (int, error) {
			stations, err := fetch.Records(ctx, g.orchestrator, measuringStationsKey(now), uc.airQuality.Stations)
			if err != nil {
				return 0, err
			}
			g.mu.Lock()
			raw.measuring = stations
			g.mu.Unlock()
			return len(stations), nil
		})
	}

	if uc.uv != nil && loc.Region.Code != "" {
		cycle := series.UVCycle(now)
		g.run("kma-uv-index", func(ctx context.Context) (int, error) {
			index, err := fetch.JSON(ctx, g.orchestrator, uvKey(cycle, loc.Region.Code), func(ctx context.Context) (*ports.UVIndex, error) {
				return uc.uv.UVIndex(ctx, loc.Region.Code, cycle)
			})
			if err != nil {
				return 0, err
			}
			g.mu.Lock()
			raw.uv = index
			g.mu.Unlock()
			if index == nil {
				return 0, nil
			}
			return 1, nil
		})
	}

	if uc.history != nil && len(loc.Stations) > 0 {
		stnID := loc.Stations[0].ID
		to := now.AddDate(0, 0, -1)
		from := now.AddDate(0, 0, -historyDays)
		g.run("kma-asos-daily", func(ctx context.Context) (int, error) {
			days, err := fetch.Records(ctx, g.orchestrator, historyKey(stnID, from, to), func(ctx context.Context) ([]ports.DailyObservation, error) {
				return uc.history.DailyHistory(ctx, stnID, from, to)
			})
			if err != nil {
				return 0, err
			}
			g.mu.Lock()
			raw.history = days
			g.mu.Unlock()
			return len(days), nil
		})
	}

	return g.wait()
}

// gatherCity fetches one city table per trailing hour. The hours report as a
// single source that succeeds when any hour arrived.
func (uc *UseCase) gatherCity(g *gatherer, now time.Time) {
	hours := uc.config.ObservationHours
	g.raw.city = make([]*ports.RawResponse, hours)

	var (
		mu      sync.Mutex
		pending = hours
		records int
		lastErr error
		ok      bool
	)
	latest := now.Truncate(time.Hour)
	for i := 0; i < hours; i++ {
		index := i
		at := latest.Add(-time.Duration(i) * time.Hour)
		g.group.Go(func() error {
			resp, err := fetch.JSON(g.ctx, g.orchestrator, scrapeKey(series.CityObservationSpec.Path, at), func(ctx context.Context) (*ports.RawResponse, error) {
				return uc.stations.CityTable(ctx, at)
			})
			if err == nil {
				g.mu.Lock()
				g.raw.city[index] = resp
				g.mu.Unlock()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
			} else {
				ok = true
				if resp != nil {
					records += len(resp.Records)
				}
			}
			pending--
			if pending == 0 {
				if ok {
					lastErr = nil
				}
				g.report(series.CityObservationSpec.Name, records, lastErr)
			}
			return nil
		})
	}
}
