package external

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"

	"todayweather.app/internal/core/series"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

const (
	scraperTimestampLayout = "2006.01.02.15:04"
	rainSensorOn           = "●"
)

// Minute table columns in page order.
var minuteColumns = []string{
	"stnId", "stnName", "altitude", "rns", "rs15m", "rs1h", "rs3h", "rs6h", "rs12h", "rs1d", "t1h",
	"vec1", "wdd1", "wsd1", "vec", "wdd", "wsd", "reh", "hPa", "addr",
}

// City table columns after the station name cell.
var cityColumns = []string{
	"weather", "visibility", "cloud", "heavyCloud", "t1h", "dpt", "sensoryTem", "dspls",
	"r1d", "s1d", "reh", "wdd", "wsd", "hPa",
}

// KmaScraperAdapter implements StationObservationSource port by scraping the KMA web pages
type KmaScraperAdapter struct {
	baseURL    string
	awsBaseURL string
	client     *ResilientHTTPClient
	logger     ports.Logger
}

// KmaScraperParams holds parameters for creating the scraper
type KmaScraperParams struct {
	BaseURL    string
	AWSBaseURL string
	Client     *ResilientHTTPClient
	Logger     ports.Logger
}

// NewKmaScraperAdapter creates a new KMA scraper adapter
func NewKmaScraperAdapter(params KmaScraperParams) (*KmaScraperAdapter, error) {
	if params.Client == nil {
		return nil, errors.NewConfigurationError("scraper http client is required", nil)
	}
	awsBaseURL := params.AWSBaseURL
	if awsBaseURL == "" {
		awsBaseURL = params.BaseURL
	}
	return &KmaScraperAdapter{
		baseURL:    strings.TrimRight(params.BaseURL, "/"),
		awsBaseURL: strings.TrimRight(awsBaseURL, "/"),
		client:     params.Client,
		logger:     params.Logger,
	}, nil
}

// MinuteTable scrapes the AWS minute table published at or before at.
func (s *KmaScraperAdapter) MinuteTable(ctx context.Context, at time.Time) (*ports.RawResponse, error) {
	kst := at.In(series.KST)
	endpoint := s.awsBaseURL + series.MinuteObservationSpec.Path + "?" + kst.Format("200601021504") + "&0&MINDB_01M&0&a"

	doc, err := s.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	published := kst.Truncate(time.Minute)
	if heading := strings.Fields(doc.Find(".ehead").First().Text()); len(heading) > 0 {
		if t, err := time.ParseInLocation(scraperTimestampLayout, heading[len(heading)-1], series.KST); err == nil {
			published = t
		} else {
			s.logger.Warn("minute table heading has no timestamp", ports.F("heading", strings.Join(heading, " ")))
		}
	}
	timestamp := published.Format(scraperTimestampLayout)

	resp := &ports.RawResponse{Provider: series.MinuteObservationSpec.Name, Published: published}
	doc.Find("table table tr").Each(func(_ int, tr *goquery.Selection) {
		fields := map[string]string{}
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			if j >= len(minuteColumns) {
				return
			}
			text := cellText(td, "")
			column := minuteColumns[j]
			if column == "rns" {
				if text == rainSensorOn {
					fields[column] = "1"
				} else {
					fields[column] = "0"
				}
				return
			}
			if text == "" || text == "." || text == "-" {
				return
			}
			fields[column] = text
		})
		if fields["stnId"] == "" || !isDigits(fields["stnId"]) {
			return
		}
		if allZero(fields, "t1h", "vec", "wsd", "vec1") {
			s.logger.Debug("dropping empty minute row", ports.F("stnId", fields["stnId"]))
			return
		}
		resp.Records = append(resp.Records, ports.RawRecord{Timestamp: timestamp, Fields: fields})
	})

	return resp, nil
}

// CityTable scrapes the hourly multi-station city table for the hour of at.
func (s *KmaScraperAdapter) CityTable(ctx context.Context, at time.Time) (*ports.RawResponse, error) {
	hour := at.In(series.KST).Truncate(time.Hour)

	params := url.Values{}
	params.Set("tm", hour.Format(scraperTimestampLayout))
	params.Set("type", "t99")
	params.Set("mode", "0")
	params.Set("auto_man", "m")
	params.Set("stn", "0")

	doc, err := s.fetch(ctx, s.baseURL+series.CityObservationSpec.Path+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	timestamp := hour.Format(scraperTimestampLayout)
	resp := &ports.RawResponse{Provider: series.CityObservationSpec.Name, Published: hour}
	doc.Find("#weather_table tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		stnID := stationIDFromLink(cells.First().Find("a"))
		if stnID == "" {
			return
		}

		fields := map[string]string{"stnId": stnID}
		cells.Slice(1, cells.Length()).Each(func(j int, td *goquery.Selection) {
			if j >= len(cityColumns) {
				return
			}
			if text := cellText(td, " "); text != "" && text != "-" {
				fields[cityColumns[j]] = text
			}
		})
		resp.Records = append(resp.Records, ports.RawRecord{Timestamp: timestamp, Fields: fields})
	})

	return resp, nil
}

// fetch downloads an EUC-KR page and parses it.
func (s *KmaScraperAdapter) fetch(ctx context.Context, endpoint string) (*goquery.Document, error) {
	body, err := s.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	decoded, err := korean.EUCKR.NewDecoder().Bytes(body)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to decode EUC-KR page", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to parse page", err)
	}
	return doc, nil
}

// cellText collapses the whitespace runs of a cell into sep.
func cellText(td *goquery.Selection, sep string) string {
	return strings.Join(strings.Fields(td.Text()), sep)
}

func stationIDFromLink(a *goquery.Selection) string {
	href, ok := a.Attr("href")
	if !ok {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	query := parsed.Query()
	for _, name := range []string{"stn", "stnId"} {
		if v := query.Get(name); v != "" && isDigits(v) {
			return v
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allZero(fields map[string]string, names ...string) bool {
	for _, name := range names {
		if v, ok := fields[name]; !ok || strings.Trim(v, "0.") != "" {
			return false
		}
	}
	return true
}
