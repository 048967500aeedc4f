package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// googleBaseURL is the Google Calendar API base. Variable for test injection.
var googleBaseURL = "https://www.googleapis.com/calendar/v3"

// GoogleConfig configures the Google Calendar provider.
type GoogleConfig struct {
	// AccessToken is an OAuth 2.0 token with calendar.readonly scope.
	AccessToken string
	// Calendars is the list of calendar IDs to read; "primary" when empty.
	Calendars []string
}

// Google implements Lookup against the Google Calendar v3 API.
type Google struct {
	cfg        GoogleConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewGoogle builds a provider from config.
func NewGoogle(cfg GoogleConfig) *Google {
	if len(cfg.Calendars) == 0 {
		cfg.Calendars = []string{"primary"}
	}
	return &Google{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

type eventsList struct {
	Items         []apiEvent `json:"items"`
	NextPageToken string     `json:"nextPageToken"`
}

type apiEvent struct {
	ID      string    `json:"id"`
	Status  string    `json:"status"`
	Summary string    `json:"summary"`
	Start   eventTime `json:"start"`
	End     eventTime `json:"end"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

// GetTodayEvents returns every non-cancelled event of the current local day
// across the configured calendars.
func (g *Google) GetTodayEvents(ctx context.Context) ([]Event, error) {
	now := g.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var out []Event
	for _, calID := range g.cfg.Calendars {
		events, err := g.fetchEvents(ctx, calID, dayStart, dayEnd)
		if err != nil {
			return nil, fmt.Errorf("calendar: fetch %s: %w", calID, err)
		}
		out = append(out, events...)
	}
	return out, nil
}

func (g *Google) fetchEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	baseURL := fmt.Sprintf("%s/calendars/%s/events", googleBaseURL, url.PathEscape(calendarID))

	params := url.Values{}
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")
	params.Set("maxResults", "250")
	params.Set("timeMin", timeMin.Format(time.RFC3339))
	params.Set("timeMax", timeMax.Format(time.RFC3339))

	var out []Event
	pages := 0
	for {
		var result eventsList
		if err := g.get(ctx, baseURL+"?"+params.Encode(), &result); err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			if item.Status == "cancelled" {
				continue
			}
			out = append(out, Event{
				ID:    item.ID,
				Title: item.Summary,
				Start: parseEventTime(item.Start),
				End:   parseEventTime(item.End),
			})
		}
		if result.NextPageToken == "" {
			break
		}
		params.Set("pageToken", result.NextPageToken)
		pages++
		if pages > 10 {
			break // safety cap
		}
	}
	return out, nil
}

func (g *Google) get(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("google api returned %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// parseEventTime handles both timed (dateTime) and all-day (date) events.
func parseEventTime(et eventTime) time.Time {
	if et.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, et.DateTime); err == nil {
			return t
		}
		return time.Time{}
	}
	if et.Date != "" {
		if t, err := time.Parse("2006-01-02", et.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
