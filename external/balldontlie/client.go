package balldontlie

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/platform/calls"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
	"github.com/BrainSnack9/playstat/internal/platform/ratelimit"
	"github.com/BrainSnack9/playstat/internal/platform/resilience"
	"github.com/BrainSnack9/playstat/internal/usecase"
)

const (
	defaultBaseURL    = "https://api.balldontlie.io/v1"
	defaultPastWindow = 30 * 24 * time.Hour
	defaultNextWindow = 14 * 24 * time.Hour
	pageSize          = 100
	maxPages          = 20
)

var errBallDontLieTransient = crerr.New("balldontlie transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Pacer          *ratelimit.Pacer
	Calls          *calls.Counter
	PastWindow     time.Duration
	NextWindow     time.Duration
}

// Client pulls NBA schedules and results. League tables for basketball are
// derived from results downstream, so FetchStandings maps the provider's
// standings feed into the shared row shape with win-pct filled in.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	pacer          *ratelimit.Pacer
	calls          *calls.Counter
	pastWindow     time.Duration
	nextWindow     time.Duration
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	pastWindow := cfg.PastWindow
	if pastWindow <= 0 {
		pastWindow = defaultPastWindow
	}
	nextWindow := cfg.NextWindow
	if nextWindow <= 0 {
		nextWindow = defaultNextWindow
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		pacer:          cfg.Pacer,
		calls:          cfg.Calls,
		pastWindow:     pastWindow,
		nextWindow:     nextWindow,
		now:            time.Now,
	}
}

func (c *Client) Sport() sport.Sport {
	return sport.Basketball
}

// FetchSchedule walks the games feed page by page inside the sync window.
// leagueCode for this provider is the season start year, e.g. "2025".
func (c *Client) FetchSchedule(ctx context.Context, leagueCode string) (usecase.ExternalScheduleBundle, error) {
	season := strings.TrimSpace(leagueCode)
	if season == "" {
		return usecase.ExternalScheduleBundle{}, fmt.Errorf("season is required")
	}

	now := c.now().UTC()
	bundle := usecase.ExternalScheduleBundle{
		League: usecase.ExternalLeague{
			ExternalID: "nba-" + season,
			Code:       season,
			Name:       "NBA",
			Country:    "USA",
			Season:     season,
		},
	}

	teamsByID := make(map[int64]usecase.ExternalTeam, 32)
	cursor := ""
	for page := 0; page < maxPages; page++ {
		query := map[string]string{
			"per_page":   strconv.Itoa(pageSize),
			"seasons[]":  season,
			"start_date": now.Add(-c.pastWindow).Format("2006-01-02"),
			"end_date":   now.Add(c.nextWindow).Format("2006-01-02"),
		}
		if cursor != "" {
			query["cursor"] = cursor
		}

		var envelope gamesEnvelope
		if err := c.doJSON(ctx, "/games", query, &envelope); err != nil {
			return usecase.ExternalScheduleBundle{}, fmt.Errorf("fetch games season=%s: %w", season, err)
		}

		for _, item := range envelope.Data {
			if item.ID <= 0 {
				continue
			}
			upsertTeam(teamsByID, item.HomeTeam)
			upsertTeam(teamsByID, item.VisitorTeam)
			bundle.Matches = append(bundle.Matches, mapGame(item))
		}

		if envelope.Meta.NextCursor == nil {
			break
		}
		cursor = strconv.FormatInt(*envelope.Meta.NextCursor, 10)
	}

	for _, team := range teamsByID {
		bundle.Teams = append(bundle.Teams, team)
	}
	sort.SliceStable(bundle.Teams, func(i, j int) bool { return bundle.Teams[i].Name < bundle.Teams[j].Name })
	sort.SliceStable(bundle.Matches, func(i, j int) bool {
		if !bundle.Matches[i].KickoffAt.Equal(bundle.Matches[j].KickoffAt) {
			return bundle.Matches[i].KickoffAt.Before(bundle.Matches[j].KickoffAt)
		}
		return bundle.Matches[i].ExternalID < bundle.Matches[j].ExternalID
	})

	return bundle, nil
}

func (c *Client) FetchStandings(ctx context.Context, leagueCode string) ([]usecase.ExternalStandingRow, error) {
	season := strings.TrimSpace(leagueCode)
	if season == "" {
		return nil, fmt.Errorf("season is required")
	}

	var envelope standingsEnvelope
	if err := c.doJSON(ctx, "/standings", map[string]string{"season": season}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch standings season=%s: %w", season, err)
	}

	rows := make([]usecase.ExternalStandingRow, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if item.Team.ID <= 0 {
			continue
		}
		played := item.Wins + item.Losses
		row := usecase.ExternalStandingRow{
			TeamExternalID: strconv.FormatInt(item.Team.ID, 10),
			TeamName:       strings.TrimSpace(item.Team.FullName),
			Played:         played,
			Won:            item.Wins,
			Lost:           item.Losses,
		}
		if played > 0 {
			row.WinPct = float64(item.Wins) / float64(played)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WinPct != rows[j].WinPct {
			return rows[i].WinPct > rows[j].WinPct
		}
		return rows[i].TeamName < rows[j].TeamName
	})
	for i := range rows {
		rows[i].Position = i + 1
	}

	return rows, nil
}

func mapGame(item gameItem) usecase.ExternalMatch {
	row := usecase.ExternalMatch{
		ExternalID:         strconv.FormatInt(item.ID, 10),
		HomeTeamExternalID: strconv.FormatInt(item.HomeTeam.ID, 10),
		AwayTeamExternalID: strconv.FormatInt(item.VisitorTeam.ID, 10),
		HomeTeamName:       strings.TrimSpace(item.HomeTeam.FullName),
		AwayTeamName:       strings.TrimSpace(item.VisitorTeam.FullName),
		Status:             mapGameStatus(item.Status, item.Period),
	}
	if parsed := parseGameTime(item.Datetime, item.Date); parsed != nil {
		row.KickoffAt = *parsed
	}
	if row.Status == match.StatusFinished {
		home := item.HomeTeamScore
		away := item.VisitorTeamScore
		row.HomeScore = &home
		row.AwayScore = &away
	}
	return row
}

// mapGameStatus: the provider sends "Final" for done games, a quarter or
// halftime marker while live, and a tipoff timestamp before the game.
func mapGameStatus(status string, period int) string {
	value := strings.ToLower(strings.TrimSpace(status))
	switch {
	case strings.Contains(value, "final"):
		return match.StatusFinished
	case strings.Contains(value, "qtr"), strings.Contains(value, "halftime"), strings.Contains(value, "ot"):
		return match.StatusLive
	case strings.Contains(value, "postponed"):
		return match.StatusPostponed
	case strings.Contains(value, "cancel"):
		return match.StatusCancelled
	}
	if period > 0 {
		return match.StatusLive
	}
	return match.StatusScheduled
}

func parseGameTime(datetime, date string) *time.Time {
	for _, candidate := range []string{datetime, date} {
		value := strings.TrimSpace(candidate)
		if value == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			parsed, err := time.Parse(layout, value)
			if err == nil {
				v := parsed.UTC()
				return &v
			}
		}
	}
	return nil
}

func upsertTeam(items map[int64]usecase.ExternalTeam, candidate teamItem) {
	if items == nil || candidate.ID <= 0 || strings.TrimSpace(candidate.FullName) == "" {
		return
	}
	current := items[candidate.ID]
	current.ExternalID = strconv.FormatInt(candidate.ID, 10)
	if current.Name == "" {
		current.Name = strings.TrimSpace(candidate.FullName)
	}
	if current.ShortName == "" {
		current.ShortName = strings.TrimSpace(candidate.Abbreviation)
	}
	items[candidate.ID] = current
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "balldontlie circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: basketball data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errBallDontLieTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", c.token)
		}

		c.calls.Inc()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errBallDontLieTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errBallDontLieTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errBallDontLieTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "balldontlie request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 512 {
		return text[:512] + "...(truncated)"
	}
	return text
}
