package footballdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
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
	defaultBaseURL    = "https://api.football-data.org/v4"
	defaultPastWindow = 30 * 24 * time.Hour
	defaultNextWindow = 14 * 24 * time.Hour
)

var authTokenHeaderRegex = regexp.MustCompile(`(?i)x-auth-token:\s*\S+`)
var errFootballDataTransient = crerr.New("football data transient failure")

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

// Client pulls schedules, results and league tables from the football
// provider. It never touches storage; rows come back provider-native.
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
	return sport.Football
}

func (c *Client) FetchSchedule(ctx context.Context, leagueCode string) (usecase.ExternalScheduleBundle, error) {
	leagueCode = strings.ToUpper(strings.TrimSpace(leagueCode))
	if leagueCode == "" {
		return usecase.ExternalScheduleBundle{}, fmt.Errorf("league code is required")
	}

	now := c.now().UTC()
	query := map[string]string{
		"dateFrom": now.Add(-c.pastWindow).Format("2006-01-02"),
		"dateTo":   now.Add(c.nextWindow).Format("2006-01-02"),
	}

	path := "/competitions/" + leagueCode + "/matches"
	var envelope matchesEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return usecase.ExternalScheduleBundle{}, fmt.Errorf("fetch schedule league=%s: %w", leagueCode, err)
	}

	bundle := usecase.ExternalScheduleBundle{
		League: usecase.ExternalLeague{
			ExternalID: itoa64(envelope.Competition.ID),
			Code:       firstNonEmpty(envelope.Competition.Code, leagueCode),
			Name:       strings.TrimSpace(envelope.Competition.Name),
			Country:    strings.TrimSpace(envelope.Competition.Area.Name),
			Season:     seasonLabel(envelope.Matches),
		},
	}

	teamsByID := make(map[int64]usecase.ExternalTeam, 32)
	for _, item := range envelope.Matches {
		if item.ID <= 0 {
			continue
		}
		upsertTeam(teamsByID, item.HomeTeam)
		upsertTeam(teamsByID, item.AwayTeam)

		row := usecase.ExternalMatch{
			ExternalID:         itoa64(item.ID),
			HomeTeamExternalID: itoa64(item.HomeTeam.ID),
			AwayTeamExternalID: itoa64(item.AwayTeam.ID),
			HomeTeamName:       strings.TrimSpace(item.HomeTeam.Name),
			AwayTeamName:       strings.TrimSpace(item.AwayTeam.Name),
			Status:             match.NormalizeStatus(item.Status),
		}
		if parsed := parseUTCDate(item.UTCDate); parsed != nil {
			row.KickoffAt = *parsed
		}
		if row.Status == match.StatusFinished {
			row.HomeScore = item.Score.FullTime.Home
			row.AwayScore = item.Score.FullTime.Away
		}
		bundle.Matches = append(bundle.Matches, row)
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
	leagueCode = strings.ToUpper(strings.TrimSpace(leagueCode))
	if leagueCode == "" {
		return nil, fmt.Errorf("league code is required")
	}

	path := "/competitions/" + leagueCode + "/standings"
	var envelope standingsEnvelope
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch standings league=%s: %w", leagueCode, err)
	}

	var rows []usecase.ExternalStandingRow
	for _, table := range envelope.Standings {
		if !strings.EqualFold(strings.TrimSpace(table.Type), "TOTAL") {
			continue
		}
		for _, item := range table.Table {
			if item.Team.ID <= 0 || item.Position <= 0 {
				continue
			}
			rows = append(rows, usecase.ExternalStandingRow{
				TeamExternalID: itoa64(item.Team.ID),
				TeamName:       strings.TrimSpace(item.Team.Name),
				Position:       item.Position,
				Played:         item.PlayedGames,
				Won:            item.Won,
				Draw:           item.Draw,
				Lost:           item.Lost,
				GoalsFor:       item.GoalsFor,
				GoalsAgainst:   item.GoalsAgainst,
				Points:         item.Points,
				Form:           normalizeForm(item.Form),
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football data circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
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
			if reqErr != nil && stderrors.Is(reqErr, errFootballDataTransient) {
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
			req.Header.Set("X-Auth-Token", c.token)
		}

		c.calls.Inc()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errFootballDataTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errFootballDataTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFootballDataTransient, resp.StatusCode, abbreviateBody(raw))
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
	c.logger.WarnContext(ctx, "football data request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return authTokenHeaderRegex.ReplaceAllString(value, "X-Auth-Token: REDACTED")
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 512 {
		return text[:512] + "...(truncated)"
	}
	return text
}

func upsertTeam(items map[int64]usecase.ExternalTeam, candidate matchTeam) {
	if items == nil || candidate.ID <= 0 || strings.TrimSpace(candidate.Name) == "" {
		return
	}
	current := items[candidate.ID]
	current.ExternalID = itoa64(candidate.ID)
	current.Name = firstNonEmpty(current.Name, strings.TrimSpace(candidate.Name))
	current.ShortName = firstNonEmpty(current.ShortName, strings.TrimSpace(candidate.ShortName), strings.TrimSpace(candidate.TLA))
	current.LogoURL = firstNonEmpty(current.LogoURL, strings.TrimSpace(candidate.Crest))
	items[candidate.ID] = current
}

func seasonLabel(matches []matchItem) string {
	for _, item := range matches {
		start := strings.TrimSpace(item.Season.StartDate)
		end := strings.TrimSpace(item.Season.EndDate)
		if len(start) >= 4 && len(end) >= 4 {
			if start[:4] == end[:4] {
				return start[:4]
			}
			return start[:4] + "-" + end[2:4]
		}
		if len(start) >= 4 {
			return start[:4]
		}
	}
	return ""
}

func normalizeForm(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	return strings.ReplaceAll(raw, ",", "")
}

func parseUTCDate(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	v := parsed.UTC()
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func itoa64(v int64) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}
