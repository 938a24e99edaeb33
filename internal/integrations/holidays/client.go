package holidays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const dateLayout = "2006-01-02"

// Client клиент провайдера государственных праздников.
// Ответы кэшируются в Redis, при недоступности провайдера используется статический список из конфигурации.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger

	redis    redis.Cmdable
	cacheTTL time.Duration

	static map[string][]Holiday // страна -> праздники
}

// NewClient создает новый экземпляр клиента. Пустой baseURL отключает провайдера.
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:    log,
		static: make(map[string][]Holiday),
	}
}

// UseRedisCache включает кэш ответов провайдера
func (c *Client) UseRedisCache(rdb redis.Cmdable, ttl time.Duration) {
	c.redis = rdb
	c.cacheTTL = ttl
}

// UseStatic задаёт статический список праздников: страна -> даты YYYY-MM-DD
func (c *Client) UseStatic(static map[string][]string) error {
	for country, dates := range static {
		key := strings.ToUpper(country)
		for _, d := range dates {
			date, err := time.Parse(dateLayout, d)
			if err != nil {
				return fmt.Errorf("%w: static holiday %q for %s: %v", ErrInternal, d, country, err)
			}
			c.static[key] = append(c.static[key], Holiday{Date: date, Name: "static"})
		}
	}
	return nil
}

// Fetch получает праздники страны за год: сначала кэш, затем провайдер
func (c *Client) Fetch(ctx context.Context, countryCode string, year int) ([]Holiday, error) {
	countryCode = strings.ToUpper(countryCode)
	cacheKey := fmt.Sprintf("holidays:%s:%d", countryCode, year)

	var cached []Holiday
	if c.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: provider url is not configured", ErrInternal)
	}

	endpoint := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", c.baseURL, year, url.PathEscape(countryCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, fmt.Errorf("%w: %s", ErrCountryNotSupported, countryCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var raw []publicHoliday
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	result := make([]Holiday, 0, len(raw))
	for _, h := range raw {
		// региональные праздники не закрывают все отделения страны
		if !h.Global {
			continue
		}
		date, err := time.Parse(dateLayout, h.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q: %v", ErrInvalidResponse, h.Date, err)
		}
		result = append(result, Holiday{Date: date, Name: h.Name})
	}

	c.writeCache(ctx, cacheKey, result)
	return result, nil
}

// Holidays получает праздники с graceful degradation: при ошибке провайдера
// возвращает статический список из конфигурации (возможно пустой) с признаком Degraded.
// Страна, которую провайдер не знает, не считается деградацией: статический список для неё полный.
func (c *Client) Holidays(ctx context.Context, countryCode string, year int) (Result, error) {
	holidays, err := c.Fetch(ctx, countryCode, year)
	if err == nil {
		return Result{Holidays: mergeHolidays(holidays, c.staticFor(countryCode, year))}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	static := c.staticFor(countryCode, year)
	if errors.Is(err, ErrCountryNotSupported) {
		c.log.Warn("Holidays: provider has no calendar for %s, using %d static dates", countryCode, len(static))
		return Result{Holidays: static}, nil
	}
	c.log.Error("Holidays: provider unavailable for %s/%d, using %d static dates: %v", countryCode, year, len(static), err)
	return Result{Holidays: static, Degraded: true}, nil
}

func (c *Client) staticFor(countryCode string, year int) []Holiday {
	out := make([]Holiday, 0)
	for _, h := range c.static[strings.ToUpper(countryCode)] {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out
}

func mergeHolidays(base, extra []Holiday) []Holiday {
	seen := make(map[time.Time]bool, len(base))
	for _, h := range base {
		seen[h.Date] = true
	}
	for _, h := range extra {
		if !seen[h.Date] {
			base = append(base, h)
			seen[h.Date] = true
		}
	}
	return base
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Holidays: cache read %s failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.log.Warn("Holidays: cache write %s failed: %v", key, err)
	}
}
