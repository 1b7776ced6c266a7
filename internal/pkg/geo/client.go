package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"thywilluche/internal/pkg/config"
	"thywilluche/pkg/breaker"
	"thywilluche/pkg/cache"
	"thywilluche/pkg/logger"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrUpstream 外部服务不可用或响应无法解析
var ErrUpstream = errors.New("geo service unavailable")

type Country struct {
	Name      string `json:"name"`
	ISO2      string `json:"iso2"`
	PhoneCode string `json:"phoneCode"`
	Emoji     string `json:"emoji"`
}

type State struct {
	Name string `json:"name"`
	ISO2 string `json:"iso2"`
}

type City struct {
	Name string `json:"name"`
}

type Client interface {
	Countries(ctx context.Context) ([]Country, error)
	States(ctx context.Context, countryCode string) ([]State, error)
	Cities(ctx context.Context, countryCode, stateCode string) ([]City, error)
}

// httpClient countrystatecity API，结果缓存到 Redis
type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   cache.CacheService
	ttl     time.Duration
	breaker *breaker.Breaker
}

func NewClient(cfg config.GeoConfig, c cache.CacheService) Client {
	ttl := time.Duration(cfg.CacheTTL) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   c,
		ttl:     ttl,
		// 上游连续失败 5 次后 30 秒内直接返回 502
		breaker: breaker.New(5, 30*time.Second),
	}
}

func (c *httpClient) Countries(ctx context.Context) ([]Country, error) {
	var out []Country
	err := c.cached(ctx, "geo:countries", &out, func() error {
		body, err := c.get(ctx, "/countries")
		if err != nil {
			return err
		}
		out = make([]Country, 0)
		gjson.ParseBytes(body).ForEach(func(_, v gjson.Result) bool {
			out = append(out, Country{
				Name:      v.Get("name").String(),
				ISO2:      v.Get("iso2").String(),
				PhoneCode: v.Get("phonecode").String(),
				Emoji:     v.Get("emoji").String(),
			})
			return true
		})
		return nil
	})
	return out, err
}

func (c *httpClient) States(ctx context.Context, countryCode string) ([]State, error) {
	countryCode = strings.ToUpper(countryCode)
	var out []State
	err := c.cached(ctx, "geo:states:"+countryCode, &out, func() error {
		body, err := c.get(ctx, "/countries/"+url.PathEscape(countryCode)+"/states")
		if err != nil {
			return err
		}
		out = make([]State, 0)
		gjson.ParseBytes(body).ForEach(func(_, v gjson.Result) bool {
			out = append(out, State{Name: v.Get("name").String(), ISO2: v.Get("iso2").String()})
			return true
		})
		return nil
	})
	return out, err
}

func (c *httpClient) Cities(ctx context.Context, countryCode, stateCode string) ([]City, error) {
	countryCode, stateCode = strings.ToUpper(countryCode), strings.ToUpper(stateCode)
	var out []City
	err := c.cached(ctx, "geo:cities:"+countryCode+":"+stateCode, &out, func() error {
		body, err := c.get(ctx, "/countries/"+url.PathEscape(countryCode)+"/states/"+url.PathEscape(stateCode)+"/cities")
		if err != nil {
			return err
		}
		out = make([]City, 0)
		gjson.ParseBytes(body).ForEach(func(_, v gjson.Result) bool {
			out = append(out, City{Name: v.Get("name").String()})
			return true
		})
		return nil
	})
	return out, err
}

// cached 先读缓存，未命中时调用 load 并回写，缓存故障只记日志
func (c *httpClient) cached(ctx context.Context, key string, dest interface{}, load func() error) error {
	if c.cache != nil {
		err := c.cache.Get(ctx, key, dest)
		if err == nil {
			return nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Log.Warn("geo cache get failed", zap.String("key", key), zap.Error(err))
		}
	}

	if err := load(); err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, dest, c.ttl); err != nil {
			logger.Log.Warn("geo cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (c *httpClient) get(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := c.breaker.Call(func() error {
		var err error
		body, err = c.fetch(ctx, path)
		return err
	})
	if errors.Is(err, breaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return body, err
}

func (c *httpClient) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-CSCAPI-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return nil, fmt.Errorf("%w: unexpected response", ErrUpstream)
	}
	return body, nil
}
