// Package geocoder resolves free-text addresses through the Yandex geocoding HTTP API.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/metrics"
	"foodcart-routing-service/internal/platform/obs"
	"foodcart-routing-service/internal/ports"
)

const DefaultBaseURL = "https://geocode-maps.yandex.ru/1.x"

type geocodeResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					Point struct {
						Pos string `json:"pos"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// YandexClient implements ports.Geocoder.
// It keeps no per-address state and is safe for concurrent use.
type YandexClient struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	limiter     *rate.Limiter
}

// Option configures the client.
type Option func(*YandexClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *YandexClient) { c.session = hc }
}

// WithBaseURL points the client at a different geocoder endpoint.
func WithBaseURL(u string) Option {
	return func(c *YandexClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds each Geocode call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *YandexClient) { c.timeout = d }
}

// WithMaxAttempts sets the total number of attempts per call.
func WithMaxAttempts(n int) Option {
	return func(c *YandexClient) { c.maxAttempts = n }
}

// WithBackoff sets the delay before the first retry; it doubles on each retry.
func WithBackoff(d time.Duration) Option {
	return func(c *YandexClient) { c.backoff = d }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *YandexClient) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewYandexClient(apiKey string, opts ...Option) (*YandexClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, eris.New("geocoder: api key is empty")
	}

	c := &YandexClient{
		session:     &http.Client{},
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		timeout:     10 * time.Second,
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
		limiter:     rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}

	return c, nil
}

// Geocode resolves one address, taking the first candidate as authoritative.
// It returns ports.ErrNotFound when the service has no candidates and
// *ports.UpstreamError for any failure to obtain an answer.
func (c *YandexClient) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocoder.Geocode")(&err)

	norm := domain.NormalizeAddress(address)
	if norm == "" {
		return domain.Coordinates{}, ports.ErrNotFound
	}

	coords, err := c.geocode(ctx, norm)
	switch {
	case err == nil:
		metrics.GeocodeRequests.WithLabelValues("found").Inc()
	case errors.Is(err, ports.ErrNotFound):
		metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
	default:
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Coordinates{}, &ports.UpstreamError{Address: norm, Err: err}
	}

	return coords, err
}

func (c *YandexClient) geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, eris.Wrap(err, "geocoder: rate limit")
	}

	params := url.Values{
		"geocode": {address},
		"apikey":  {c.apiKey},
		"format":  {"json"},
	}
	endpoint := c.baseURL + "?" + params.Encode()

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return domain.Coordinates{}, eris.Wrap(err, "geocoder: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, eris.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, eris.Wrap(err, "geocoder: decode response")
	}

	found := decoded.Response.GeoObjectCollection.FeatureMember
	if len(found) == 0 {
		zap.L().Debug("geocoder: no candidates", zap.String("address", address))
		return domain.Coordinates{}, ports.ErrNotFound
	}

	return parsePos(found[0].GeoObject.Point.Pos)
}

// parsePos converts a "lon lat" string into coordinates.
func parsePos(pos string) (domain.Coordinates, error) {
	parts := strings.Fields(pos)
	if len(parts) != 2 {
		return domain.Coordinates{}, eris.Errorf("geocoder: invalid point %q", pos)
	}

	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return domain.Coordinates{}, eris.Wrapf(err, "geocoder: invalid longitude %q", parts[0])
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return domain.Coordinates{}, eris.Wrapf(err, "geocoder: invalid latitude %q", parts[1])
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
