package backend

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const userAgent = "skillchain/issuer"

type BaseClient struct {
	client *resty.Client
	config *config.Backend
	log    *logrus.Entry

	// State
	mtx      sync.Mutex
	limiters map[string]*rate.Limiter
}

func newBaseClient(config *config.Backend) (self *BaseClient) {
	self = new(BaseClient)
	self.config = config
	self.log = logger.NewSublogger("backend-client")
	self.limiters = make(map[string]*rate.Limiter)

	self.client =
		resty.New().
			SetBaseURL(strings.TrimSuffix(config.Url, "/")).
			SetTimeout(config.RequestTimeout).
			SetHeader("User-Agent", userAgent).
			SetRetryCount(config.RetryCount).
			SetLogger(NewLogger()).
			SetTransport(self.createTransport()).
			AddRetryCondition(self.onRetryCondition).
			OnBeforeRequest(self.onRateLimit).
			OnAfterResponse(self.onStatusToError)

	return
}

func (self *BaseClient) createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   self.config.DialerTimeout,
		KeepAlive: self.config.DialerKeepAlive,
	}

	return &http.Transport{
		// Some config options disable http2, try it anyway
		ForceAttemptHTTP2: true,

		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   self.config.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       self.config.IdleConnTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       10,
	}
}

// Converts HTTP status to errors
func (self *BaseClient) onStatusToError(c *resty.Client, resp *resty.Response) error {
	// Non-success status code turns into an error
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() > 399 && resp.StatusCode() < 500 {
		self.log.WithField("status", resp.StatusCode()).
			WithField("resp", string(resp.Body())).
			WithField("url", resp.Request.URL).
			Debug("Bad request")
	}
	return NewHttpError(resp.StatusCode(), resp.Body())
}

// Retry request only upon server errors
func (self *BaseClient) onRetryCondition(resp *resty.Response, err error) bool {
	return resp != nil && resp.StatusCode() >= 500
}

// Handles rate limiting. There's one limiter per host
func (self *BaseClient) onRateLimit(c *resty.Client, req *resty.Request) (err error) {
	if self.config.LimiterInterval <= 0 || self.config.LimiterBurstSize <= 0 {
		return nil
	}

	host := self.config.Url
	if u, err := url.Parse(self.config.Url); err == nil && u.Host != "" {
		host = u.Host
	}

	self.mtx.Lock()
	limiter, ok := self.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(self.config.LimiterInterval), self.config.LimiterBurstSize)
		self.limiters[host] = limiter
	}
	self.mtx.Unlock()

	// Blocks till the request is possible
	// Or ctx gets canceled
	err = limiter.Wait(req.Context())
	if err != nil {
		self.log.WithField("host", host).WithError(err).Debug("Rate limiting failed")
	}
	return
}

type auth int

const (
	authBearer auth = 1 << iota
	authApiKey
)

// Prepares a request with the given authorization headers
func (self *BaseClient) request(ctx context.Context, credentials Credentials, mode auth) *resty.Request {
	req := self.client.R().SetContext(ctx)
	if mode&authBearer != 0 && credentials.BearerToken != "" {
		req.SetAuthToken(credentials.BearerToken)
	}
	if mode&authApiKey != 0 && credentials.ApiKey != "" {
		req.SetHeader("X-API-Key", credentials.ApiKey)
	}
	return req
}

// Allows tests and commands to point the client at another backend
func (self *BaseClient) GetClient() *resty.Client {
	return self.client
}
