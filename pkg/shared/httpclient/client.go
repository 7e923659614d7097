package httpclient

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/provscan/provscan/pkg/shared/config"
)

// HclogAdapter adapts an hclog.Logger to be compatible with the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that will forward messages to a hclog.Logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// NewRestyClient initializes and configures a resty client based on the provided configuration.
func NewRestyClient(logger hclog.Logger, cfg *config.Config) *resty.Client {
	client := resty.New()
	if logger != nil {
		client.SetLogger(NewHclogAdapter(logger))
	}

	httpCfg := cfg.HttpClient

	client.SetRetryCount(intOr(httpCfg.RetryCount, 5))
	client.SetRetryWaitTime(durationOr(httpCfg.RetryWaitTime, 1*time.Second))
	client.SetRetryMaxWaitTime(durationOr(httpCfg.RetryMaxWaitTime, 2*time.Second))
	client.SetTimeout(durationOr(httpCfg.Timeout, 10*time.Second))
	client.SetDebug(httpCfg.Debug)
	client.SetTLSClientConfig(&tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !httpCfg.TlsClientConfig.Verify,
	})

	if httpCfg.Proxy.Host != "" {
		client.SetProxy(fmt.Sprintf("%s:%s", httpCfg.Proxy.Host, httpCfg.Proxy.Port))
	}

	return client
}

func intOr(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value != 0 {
		return value
	}
	return fallback
}
