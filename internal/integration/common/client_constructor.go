package common

import (
	"net/http"

	"github.com/leadforge/assessment-backend/internal/config"
	pkghttp "github.com/leadforge/assessment-backend/pkg/http"
)

// NewProviderClient builds the tuned HTTP client handed to provider SDKs.
func NewProviderClient(cfg config.HTTPClientConfig) *http.Client {
	return pkghttp.NewClient(
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithConnTimeout(cfg.ConnTimeout),
		pkghttp.WithKeepAlive(cfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithRequestLogging(),
	)
}
