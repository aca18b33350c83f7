package backend

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"

	"ozondash/internal/metrics"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewProxy forwards requests verbatim to the backend. Request paths are
// appended to the base URL path, so /outlets/ reaches <base>/outlets/.
func NewProxy(log *zap.SugaredLogger, baseURL string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse backend url")
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.Errorf("backend url %q must be absolute", baseURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)

	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}

	proxy.ModifyResponse = func(resp *http.Response) error {
		metrics.BackendRequests.WithLabelValues("proxy", strconv.Itoa(resp.StatusCode)).Inc()
		return nil
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Errorf("proxy %s %s: %v", r.Method, r.URL.Path, err)
		metrics.BackendRequests.WithLabelValues("proxy", "error").Inc()
		http.Error(w, "Failed to reach backend", http.StatusBadGateway)
	}

	return proxy, nil
}
