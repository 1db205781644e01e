package http_client

import (
	"net"
	"net/http"
	"time"
)

// CreateHTTPClient returns a client for the catalog. timeout <= 0 leaves the
// request timeout to the transport defaults.
func CreateHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          20,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       30 * time.Second,
		DisableCompression:    false,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	cli := &http.Client{
		Transport: tr,
	}
	if timeout > 0 {
		cli.Timeout = timeout
	}

	return cli
}
