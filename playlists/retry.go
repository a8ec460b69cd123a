/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playlists

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
	maxBackoff        = 10 * time.Second
)

// do sends req, retrying throttled and failing upstream responses with
// exponential backoff. A Retry-After header takes precedence.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	maxRetries := c.maxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	backoff := c.backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request canceled: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry || attempt >= maxRetries-1 {
			return resp, err
		}

		if resp != nil {
			_ = resp.Body.Close()
		}

		wait := backoff << attempt
		if retryAfter > 0 {
			wait = retryAfter
		}
		wait = min(wait, maxBackoff)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("request canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return parseRetryAfter(resp.Header.Get("Retry-After")), true
	case resp.StatusCode >= 500:
		return parseRetryAfter(resp.Header.Get("Retry-After")), true
	}

	return 0, false
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
