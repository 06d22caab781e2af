package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// maxTableBytes caps a downloaded rule table.
const maxTableBytes = 8 << 20

// HTTP downloads the table with GET. Network errors and 5xx responses are
// retried with exponential backoff; other non-200 responses fail at once.
type HTTP struct {
	URL      string
	Client   *http.Client
	MaxTries uint
	Timeout  time.Duration

	log zerolog.Logger
}

// NewHTTP returns an HTTP source. timeout bounds a whole Fetch, retries
// included; zero means no bound beyond the caller's context.
func NewHTTP(url string, timeout time.Duration, logger zerolog.Logger) *HTTP {
	return &HTTP{
		URL:      url,
		Client:   &http.Client{},
		MaxTries: 4,
		Timeout:  timeout,
		log:      logger.With().Str("component", "source").Str("url", url).Logger(),
	}
}

func (h *HTTP) String() string { return h.URL }

func (h *HTTP) Fetch(ctx context.Context) (string, error) {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 200 * time.Millisecond
	eb.MaxInterval = 2 * time.Second

	return backoff.Retry(ctx, func() (string, error) {
		return h.get(ctx)
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(h.MaxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			h.log.Warn().Err(err).Dur("retry_in", wait).Msg("rule table fetch failed")
		}),
	)
}

func (h *HTTP) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/csv, text/plain")

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("GET %s: status %d", h.URL, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", backoff.Permanent(fmt.Errorf("GET %s: status %d", h.URL, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTableBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxTableBytes {
		return "", backoff.Permanent(fmt.Errorf("GET %s: rule table exceeds %d bytes", h.URL, maxTableBytes))
	}
	return string(body), nil
}
