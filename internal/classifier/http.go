package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"fatigue/internal/fatigue"
)

// HTTP posts the clip to a model service as multipart field "file", with
// the model reference in form field "model".
type HTTP struct {
	URL        string
	ResultPath string

	client *resty.Client
}

var _ fatigue.Classifier = (*HTTP)(nil)

// NewHTTP builds an HTTP classifier. hc may be nil; pass a proxied client to
// reach the service through SOCKS.
func NewHTTP(url string, hc *http.Client, timeout time.Duration) *HTTP {
	var c *resty.Client
	if hc != nil {
		c = resty.NewWithClient(hc)
	} else {
		c = resty.New()
	}
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &HTTP{URL: url, client: c}
}

func (h *HTTP) Classify(ctx context.Context, modelPath, wavPath string) (fatigue.Indicators, error) {
	if h.URL == "" {
		return nil, errors.New("no classifier url configured")
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetFile("file", wavPath).
		SetFormData(map[string]string{"model": modelPath}).
		SetHeader("Accept", "application/json").
		Post(h.URL)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("classifier %s: %s", resp.Status(), string(resp.Body()))
	}

	ind, err := ParseIndicators(resp.Body(), h.ResultPath)
	if err != nil {
		return nil, fmt.Errorf("classifier response: %w", err)
	}
	return ind, nil
}
