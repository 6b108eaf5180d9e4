package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"

	resty "github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// extractedPair is the wire shape returned by the label extraction service.
type extractedPair struct {
	ReelNumber string  `json:"reelNumber"`
	ReelWeight float64 `json:"reelWeight"`
}

// ExtractionClient posts label photos to the external extraction service. The
// service owns the image recognition; this side only moves bytes and maps the
// resulting pairs.
type ExtractionClient struct {
	client *resty.Client
	cb     *CircuitBreaker
}

func NewExtractionClient(baseURL string, timeout time.Duration, cb *CircuitBreaker) *ExtractionClient {
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	return &ExtractionClient{
		client: resty.New().
			SetTimeout(timeout).
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
		cb: cb,
	}
}

// Breaker exposes the circuit breaker state for the health endpoint.
func (c *ExtractionClient) Breaker() *CircuitBreaker { return c.cb }

// Extract uploads image as multipart field "image" to POST /extract. Pairs with an
// empty reel number or a non-positive weight are dropped.
func (c *ExtractionClient) Extract(ctx context.Context, filename string, image io.Reader) ([]dto.ExtractedReel, error) {
	var pairs []extractedPair
	err := c.cb.Execute(func() error {
		res, err := c.client.R().
			SetContext(ctx).
			SetFileReader("image", filename, image).
			SetResult(&pairs).
			Post("/extract")
		if err != nil {
			return fmt.Errorf("extraction: service unreachable: %w", err)
		}
		switch {
		case res.StatusCode() == http.StatusOK:
			return nil
		case res.StatusCode() >= 400 && res.StatusCode() < 500:
			return asCallerFault(fmt.Errorf("extraction: image rejected with status %d", res.StatusCode()))
		default:
			return fmt.Errorf("extraction: service returned %d", res.StatusCode())
		}
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.ExtractedReel, 0, len(pairs))
	for _, p := range pairs {
		no := strings.TrimSpace(p.ReelNumber)
		if no == "" || !(p.ReelWeight > 0) {
			continue
		}
		out = append(out, dto.ExtractedReel{ReelNumber: no, ReelWeight: decimal.NewFromFloat(p.ReelWeight).Round(3)})
	}
	return out, nil
}
