package connectivity

import (
	"context"
	"errors"
	"net"

	"github.com/wichananm65/laundry-pos/internal/apiclient"
)

// HealthChecker is implemented by *apiclient.Client.
type HealthChecker interface {
	Health(ctx context.Context) (string, error)
}

// ClientProber probes GET /health through c.
func ClientProber(c HealthChecker) Prober {
	return ProberFunc(func(ctx context.Context) ProbeResult {
		status, err := c.Health(ctx)
		if err == nil {
			return ProbeResult{Kind: ProbeSuccess, Status: status}
		}
		return classify(err)
	})
}

func classify(err error) ProbeResult {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		return ProbeResult{Kind: ProbeHTTPError, HTTPStatus: se.Status, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ProbeResult{Kind: ProbeTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ProbeResult{Kind: ProbeTimeout, Err: err}
	}
	return ProbeResult{Kind: ProbeNetworkError, Err: err}
}
