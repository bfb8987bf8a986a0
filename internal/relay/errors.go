package relay

import (
	"context"
	"errors"
	"net"
	"os"
)

// IsTimeout reports whether an outbound request failed by exceeding its
// deadline rather than by being refused. http.Client wraps errors in
// *url.Error, so we check the unwrap chain as well as the net.Error
// timeout flag.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
