package telephony

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrNonPublicURL marks a webhook URL the provider could never reach. This
// is a configuration error, not a transient failure: the call is never
// placed.
var ErrNonPublicURL = errors.New("webhook URL must be a publicly reachable https address")

// ValidatePublicWebhookURL rejects URLs the telephony provider cannot call
// back: non-HTTPS schemes, loopback, private and link-local addresses.
func ValidatePublicWebhookURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNonPublicURL, err)
	}

	if parsed.Scheme != "https" {
		return fmt.Errorf("%w: got scheme %q in %q", ErrNonPublicURL, parsed.Scheme, raw)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrNonPublicURL, raw)
	}

	lowered := strings.ToLower(host)
	if lowered == "localhost" || strings.HasSuffix(lowered, ".localhost") || strings.HasSuffix(lowered, ".local") {
		return fmt.Errorf("%w: %q is not publicly resolvable", ErrNonPublicURL, host)
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("%w: %s is not publicly routable", ErrNonPublicURL, ip)
		}
	}

	return nil
}
