// Package httperrors turns failed API calls into messages an operator can act on.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/vip-mudancas/vip-cli/internal/api"
)

// Kind classifies a failed request.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindDNS
	KindConnectionRefused
	KindTLS
	KindServer
	KindUnauthorized
	KindBackend
)

// Classify reports what kind of failure err is.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	if apiErr, ok := api.AsAPIError(err); ok {
		switch {
		case apiErr.IsUnauthorized():
			return KindUnauthorized
		case apiErr.IsServerError():
			return KindServer
		default:
			return KindBackend
		}
	}

	switch {
	case isTimeoutError(err):
		return KindTimeout
	case isDNSError(err):
		return KindDNS
	case isConnectionRefusedError(err):
		return KindConnectionRefused
	case isTLSError(err):
		return KindTLS
	}
	return KindUnknown
}

// IsNetworkError reports whether err happened before any response arrived.
func IsNetworkError(err error) bool {
	switch Classify(err) {
	case KindTimeout, KindDNS, KindConnectionRefused, KindTLS:
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Present prints a friendly explanation of err and returns it wrapped.
// action describes what was being attempted, e.g. "listing clients".
func Present(err error, action, apiURL string) error {
	if err == nil {
		return nil
	}

	host := HostOf(apiURL)
	switch Classify(err) {
	case KindTimeout:
		pterm.Warning.Printfln("Connection timeout while %s", action)
		pterm.Println("The API at " + host + " took too long to respond.")
		pterm.Println("  • Check your internet connection")
		pterm.Println("  • Raise timeout_seconds with `vip config set timeout_seconds 60`")
	case KindDNS:
		pterm.Error.Printfln("Cannot resolve %s while %s", host, action)
		pterm.Println("  • Check your internet connection and DNS settings")
		pterm.Println("  • Verify api_url with `vip config show`")
	case KindConnectionRefused:
		pterm.Error.Printfln("Connection refused by %s while %s", host, action)
		pterm.Println("  • The API may be down or still waking up, try again in a moment")
		pterm.Println("  • Verify api_url with `vip config show`")
	case KindTLS:
		pterm.Error.Printfln("Secure connection to %s failed while %s", host, action)
		pterm.Println("  • Check your system date and time")
		pterm.Println("  • Verify network proxy settings")
	case KindServer:
		pterm.Error.Printfln("Server error while %s", action)
		pterm.Println("The VIP Mudanças API reported an internal error. Please try again in a few minutes.")
	case KindUnauthorized:
		pterm.Warning.Printfln("Not authorized while %s", action)
		pterm.Println("Run `vip login` to start a new session.")
	case KindBackend:
		apiErr, _ := api.AsAPIError(err)
		pterm.Error.Printfln("%s (while %s)", apiErr.Message, action)
		return err
	default:
		pterm.Error.Printfln("Cannot reach the VIP Mudanças API while %s", action)
		pterm.Debug.Printfln("Technical details: %s", shorten(err.Error(), 100))
	}
	pterm.Println()

	return fmt.Errorf("%s: %w", action, err)
}

// HostOf extracts the hostname from a URL for error messages.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "the server"
	}
	return u.Host
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tls") ||
		strings.Contains(msg, "x509") ||
		strings.Contains(msg, "certificate")
}
