// Package auth sends the operator back to the login entry point when the
// backend rejects the current session.
package auth

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/browser"
	"github.com/pterm/pterm"

	"github.com/vip-mudancas/vip-cli/internal/session"
)

// OpenFunc opens a URL in the system browser.
type OpenFunc func(url string) error

// Navigator is the terminal rendition of "go to the login page".
type Navigator struct {
	webURL      string
	openBrowser bool
	open        OpenFunc
	out         io.Writer
}

// NewNavigator creates a navigator for the given web origin. When
// openBrowser is set and webURL is known, expiry opens the login page.
func NewNavigator(webURL string, openBrowser bool) *Navigator {
	return &Navigator{
		webURL:      strings.TrimRight(webURL, "/"),
		openBrowser: openBrowser,
		open:        browser.OpenURL,
	}
}

// WithOpener replaces the browser launcher.
func (n *Navigator) WithOpener(open OpenFunc) *Navigator {
	n.open = open
	return n
}

// WithOutput sends notices to w instead of the terminal.
func (n *Navigator) WithOutput(w io.Writer) *Navigator {
	n.out = w
	return n
}

// URL returns the web address of route, or "" when no web URL is configured.
func (n *Navigator) URL(route string) string {
	if n.webURL == "" {
		return ""
	}
	if route != "" && !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return n.webURL + route
}

// Open opens route of the web application in the browser.
func (n *Navigator) Open(route string) (string, error) {
	u := n.URL(route)
	if u == "" {
		return "", fmt.Errorf("web_url is not configured (set it with `vip config set web_url <url>`)")
	}
	if err := n.open(u); err != nil {
		return u, fmt.Errorf("failed to open browser: %w", err)
	}
	return u, nil
}

// SessionExpired is subscribed to session.Store.OnExpired.
func (n *Navigator) SessionExpired(ctx context.Context, ev session.ExpiredEvent) {
	n.warn("Your session has expired. Run `vip login` to sign in again.")

	u := n.URL(ev.LoginRoute)
	if u == "" || !n.openBrowser {
		return
	}
	n.info("Opening " + u)
	if err := n.open(u); err != nil {
		n.info(fmt.Sprintf("Failed to open browser automatically, please visit: %s", u))
	}
}

func (n *Navigator) warn(msg string) {
	if n.out != nil {
		fmt.Fprintln(n.out, msg)
		return
	}
	pterm.Warning.Println(msg)
}

func (n *Navigator) info(msg string) {
	if n.out != nil {
		fmt.Fprintln(n.out, msg)
		return
	}
	pterm.Info.Println(msg)
}
