// Package session persists the authenticated browser cookies between runs.
package session

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
)

// Cookie is one stored browser cookie. Expiry is whole Unix seconds and is
// nil for session cookies.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expiry   *int64
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// Save writes cookies to path as an opaque binary blob, replacing any
// previous content.
func Save(path string, cookies []Cookie) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cookie store: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(cookies); err != nil {
		_ = f.Close()
		return fmt.Errorf("cookie store: encode: %w", err)
	}

	return f.Close()
}

func Load(path string) ([]Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cookie store: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var cookies []Cookie
	if err := gob.NewDecoder(f).Decode(&cookies); err != nil {
		return nil, fmt.Errorf("cookie store: decode %s: %w", path, err)
	}

	return cookies, nil
}

// FromNetwork converts the cookies reported by the browser. Fractional
// expiry timestamps are truncated to whole seconds.
func FromNetwork(in []*network.Cookie) []Cookie {
	out := make([]Cookie, 0, len(in))
	for _, c := range in {
		if c == nil {
			continue
		}

		rec := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite.String(),
		}
		if !c.Session && c.Expires > 0 {
			exp := int64(c.Expires)
			rec.Expiry = &exp
		}

		out = append(out, rec)
	}

	return out
}

// Params builds the CDP call that restores c into a browser.
func (c Cookie) Params() *network.SetCookieParams {
	p := network.SetCookie(c.Name, c.Value).
		WithDomain(c.Domain).
		WithSecure(c.Secure).
		WithHTTPOnly(c.HTTPOnly)

	path := c.Path
	if path == "" {
		path = "/"
	}
	p = p.WithPath(path)

	if c.Expiry != nil {
		exp := cdp.TimeSinceEpoch(time.Unix(*c.Expiry, 0))
		p = p.WithExpires(&exp)
	}

	switch network.CookieSameSite(c.SameSite) {
	case network.CookieSameSiteStrict, network.CookieSameSiteLax, network.CookieSameSiteNone:
		p = p.WithSameSite(network.CookieSameSite(c.SameSite))
	}

	return p
}
