package identity

import (
	"net/url"
	"strings"
)

// Mask replaces the domain of email with the mask domain unless the domain
// is allow-listed. Addresses without a domain are returned unchanged.
func (c Config) Mask(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	domain := email[at+1:]
	for _, allowed := range c.AllowedDomains {
		if strings.EqualFold(domain, allowed) {
			return email
		}
	}
	return email[:at+1] + c.MaskDomain
}

// UsernameFromName derives a username from a display name.
func UsernameFromName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// ProviderName names the OpenID provider of an identity url after its host.
func ProviderName(openIDURL string) string {
	u, err := url.Parse(openIDURL)
	if err != nil || u.Hostname() == "" {
		return "openid"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
