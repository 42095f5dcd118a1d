package identity

// Config controls how staged identities are carried over.
type Config struct {
	// MaskDomain replaces the domain of every email outside AllowedDomains.
	MaskDomain string `mapstructure:"mask_domain" default:"example.com"`
	// AllowedDomains keep their addresses unmasked (case-insensitive).
	AllowedDomains []string `mapstructure:"allowed_domains"`
	// OpenID enables best-effort association of staged OpenID urls.
	OpenID bool `mapstructure:"openid" default:"false"`
}
