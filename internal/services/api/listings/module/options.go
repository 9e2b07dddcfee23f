package module

import (
	"strings"

	"potluck/internal/platform/config"
)

// Options for the listings module
type Options struct {
	// RateRPM caps requests per client ip per minute; 0 disables
	RateRPM int
	// JWTSecret enables the bearer protected saved items list
	JWTSecret string

	DefaultLocale string
	PageDefault   int
	PageMax       int
}

// FromConfig fills options from environment
// CORE_API_RATE_RPM (default 0) limits list requests per ip per minute
// CORE_API_JWT_SECRET (optional) HS256 secret for /me/saved
// CORE_FEED_DEFAULT_LOCALE, CORE_FEED_PAGE_DEFAULT and CORE_FEED_PAGE_MAX are shared with feeds
func FromConfig(cfg config.Conf) Options {
	api := cfg.Prefix("CORE_API_")
	feed := cfg.Prefix("CORE_FEED_")
	return Options{
		RateRPM:       api.MayInt("RATE_RPM", 0),
		JWTSecret:     api.MayString("JWT_SECRET", ""),
		DefaultLocale: strings.ToLower(feed.MayString("DEFAULT_LOCALE", "en")),
		PageDefault:   feed.MayInt("PAGE_DEFAULT", 20),
		PageMax:       feed.MayInt("PAGE_MAX", 50),
	}
}
