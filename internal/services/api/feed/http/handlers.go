// Package http provides http transport for the ranked feed
package http

import (
	stdhttp "net/http"

	"potluck/internal/modkit/httpkit"
	"potluck/internal/platform/logger"
	"potluck/internal/services/api/feed/domain"
	ranking "potluck/internal/services/ranking/domain"
)

// Register mounts feed endpoints on the given router
func Register(r httpkit.Router, p ranking.PagerPort) {
	h := &handlers{pager: p}
	httpkit.Get(r, "/", h.feed)
}

type handlers struct{ pager ranking.PagerPort }

// swagger:route GET /feed Feed feedPage
// @Summary One page of a ranked feed
// @Tags Feed
// @Produce json
// @Param locale query string false "Locale" default(en)
// @Param category query string false "mixed popular trending fresh controversial" default(mixed)
// @Param cursor query string false "Opaque cursor from the previous page"
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} domain.FeedPage "ok"
// @Router /feed [get]
func (h *handlers) feed(r *stdhttp.Request) (any, error) {
	in := domain.FeedInput{
		Locale:   httpkit.QueryString(r, "locale"),
		Category: httpkit.QueryString(r, "category"),
		Cursor:   httpkit.QueryString(r, "cursor"),
		Limit:    httpkit.QueryInt(r, "limit", 0),
	}
	if err := httpkit.Validate(in); err != nil {
		return nil, err
	}

	page, err := h.pager.Page(r.Context(), in.Request())
	if err != nil {
		return nil, err
	}
	logger.C(r.Context()).Debug().
		Str("category", string(in.Request().Category)).
		Str("path", page.Path).
		Int("items", len(page.IDs)).
		Msg("feed page")
	return domain.FromPage(page), nil
}
