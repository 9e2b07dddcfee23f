// Package http provides http transport for content lists
package http

import (
	stdhttp "net/http"

	"potluck/internal/modkit/httpkit"
	"potluck/internal/platform/net/middleware"
	"potluck/internal/services/api/listings/domain"
)

// Register mounts list endpoints on the given router
// the saved items list needs auth and is only mounted when auth is non nil
func Register(r httpkit.Router, s domain.ServicePort, auth middleware.AuthPort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/recipes", h.recipes)
	httpkit.Get(r, "/hashtags/{tag}/recipes", h.hashtag)
	httpkit.Get(r, "/users/{userRef}/logs", h.userLogs)

	if auth != nil {
		httpkit.Protected(r, auth, func(pr httpkit.Router) {
			httpkit.Get(pr, "/me/saved", h.saved)
		})
	}
}

type handlers struct{ svc domain.ServicePort }

func pageInput(r *stdhttp.Request) domain.PageInput {
	return domain.PageInput{
		Cursor: httpkit.QueryString(r, "cursor"),
		Limit:  httpkit.QueryInt(r, "limit", 0),
	}
}

// swagger:route GET /recipes Listings listRecipes
// @Summary Recipes paged by sort
// @Tags Listings
// @Produce json
// @Param sort query string false "recent popular controversial comments saves" default(recent)
// @Param locale query string false "Locale" default(en)
// @Param cursor query string false "Opaque cursor from the previous page"
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} domain.ListPage "ok"
// @Router /recipes [get]
func (h *handlers) recipes(r *stdhttp.Request) (any, error) {
	in := domain.RecipesInput{
		PageInput: pageInput(r),
		Sort:      httpkit.QueryString(r, "sort"),
		Locale:    httpkit.QueryString(r, "locale"),
	}
	if err := httpkit.Validate(in); err != nil {
		return nil, err
	}
	return h.svc.Recipes(r.Context(), in)
}

// swagger:route GET /hashtags/{tag}/recipes Listings listHashtagRecipes
// @Summary Recipes carrying a hashtag, newest first
// @Tags Listings
// @Produce json
// @Param tag path string true "Hashtag"
// @Success 200 {object} domain.ListPage "ok"
// @Router /hashtags/{tag}/recipes [get]
func (h *handlers) hashtag(r *stdhttp.Request) (any, error) {
	in := domain.HashtagInput{PageInput: pageInput(r), Tag: httpkit.PathParam(r, "tag")}
	if err := httpkit.Validate(in); err != nil {
		return nil, err
	}
	return h.svc.HashtagRecipes(r.Context(), in)
}

// swagger:route GET /users/{userRef}/logs Listings listUserLogs
// @Summary A user's cooking logs, newest first
// @Tags Listings
// @Produce json
// @Param userRef path string true "User ref (uuid)"
// @Param min_rating query int false "Lowest rating"
// @Param max_rating query int false "Highest rating"
// @Success 200 {object} domain.ListPage "ok"
// @Router /users/{userRef}/logs [get]
func (h *handlers) userLogs(r *stdhttp.Request) (any, error) {
	in := domain.UserLogsInput{
		PageInput: pageInput(r),
		UserRef:   httpkit.PathParam(r, "userRef"),
		MinRating: httpkit.QueryInt(r, "min_rating", 0),
		MaxRating: httpkit.QueryInt(r, "max_rating", 0),
	}
	if err := httpkit.Validate(in); err != nil {
		return nil, err
	}
	return h.svc.UserLogs(r.Context(), in)
}

// swagger:route GET /me/saved Listings listSaved
// @Summary Recipes the caller saved, most recent first
// @Tags Listings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.ListPage "ok"
// @Router /me/saved [get]
func (h *handlers) saved(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Saved(r.Context(), domain.SavedInput{PageInput: pageInput(r), UserRef: uid})
}
