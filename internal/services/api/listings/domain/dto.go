// Package domain holds DTOs and ports for cursor-paged content lists
package domain

import "context"

// Recipe list sorts
const (
	SortRecent        = "recent"
	SortPopular       = "popular"
	SortControversial = "controversial"
	SortComments      = "comments"
	SortSaves         = "saves"
)

// PageInput is the cursor and size shared by every list
type PageInput struct {
	Cursor string `json:"cursor,omitempty" validate:"omitempty,max=512"`
	Limit  int    `json:"limit,omitempty" example:"20"`
}

// RecipesInput is the query of GET /recipes
type RecipesInput struct {
	PageInput
	Sort   string `json:"sort,omitempty" validate:"omitempty,oneof=recent popular controversial comments saves" example:"recent"`
	Locale string `json:"locale,omitempty" validate:"omitempty,max=35" example:"en"`
}

// HashtagInput is the query of GET /hashtags/{tag}/recipes
type HashtagInput struct {
	PageInput
	Tag string `json:"tag" validate:"required,max=200" example:"pasta"`
}

// UserLogsInput is the query of GET /users/{userRef}/logs
type UserLogsInput struct {
	PageInput
	UserRef   string `json:"userRef" validate:"required,uuid" example:"5b0c3a4e-8cb2-4c1e-9a62-1f2b7c5d9e10"`
	MinRating int    `json:"min_rating,omitempty" validate:"omitempty,min=1,max=5" example:"3"`
	MaxRating int    `json:"max_rating,omitempty" validate:"omitempty,min=1,max=5,gtefield=MinRating" example:"5"`
}

// SavedInput is the query of GET /me/saved
type SavedInput struct {
	PageInput
	UserRef string `json:"-" validate:"required"`
}

// ListPage is one page of public item refs
type ListPage struct {
	IDs        []string `json:"ids"`
	NextCursor *string  `json:"nextCursor"`
	HasMore    bool     `json:"hasMore"`
}

// ServicePort is the listings read surface
type ServicePort interface {
	Recipes(ctx context.Context, in RecipesInput) (ListPage, error)
	HashtagRecipes(ctx context.Context, in HashtagInput) (ListPage, error)
	UserLogs(ctx context.Context, in UserLogsInput) (ListPage, error)
	Saved(ctx context.Context, in SavedInput) (ListPage, error)
}
