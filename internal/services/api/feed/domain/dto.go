// Package domain holds DTOs for the feed http contract
package domain

import ranking "potluck/internal/services/ranking/domain"

// FeedInput is the query of GET /feed
type FeedInput struct {
	Locale   string `json:"locale,omitempty" validate:"omitempty,max=35" example:"en"`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=mixed popular trending fresh controversial" example:"mixed"`
	Cursor   string `json:"cursor,omitempty" validate:"omitempty,max=512"`
	Limit    int    `json:"limit,omitempty" example:"20"`
}

// FeedPage is one page of public item refs
type FeedPage struct {
	IDs        []string `json:"ids"`
	NextCursor *string  `json:"nextCursor"`
	HasMore    bool     `json:"hasMore"`
}

// Request maps the input to a pager request; an empty category is mixed
func (in FeedInput) Request() ranking.PageRequest {
	cat := ranking.Category(in.Category)
	if cat == "" {
		cat = ranking.CategoryMixed
	}
	return ranking.PageRequest{Locale: in.Locale, Category: cat, Cursor: in.Cursor, Limit: in.Limit}
}

// FromPage renders a pager page; a terminal page carries a null cursor
func FromPage(p ranking.Page) FeedPage {
	out := FeedPage{IDs: p.Refs, HasMore: p.HasMore}
	if out.IDs == nil {
		out.IDs = []string{}
	}
	if p.NextCursor != "" {
		c := p.NextCursor
		out.NextCursor = &c
	}
	return out
}
