package domain

// Identity is the authenticated user attached to a browser session.
// A nil *Identity means the session is anonymous.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// RecentlyViewedLimit bounds the recently-viewed product history.
const RecentlyViewedLimit = 8

// PushRecentlyViewed prepends p to the history, most-recent-first. A product
// already present is moved to the front rather than duplicated, and the
// result is truncated to limit.
func PushRecentlyViewed(history []ProductSummary, p ProductSummary, limit int) []ProductSummary {
	out := make([]ProductSummary, 0, len(history)+1)
	out = append(out, p)
	for _, seen := range history {
		if seen.ID == p.ID {
			continue
		}
		out = append(out, seen)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
