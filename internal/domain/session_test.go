package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productIDs(history []ProductSummary) []string {
	ids := make([]string, len(history))
	for i, p := range history {
		ids[i] = p.ID
	}
	return ids
}

func TestPushRecentlyViewed_Prepends(t *testing.T) {
	var history []ProductSummary
	history = PushRecentlyViewed(history, ProductSummary{ID: "a"}, RecentlyViewedLimit)
	history = PushRecentlyViewed(history, ProductSummary{ID: "b"}, RecentlyViewedLimit)

	assert.Equal(t, []string{"b", "a"}, productIDs(history))
}

func TestPushRecentlyViewed_RepeatMovesToFront(t *testing.T) {
	var history []ProductSummary
	history = PushRecentlyViewed(history, ProductSummary{ID: "a"}, RecentlyViewedLimit)
	history = PushRecentlyViewed(history, ProductSummary{ID: "b"}, RecentlyViewedLimit)
	history = PushRecentlyViewed(history, ProductSummary{ID: "a"}, RecentlyViewedLimit)

	// a moved to front, never duplicated.
	assert.Equal(t, []string{"a", "b"}, productIDs(history))
}

func TestPushRecentlyViewed_Bound(t *testing.T) {
	var history []ProductSummary
	for i := 0; i < 10; i++ {
		history = PushRecentlyViewed(history, ProductSummary{ID: fmt.Sprintf("p%d", i)}, RecentlyViewedLimit)
	}

	require.Len(t, history, RecentlyViewedLimit)
	// Most recent first, oldest two evicted.
	assert.Equal(t, []string{"p9", "p8", "p7", "p6", "p5", "p4", "p3", "p2"}, productIDs(history))
}
