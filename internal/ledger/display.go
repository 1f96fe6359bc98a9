package ledger

import (
	"fmt"
	"time"

	"github.com/mannapay/mannapay/internal/models"
)

// Progress returns how far now is between start and end, as a percentage in [0, 100].
// Zero or inverted dates yield 0.
func Progress(now, start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	total := end.Sub(start)
	if total <= 0 {
		return 0
	}
	p := float64(now.Sub(start)) / float64(total) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// TimeRemaining formats the time left until end as "<days>d <hours>h".
func TimeRemaining(now, end time.Time) string {
	if end.IsZero() {
		return "Invalid date"
	}
	left := end.Sub(now)
	if left <= 0 {
		return "Expired"
	}
	days := left / (24 * time.Hour)
	hours := (left % (24 * time.Hour)) / time.Hour
	return fmt.Sprintf("%dd %dh", days, hours)
}

// EffectiveStatus is the status shown to the user. An active subscription past
// its end date reads as expired; the stored status is not changed.
func EffectiveStatus(now time.Time, sub models.Subscription) models.SubscriptionStatus {
	if sub.Status == models.SubscriptionActive && !sub.EndDate.IsZero() && now.After(sub.EndDate) {
		return models.SubscriptionExpired
	}
	return sub.Status
}
