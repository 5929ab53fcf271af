package billing

import (
	"strings"

	"github.com/FolioTrack/foliotrack/app/models"
)

// normalizeSubscriptionStatus maps processor status strings onto the local
// subscription state set. Trialing counts as active for entitlement purposes;
// incomplete_expired means the initial payment never completed.
func normalizeSubscriptionStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing":
		return models.SubscriptionStatusActive
	case "past_due":
		return models.SubscriptionStatusPastDue
	case "canceled", "incomplete_expired":
		return models.SubscriptionStatusCanceled
	case "unpaid":
		return models.SubscriptionStatusUnpaid
	default:
		return models.SubscriptionStatusIncomplete
	}
}
