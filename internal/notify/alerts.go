package notify

import (
	"context"
	"fmt"

	"github.com/averdin/realmbroker/internal/domain"
)

// Event types emitted by the scanner. Operators can restrict delivery to a
// subset via the notify.events config list.
const (
	EventOpportunity  = "opportunity"
	EventScanComplete = "scan_complete"
)

// ScanAlerter formats scanner events into operator notifications. Delivery
// errors are already logged by the Notifier; scan flow never depends on
// notification success.
type ScanAlerter struct {
	notifier *Notifier
}

// NewScanAlerter creates a ScanAlerter on top of the given Notifier.
func NewScanAlerter(notifier *Notifier) *ScanAlerter {
	return &ScanAlerter{notifier: notifier}
}

// OpportunityFound alerts on a single persisted flip.
func (a *ScanAlerter) OpportunityFound(ctx context.Context, opp domain.Opportunity) {
	title := fmt.Sprintf("Flip: %s", opp.ItemName)
	message := fmt.Sprintf("Buy on %s, sell on %s for %.1fg (profit %.1fg after cut)",
		opp.BuyRealm, opp.SellRealm, opp.SellPrice, opp.Profit)
	_ = a.notifier.Notify(ctx, EventOpportunity, title, message)
}

// ScanComplete alerts with a sweep summary.
func (a *ScanAlerter) ScanComplete(ctx context.Context, created int, snap domain.ProgressSnapshot) {
	title := "Scan complete"
	message := fmt.Sprintf("%d opportunities across %d realms in %.0fs",
		created, snap.ProcessedRealms, snap.ElapsedSeconds)
	_ = a.notifier.Notify(ctx, EventScanComplete, title, message)
}
