package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/chainfund/donation-workers/entities"
)

// SlackNotifier dispatches post-success donation side effects to the info
// webhook. Delivery is best effort; a failed webhook never affects the
// donation outcome.
type SlackNotifier struct {
	Logger *logrus.Entry
}

func (n *SlackNotifier) DonationSucceeded(req entities.DonationRequest, state entities.TransactionState) {
	msg := fmt.Sprintf(
		"Donation %v to project %v completed: %v %v (tx %v)",
		req.ID, req.ProjectID, req.FiatAmount.StringFixed(2), "USD", state.TxHash,
	)
	if state.UsedFallbackDestination {
		msg += " [demo destination]"
	}
	if err := SendSlackNotification(msg, InfoNotification); err != nil && n.Logger != nil {
		n.Logger.Warnf("Could not deliver donation notification - with err: %v", err)
	}
}
