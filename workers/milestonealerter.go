package workers

import (
	"errors"
	"fmt"

	"github.com/chainfund/donation-workers/contracts"
	"github.com/chainfund/donation-workers/entities"
)

// MilestoneAlerter polls the escrow contract for the watched campaigns and
// sends a notification whenever a milestone opens for backer voting.
type MilestoneAlerter struct {
	WorkerAbs
	contract    *contracts.Client
	campaignIDs []uint64
	alerted     map[string]bool
}

func (b *MilestoneAlerter) Init(id int, name string, freq int, network string, contract *contracts.Client, campaignIDs []uint64) error {
	if err := b.WorkerAbs.Init(id, name, freq, network); err != nil {
		return err
	}
	b.contract = contract
	b.campaignIDs = campaignIDs
	b.alerted = map[string]bool{}
	return nil
}

func (b *MilestoneAlerter) Execute() {
	b.Logger.Info("MilestoneAlerter worker is executing...")

	for _, campaignID := range b.campaignIDs {
		campaign, err := b.contract.GetCampaign(campaignID)
		if err != nil {
			if errors.Is(err, entities.ErrContractUnavailable) {
				b.Logger.Warnf("Contract backend unreachable while checking campaign %v: %v", campaignID, err)
				continue
			}
			b.ExportErrorLog(fmt.Sprintf("Could not load campaign %v - with err: %v", campaignID, err))
			continue
		}

		for _, m := range campaign.Milestones {
			key := fmt.Sprintf("%v-%v", campaignID, m.ID)
			if m.VotingOpen() && !b.alerted[key] {
				b.alerted[key] = true
				b.ExportInfoLog(fmt.Sprintf(
					"Campaign %v milestone #%v (%v) is now open for backer voting",
					campaignID, m.ID, m.Title,
				))
			}
			if !m.VotingOpen() {
				// allow a re-alert if the milestone reopens after a rejected vote
				delete(b.alerted, key)
			}
		}
	}
}
