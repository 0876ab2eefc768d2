package entities

import "errors"

// Project maps a platform project to its on-chain identities: the escrow
// campaign id and the registered payout addresses per chain family.
type Project struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	CampaignID     uint64 `json:"campaign_id"`
	StellarAddress string `json:"stellar_address"`
	EVMAddress     string `json:"evm_address"`
}

var ErrProjectNotFound = errors.New("project not found")

// RecipientFor returns the project's registered payout address for the
// given chain, which may be empty or malformed; callers validate it.
func (p Project) RecipientFor(chain Chain) string {
	if chain.IsEVM() {
		return p.EVMAddress
	}
	return p.StellarAddress
}
