package entities

// Request and response shapes for the milestone-campaign contract backend.
// Every response embeds ContractBaseRes so callers can check Success before
// touching Data, mirroring the backend's {success, data|error} envelope.

type ContractBaseRes struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type FundCampaignReq struct {
	BackerAddress string `json:"backer_address"`
	Amount        int64  `json:"amount"` // chain's smallest unit
}

type FundResult struct {
	Hash string `json:"hash"`
}

type FundCampaignRes struct {
	ContractBaseRes
	Data *FundResult `json:"data,omitempty"`
}

type MilestoneReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"` // stroops
}

type CreateCampaignReq struct {
	CreatorAddress string         `json:"creator_address"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	IPFSMetadata   string         `json:"ipfs_metadata"`
	TotalGoal      int64          `json:"total_goal"` // stroops
	Milestones     []MilestoneReq `json:"milestones"`
}

type CreateCampaignRes struct {
	ContractBaseRes
	Data *struct {
		CampaignID uint64 `json:"campaign_id"`
	} `json:"data,omitempty"`
}

type Milestone struct {
	ID           uint64 `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Amount       int64  `json:"amount"` // stroops
	Status       int    `json:"status"`
	VotesFor     uint64 `json:"votes_for"`
	VotesAgainst uint64 `json:"votes_against"`
}

type Campaign struct {
	ID             uint64      `json:"id"`
	CreatorAddress string      `json:"creator_address"`
	Title          string      `json:"title"`
	Status         int         `json:"status"`
	TotalGoal      int64       `json:"total_goal"`     // stroops
	FundsRaised    int64       `json:"funds_raised"`   // stroops
	FundsReleased  int64       `json:"funds_released"` // stroops
	FundsLocked    int64       `json:"funds_locked"`   // stroops
	Milestones     []Milestone `json:"milestones"`
}

type CampaignRes struct {
	ContractBaseRes
	Data *Campaign `json:"data,omitempty"`
}

type MilestoneRes struct {
	ContractBaseRes
	Data *Milestone `json:"data,omitempty"`
}

type SubmitProofReq struct {
	CreatorAddress string `json:"creator_address"`
	IPFSHash       string `json:"ipfs_hash"`
}

type VoteReq struct {
	VoterAddress string `json:"voter_address"`
	Approve      bool   `json:"approve"`
}

type VoteStatus struct {
	VotesFor     uint64 `json:"votes_for"`
	VotesAgainst uint64 `json:"votes_against"`
	Open         bool   `json:"open"`
}

type VoteStatusRes struct {
	ContractBaseRes
	Data *VoteStatus `json:"data,omitempty"`
}

type BackerInfo struct {
	Amount      int64  `json:"amount"` // stroops
	VotingPower uint64 `json:"voting_power"`
}

type BackerInfoRes struct {
	ContractBaseRes
	Data *BackerInfo `json:"data,omitempty"`
}

type ContractStatusRes struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

var campaignStatusLabels = []string{"Draft", "Active", "Funded", "Completed", "Failed", "Cancelled"}

var milestoneStatusLabels = []string{
	"Pending", "In Progress", "Proof Submitted", "AI Verified",
	"Voting Open", "Approved", "Released", "Disputed", "Rejected",
}

func (c Campaign) StatusLabel() string {
	return statusLabel(campaignStatusLabels, c.Status)
}

func (m Milestone) StatusLabel() string {
	return statusLabel(milestoneStatusLabels, m.Status)
}

// VotingOpen reports whether the milestone is currently accepting votes.
func (m Milestone) VotingOpen() bool {
	return m.StatusLabel() == "Voting Open"
}

func statusLabel(labels []string, v int) string {
	if v < 0 || v >= len(labels) {
		return "Unknown"
	}
	return labels[v]
}
