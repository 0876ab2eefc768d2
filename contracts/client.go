package contracts

import (
	"errors"
	"fmt"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/chainfund/donation-workers/entities"
)

const requestTimeout = 15 * time.Second

// Client is a stateless REST client over the milestone-campaign contract
// backend. Transport and backend failures surface as typed errors, never
// panics: callers decide whether a failed call is fatal.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *logrus.Entry
}

func NewClient(baseURL string, logger *logrus.Entry) *Client {
	return &Client{
		http:    resty.New().SetTimeout(requestTimeout),
		baseURL: baseURL,
		logger:  logger,
	}
}

// FundResult is the outcome of an escrow funding attempt. Err wraps
// entities.ErrContractUnavailable when the backend could not be reached or
// declined the call; the orchestrator treats that as non-fatal.
type FundResult struct {
	Hash string
	Err  error
}

func (r FundResult) OK() bool {
	return r.Err == nil
}

// FundCampaign records a backer contribution against the escrow campaign.
// The amount is denominated in the chain's smallest unit.
func (c *Client) FundCampaign(campaignID uint64, backerAddress string, amountBaseUnits int64) FundResult {
	var res entities.FundCampaignRes
	resp, err := c.http.R().
		SetBody(entities.FundCampaignReq{BackerAddress: backerAddress, Amount: amountBaseUnits}).
		SetResult(&res).
		Post(fmt.Sprintf("%s/contracts/v2/campaigns/%d/fund", c.baseURL, campaignID))
	if err != nil {
		return FundResult{Err: unavailable("fund campaign", err)}
	}
	if resp.StatusCode() != 200 || !res.Success {
		return FundResult{Err: unavailable("fund campaign", backendError(resp.StatusCode(), res.Error))}
	}
	if res.Data == nil {
		return FundResult{Err: unavailable("fund campaign", errors.New("empty response data"))}
	}
	return FundResult{Hash: res.Data.Hash}
}

func (c *Client) CreateCampaign(req entities.CreateCampaignReq) (uint64, error) {
	var res entities.CreateCampaignRes
	resp, err := c.http.R().
		SetBody(req).
		SetResult(&res).
		Post(c.baseURL + "/contracts/v2/campaigns")
	if err != nil {
		return 0, unavailable("create campaign", err)
	}
	if resp.StatusCode() != 200 || !res.Success || res.Data == nil {
		return 0, unavailable("create campaign", backendError(resp.StatusCode(), res.Error))
	}
	return res.Data.CampaignID, nil
}

func (c *Client) GetCampaign(campaignID uint64) (*entities.Campaign, error) {
	var res entities.CampaignRes
	resp, err := c.http.R().
		SetResult(&res).
		Get(fmt.Sprintf("%s/contracts/v2/campaigns/%d", c.baseURL, campaignID))
	if err != nil {
		return nil, unavailable("get campaign", err)
	}
	if resp.StatusCode() != 200 || !res.Success || res.Data == nil {
		return nil, unavailable("get campaign", backendError(resp.StatusCode(), res.Error))
	}
	return res.Data, nil
}

func (c *Client) GetMilestone(campaignID, milestoneID uint64) (*entities.Milestone, error) {
	var res entities.MilestoneRes
	resp, err := c.http.R().
		SetResult(&res).
		Get(fmt.Sprintf("%s/contracts/v2/campaigns/%d/milestones/%d", c.baseURL, campaignID, milestoneID))
	if err != nil {
		return nil, unavailable("get milestone", err)
	}
	if resp.StatusCode() != 200 || !res.Success || res.Data == nil {
		return nil, unavailable("get milestone", backendError(resp.StatusCode(), res.Error))
	}
	return res.Data, nil
}

func (c *Client) SubmitProof(campaignID, milestoneID uint64, creatorAddress, ipfsHash string) error {
	var res entities.ContractBaseRes
	resp, err := c.http.R().
		SetBody(entities.SubmitProofReq{CreatorAddress: creatorAddress, IPFSHash: ipfsHash}).
		SetResult(&res).
		Post(fmt.Sprintf("%s/contracts/v2/campaigns/%d/milestones/%d/proof", c.baseURL, campaignID, milestoneID))
	if err != nil {
		return unavailable("submit proof", err)
	}
	if resp.StatusCode() != 200 || !res.Success {
		return unavailable("submit proof", backendError(resp.StatusCode(), res.Error))
	}
	return nil
}

func (c *Client) ReleaseFunds(campaignID, milestoneID uint64) error {
	var res entities.ContractBaseRes
	resp, err := c.http.R().
		SetResult(&res).
		Post(fmt.Sprintf("%s/contracts/v2/campaigns/%d/milestones/%d/release", c.baseURL, campaignID, milestoneID))
	if err != nil {
		return unavailable("release funds", err)
	}
	if resp.StatusCode() != 200 || !res.Success {
		return unavailable("release funds", backendError(resp.StatusCode(), res.Error))
	}
	return nil
}

func (c *Client) Vote(campaignID, milestoneID uint64, voterAddress string, approve bool) error {
	var res entities.ContractBaseRes
	resp, err := c.http.R().
		SetBody(entities.VoteReq{VoterAddress: voterAddress, Approve: approve}).
		SetResult(&res).
		Post(fmt.Sprintf("%s/contracts/v2/campaigns/%d/milestones/%d/vote", c.baseURL, campaignID, milestoneID))
	if err != nil {
		return unavailable("vote", err)
	}
	if resp.StatusCode() != 200 || !res.Success {
		return unavailable("vote", backendError(resp.StatusCode(), res.Error))
	}
	return nil
}

func (c *Client) VoteStatus(campaignID, milestoneID uint64) (*entities.VoteStatus, error) {
	var res entities.VoteStatusRes
	resp, err := c.http.R().
		SetResult(&res).
		Get(fmt.Sprintf("%s/contracts/v2/campaigns/%d/milestones/%d/votes", c.baseURL, campaignID, milestoneID))
	if err != nil {
		return nil, unavailable("vote status", err)
	}
	if resp.StatusCode() != 200 || !res.Success || res.Data == nil {
		return nil, unavailable("vote status", backendError(resp.StatusCode(), res.Error))
	}
	return res.Data, nil
}

func (c *Client) GetBackerInfo(campaignID uint64, backerAddress string) (*entities.BackerInfo, error) {
	var res entities.BackerInfoRes
	resp, err := c.http.R().
		SetResult(&res).
		Get(fmt.Sprintf("%s/contracts/v2/campaigns/%d/backers/%s", c.baseURL, campaignID, backerAddress))
	if err != nil {
		return nil, unavailable("get backer info", err)
	}
	if resp.StatusCode() != 200 || !res.Success || res.Data == nil {
		return nil, unavailable("get backer info", backendError(resp.StatusCode(), res.Error))
	}
	return res.Data, nil
}

// Status reports whether the contract backend considers itself deployed
// and ready.
func (c *Client) Status() (bool, error) {
	var res entities.ContractStatusRes
	resp, err := c.http.R().
		SetResult(&res).
		Get(c.baseURL + "/contracts/v2/status")
	if err != nil {
		return false, unavailable("contract status", err)
	}
	if resp.StatusCode() != 200 {
		return false, unavailable("contract status", backendError(resp.StatusCode(), res.Error))
	}
	return res.Ready, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", entities.ErrContractUnavailable, op, err)
}

func backendError(status int, msg string) error {
	if msg == "" {
		return fmt.Errorf("backend returned status %d", status)
	}
	return fmt.Errorf("backend returned status %d: %s", status, msg)
}
