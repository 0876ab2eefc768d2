package workers

import (
	"encoding/json"

	"github.com/syndtr/goleveldb/leveldb"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/chainfund/donation-workers/entities"
)

const (
	pendingKeyPrefix = "donation-pending-"
	resultKeyPrefix  = "donation-result-"
)

// DonationQueue is the durable hand-off between request producers and the
// donation processor: pending requests in, terminal transaction states out.
// It replaces ad hoc cross-component events with an explicit typed queue.
type DonationQueue struct {
	db *leveldb.DB
}

func OpenDonationQueue(path string) (*DonationQueue, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &DonationQueue{db: db}, nil
}

func (q *DonationQueue) Close() error {
	return q.db.Close()
}

func (q *DonationQueue) Enqueue(req entities.DonationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return q.db.Put([]byte(pendingKeyPrefix+req.ID), raw, nil)
}

// Pending returns all queued donation requests.
func (q *DonationQueue) Pending() ([]entities.DonationRequest, error) {
	var out []entities.DonationRequest
	iter := q.db.NewIterator(ldbutil.BytesPrefix([]byte(pendingKeyPrefix)), nil)
	defer iter.Release()
	for iter.Next() {
		var req entities.DonationRequest
		if err := json.Unmarshal(iter.Value(), &req); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, iter.Error()
}

// MarkDone removes the pending entry and records the terminal state under
// the request id.
func (q *DonationQueue) MarkDone(requestID string, state entities.TransactionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Delete([]byte(pendingKeyPrefix + requestID))
	batch.Put([]byte(resultKeyPrefix+requestID), raw)
	return q.db.Write(batch, nil)
}

// Result returns the recorded terminal state for a request, if present.
func (q *DonationQueue) Result(requestID string) (entities.TransactionState, bool, error) {
	raw, err := q.db.Get([]byte(resultKeyPrefix+requestID), nil)
	if err == leveldb.ErrNotFound {
		return entities.TransactionState{}, false, nil
	}
	if err != nil {
		return entities.TransactionState{}, false, err
	}
	var state entities.TransactionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return entities.TransactionState{}, false, err
	}
	return state, true, nil
}
