package workers

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/chainfund/donation-workers/entities"
)

func openTestQueue(t *testing.T) *DonationQueue {
	t.Helper()
	queue, err := OpenDonationQueue(filepath.Join(t.TempDir(), "donations"))
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	t.Cleanup(func() { queue.Close() })
	return queue
}

func TestDonationQueueRoundTrip(t *testing.T) {
	queue := openTestQueue(t)
	xlm, _ := entities.AssetByCode("XLM")

	req := entities.NewDonationRequest("proj-1", xlm, decimal.NewFromInt(25), 500, "")
	if err := queue.Enqueue(req); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	pending, err := queue.Pending()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != req.ID {
		t.Fatalf("pending: got %+v", pending)
	}
	if !pending[0].FiatAmount.Equal(req.FiatAmount) {
		t.Errorf("fiat amount lost in round trip: %v", pending[0].FiatAmount)
	}

	state := entities.TransactionState{
		RequestID: req.ID,
		Step:      entities.StepComplete,
		Status:    entities.StatusSuccess,
		TxHash:    "deadbeef",
	}
	if err := queue.MarkDone(req.ID, state); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	pending, err = queue.Pending()
	if err != nil {
		t.Fatalf("pending after done: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("request still pending after mark done")
	}

	result, ok, err := queue.Result(req.ID)
	if err != nil || !ok {
		t.Fatalf("result: ok=%v err=%v", ok, err)
	}
	if result.TxHash != "deadbeef" || result.Status != entities.StatusSuccess {
		t.Errorf("result: got %+v", result)
	}
}

func TestDonationQueueRejectsInvalidRequest(t *testing.T) {
	queue := openTestQueue(t)
	xlm, _ := entities.AssetByCode("XLM")

	req := entities.NewDonationRequest("", xlm, decimal.NewFromInt(25), 500, "")
	if err := queue.Enqueue(req); err == nil {
		t.Fatalf("invalid request enqueued")
	}
	pending, _ := queue.Pending()
	if len(pending) != 0 {
		t.Errorf("invalid request stored anyway")
	}
}

func TestDonationQueueResultMissing(t *testing.T) {
	queue := openTestQueue(t)
	_, ok, err := queue.Result("no-such-id")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if ok {
		t.Errorf("missing result reported present")
	}
}
