package main

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingWorker struct {
	executions int32
	quit       chan bool
}

func (w *countingWorker) Execute()               { atomic.AddInt32(&w.executions, 1) }
func (w *countingWorker) GetName() string        { return "counting" }
func (w *countingWorker) GetFrequency() int      { return 1 }
func (w *countingWorker) GetQuitChan() chan bool { return w.quit }
func (w *countingWorker) GetNetwork() string     { return "testnet" }

func TestExecuteWorkerStopsAfterQuit(t *testing.T) {
	worker := &countingWorker{quit: make(chan bool)}
	finish := make(chan bool, 1)

	go executeWorker(finish, worker)
	worker.quit <- true

	select {
	case <-finish:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not signal finish after quit")
	}

	executed := atomic.LoadInt32(&worker.executions)
	if executed != 1 {
		t.Fatalf("executions before quit: got %v, want 1", executed)
	}

	// past the ticker frequency the loop must be gone
	time.Sleep(1500 * time.Millisecond)
	if got := atomic.LoadInt32(&worker.executions); got != executed {
		t.Errorf("worker kept executing after quit: %v executions", got)
	}
}

func TestContain(t *testing.T) {
	if !contain([]int{1, 3}, 3) {
		t.Errorf("3 not found in [1 3]")
	}
	if contain([]int{1, 3}, 2) {
		t.Errorf("2 found in [1 3]")
	}
	if contain(nil, 1) {
		t.Errorf("1 found in empty list")
	}
}
