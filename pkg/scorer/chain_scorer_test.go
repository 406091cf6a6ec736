package scorer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/migalabs/scoreth/pkg/spec"
	"github.com/migalabs/scoreth/pkg/utils"
)

// A feed that stalls (or dies) must fail the whole run: the reducer waits on
// slots that will never arrive and only the abort can unblock it.
func TestReducerUnblocksOnAbort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scorer := &ChainScorer{
		ctx:           ctx,
		cancel:        cancel,
		initSlot:      0,
		finalSlot:     10,
		summaries:     NewSummaryAccumulator(),
		participation: NewParticipationTracker(),
		resultCache:   utils.NewAgnosticMap[spec.SlotPerformance](),
		scorerBook:    utils.NewRoutineBook(4, "test"),
		wgWorkers:     &sync.WaitGroup{},
	}

	doneChan := make(chan error, 1)
	go func() {
		doneChan <- scorer.runReducer()
	}()

	feedErr := errors.New("could not hand slot 0 to the workers")
	time.Sleep(20 * time.Millisecond)
	scorer.abort(feedErr)

	select {
	case err := <-doneChan:
		assert.Equal(t, feedErr, err)
	case <-time.After(time.Second):
		t.Fatal("reducer still blocked after the run was aborted")
	}
}

// The first recorded error wins, later ones do not overwrite it.
func TestAbortKeepsFirstError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scorer := &ChainScorer{
		ctx:    ctx,
		cancel: cancel,
	}

	firstErr := errors.New("first failure")
	scorer.abort(firstErr)
	scorer.abort(errors.New("second failure"))

	assert.Equal(t, firstErr, scorer.runError(nil))
}
