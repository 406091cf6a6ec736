package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgnosticMapWaitBeforeSet(t *testing.T) {
	m := NewAgnosticMap[string]()

	resultChan := make(chan string, 1)
	go func() {
		item, err := m.Wait(context.Background(), 10)
		require.NoError(t, err)
		resultChan <- item
	}()

	time.Sleep(50 * time.Millisecond)
	m.Set(10, "block")

	select {
	case item := <-resultChan:
		assert.Equal(t, "block", item)
	case <-time.After(time.Second):
		t.Fatal("waiter never received the item")
	}
}

func TestAgnosticMapWaitCancelled(t *testing.T) {
	m := NewAgnosticMap[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Wait(ctx, 42)
	assert.Error(t, err)
}

func TestAgnosticMapDelete(t *testing.T) {
	m := NewAgnosticMap[int]()
	m.Set(1, 100)
	m.Set(2, 200)

	m.Delete(1)

	keys := m.GetKeyList()
	assert.Equal(t, []uint64{2}, keys)
}
