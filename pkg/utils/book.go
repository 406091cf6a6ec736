package utils

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	emptyKey = ""
)

// RoutineBook keeps track of the tasks that are being processed at a given
// time, limiting how many of them can be in flight at once.
type RoutineBook struct {
	sync.Mutex
	name          string
	pages         map[string]string
	freeSpaceChan chan struct{}
	size          int64
	timeout       time.Duration
}

func NewRoutineBook(size int, name string) *RoutineBook {

	r := &RoutineBook{
		name:          name,
		pages:         make(map[string]string, size), // contains a list of keys identifying routines
		freeSpaceChan: make(chan struct{}, size),     // indicates the free position in the array
		size:          int64(size),
		timeout:       WaitMaxTimeout,
	}
	r.Init()
	return r

}

func (r *RoutineBook) Init() {
	for i := 0; i < int(r.size); i++ {
		r.freeSpaceChan <- struct{}{}
	}
}

func (r *RoutineBook) Acquire(ctx context.Context, key string) error {

	ticker := time.NewTicker(r.timeout)
	defer ticker.Stop()
	select {
	case <-ticker.C:
		return errors.Errorf("waited too long to acquire page %s in book %s", key, r.name)
	case <-r.freeSpaceChan:
		r.Set(key, "active")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

}

func (r *RoutineBook) FreePage(key string) {

	r.Lock()
	defer r.Unlock()
	_, ok := r.pages[key]
	// If the key exists
	if ok {
		delete(r.pages, key)
		r.freeSpaceChan <- struct{}{}
	}

}

func (r *RoutineBook) Set(key string, value string) {
	r.Lock()
	defer r.Unlock()
	r.pages[key] = value // book page

}

func (r *RoutineBook) ActivePages() int {
	r.Lock()
	defer r.Unlock()
	result := 0
	for _, item := range r.pages {
		if item != emptyKey {
			result += 1
		}
	}

	return result
}
