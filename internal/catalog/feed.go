package catalog

import (
	"context"
	"log"
	"sync"
)

// ChangeStream is the slice of *mongo.ChangeStream the feed consumes.
type ChangeStream interface {
	Next(ctx context.Context) bool
	Close(ctx context.Context) error
	Err() error
}

// WatchFunc opens a change stream over the products collection.
type WatchFunc func(ctx context.Context) (ChangeStream, error)

// Feed pushes the full, name-ordered product sequence to every subscriber
// whenever anything in the catalog changes. Subscribers always receive a
// complete replacement snapshot, never a delta.
type Feed struct {
	repo  Repository
	watch WatchFunc

	mu     sync.Mutex
	subs   map[int]chan []Product
	nextID int
	latest []Product
}

func NewFeed(repo Repository, watch WatchFunc) *Feed {
	return &Feed{
		repo:  repo,
		watch: watch,
		subs:  make(map[int]chan []Product),
	}
}

// Subscribe registers a listener. The current snapshot, when one exists, is
// delivered immediately. The returned function tears the subscription down;
// it is safe to call more than once.
func (f *Feed) Subscribe() (<-chan []Product, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++

	ch := make(chan []Product, 1)
	if f.latest != nil {
		ch <- f.latest
	}
	f.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Run publishes the initial snapshot, then re-reads and re-broadcasts the
// catalog on every change-stream event until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	f.refresh(ctx)

	stream, err := f.watch(ctx)
	if err != nil {
		log.Printf("failed to open product change stream: %v", err)
		return
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		f.refresh(ctx)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		log.Printf("product change stream error: %v", err)
	}
}

func (f *Feed) refresh(ctx context.Context) {
	products, err := f.repo.ListProducts(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("failed to list products for feed: %v", err)
		}
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = products
	for _, ch := range f.subs {
		// Drop the stale snapshot if the subscriber has not drained it yet.
		select {
		case <-ch:
		default:
		}
		ch <- products
	}
}
