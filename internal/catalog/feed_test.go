package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	m        sync.Mutex
	products []Product
	err      error
}

func (f *fakeRepository) ListProducts(context.Context) ([]Product, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeRepository) GetProduct(context.Context, string) (*Product, error) {
	return nil, ErrProductNotFound
}

func (f *fakeRepository) CreateProduct(_ context.Context, p Product) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.products = append(f.products, p)
	return nil
}

func (f *fakeRepository) setProducts(products []Product) {
	f.m.Lock()
	defer f.m.Unlock()
	f.products = products
}

// fakeStream emits one event per send on events and stops when it closes.
type fakeStream struct {
	events chan struct{}
}

func (s *fakeStream) Next(ctx context.Context) bool {
	select {
	case _, ok := <-s.events:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (s *fakeStream) Close(context.Context) error { return nil }
func (s *fakeStream) Err() error                  { return nil }

func TestFeed_DeliversInitialSnapshot(t *testing.T) {
	repo := &fakeRepository{products: []Product{{ID: "1", Name: "Mug"}}}
	stream := &fakeStream{events: make(chan struct{})}

	feed := NewFeed(repo, func(context.Context) (ChangeStream, error) { return stream, nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	ch, unsubscribe := feed.Subscribe()
	defer unsubscribe()

	select {
	case got := <-ch:
		require.Len(t, got, 1)
		assert.Equal(t, "Mug", got[0].Name)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot delivered")
	}
}

func TestFeed_ChangeReplacesWholeSequence(t *testing.T) {
	repo := &fakeRepository{products: []Product{{ID: "1", Name: "Mug"}}}
	stream := &fakeStream{events: make(chan struct{}, 1)}

	feed := NewFeed(repo, func(context.Context) (ChangeStream, error) { return stream, nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	ch, unsubscribe := feed.Subscribe()
	defer unsubscribe()

	// Drain the initial snapshot first.
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot delivered")
	}

	repo.setProducts([]Product{{ID: "1", Name: "Mug"}, {ID: "2", Name: "Mat"}})
	stream.events <- struct{}{}

	select {
	case got := <-ch:
		assert.Len(t, got, 2)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after change event")
	}
}

func TestFeed_UnsubscribeStopsDelivery(t *testing.T) {
	repo := &fakeRepository{products: []Product{{ID: "1", Name: "Mug"}}}
	stream := &fakeStream{events: make(chan struct{}, 1)}

	feed := NewFeed(repo, func(context.Context) (ChangeStream, error) { return stream, nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	ch, unsubscribe := feed.Subscribe()

	require.Eventually(t, func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	unsubscribe()
	unsubscribe() // safe to call twice

	_, open := <-ch
	assert.False(t, open, "channel should be closed after unsubscribe")

	// A further event must not panic on the removed subscriber.
	stream.events <- struct{}{}
	time.Sleep(50 * time.Millisecond)
}

func TestFeed_LateSubscriberGetsLatestSnapshot(t *testing.T) {
	repo := &fakeRepository{products: []Product{{ID: "1", Name: "Mug"}}}
	stream := &fakeStream{events: make(chan struct{}, 1)}

	feed := NewFeed(repo, func(context.Context) (ChangeStream, error) { return stream, nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	// Wait until the feed has published once.
	require.Eventually(t, func() bool {
		ch, unsub := feed.Subscribe()
		defer unsub()
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	ch, unsubscribe := feed.Subscribe()
	defer unsubscribe()

	select {
	case got := <-ch:
		assert.NotEmpty(t, got)
	case <-time.After(time.Second):
		t.Fatal("late subscriber did not receive latest snapshot")
	}
}
