package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service owns all cart mutations. Reads go through the Redis cache; every
// mutation loads the current items, applies the pure State transition and
// persists the result, so the stored cart always satisfies the
// total-recomputation contract.
type Service struct {
	repo  Repository
	cache Cache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*State, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		state, err := s.cache.Get(ctx, userID)
		if err == nil {
			return state, nil // cart is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		items, errGet := s.repo.GetItems(ctx, userID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) {
			// No cart yet: an empty, settled state.
			empty := NewState().SetItems(nil)
			return &empty, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		loaded := NewState().SetItems(items)

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), userID, &loaded); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return &loaded, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*State), nil
}

// TotalAmount returns the persisted cart total, the value callers feed to
// State.SetTotalAmount when the total is sourced from the store rather than
// derived locally.
func (s *Service) TotalAmount(ctx context.Context, userID string) (float64, error) {
	state, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return state.TotalAmount, nil
}

func (s *Service) AddToCart(ctx context.Context, userID string, item Item) (*State, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		log.Printf("repo get items error: %v", err)
		return nil, err
	}

	next := NewState().SetItems(items).AddItem(item)
	if err := s.repo.ReplaceItems(ctx, userID, next.Items); err != nil {
		log.Printf("repo replace items error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return &next, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*State, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		log.Printf("repo get items error: %v", err)
		return nil, err
	}

	next := NewState().SetItems(items).UpdateQuantity(itemID, quantity)
	if err := s.repo.ReplaceItems(ctx, userID, next.Items); err != nil {
		log.Printf("repo replace items error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return &next, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*State, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		log.Printf("repo get items error: %v", err)
		return nil, err
	}

	next := NewState().SetItems(items).RemoveItem(itemID)
	if err := s.repo.ReplaceItems(ctx, userID, next.Items); err != nil {
		log.Printf("repo replace items error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return &next, nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.DeleteCart(ctx, userID); err != nil && !errors.Is(err, ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
