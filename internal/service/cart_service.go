package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/singleflight"

	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/cache"
	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/domain"
	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/inventory"
	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/repository"
)

// User-facing mutation outcomes.
const (
	MsgStockLimit     = "Stock limit reached"
	MsgCartUpdated    = "Cart updated!"
	MsgProductAdded   = "Product added to cart!"
	MsgProductRemoved = "Product removed from cart!"
	MsgCartDeleted    = "Cart deleted!"
	MsgInventoryLimit = "Inventory limit reached!"
	MsgCartCleared    = "Cart cleared!"
	MsgCartRemoved    = "Cart removed successfully."
	MsgNotInCart      = "Product not in cart"
)

// CartService owns every cart mutation. Each mutating operation runs as
// one transaction: the stock read, the cart read, and the single write
// all share it, so concurrent calls for the same user+product serialize
// at the store and never act on stale reads.
type CartService struct {
	repo  repository.CartRepository
	stock inventory.Query
	cache cache.CartCache
	tx    TxRunner
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, stock inventory.Query, cartCache cache.CartCache, tx TxRunner) *CartService {
	return &CartService{
		repo:  repo,
		stock: stock,
		cache: cartCache,
		tx:    tx,
	}
}

// GetCart returns the user's cart lines with product references resolved.
// Lines whose product is missing or invalidated are filtered out of the
// view but left in the stored document. A missing cart is an empty result,
// not an error.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]domain.ResolvedItem, error) {
	uid, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, userID, uid)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.Len() == 0 {
		return []domain.ResolvedItem{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	// Product validity is resolved live on every read so an invalidated
	// product disappears immediately, even when the cart itself was cached.
	products, err := s.stock.FindValid(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	items := make([]domain.ResolvedItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		items = append(items, domain.ResolvedItem{Product: product, Quantity: item.Quantity})
	}
	return items, nil
}

// GetItemQuantity returns the stored quantity of one line item. Missing
// cart, missing line, or an invalidated product all read as 0.
func (s *CartService) GetItemQuantity(ctx context.Context, userID, productID string) (int, error) {
	uid, err := parseID("user id", userID)
	if err != nil {
		return 0, err
	}
	pid, err := parseID("product id", productID)
	if err != nil {
		return 0, err
	}

	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get item quantity: %w", err)
	}

	qty := cart.Quantity(pid)
	if qty == 0 {
		return 0, nil
	}

	products, err := s.stock.FindValid(ctx, []primitive.ObjectID{pid})
	if err != nil {
		return 0, fmt.Errorf("get item quantity: %w", err)
	}
	if _, ok := products[pid]; !ok {
		return 0, nil
	}
	return qty, nil
}

// AddItem adds quantity units of a product, clamped to available stock.
// At the stock ceiling the request is rejected without a write.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (domain.Result, error) {
	uid, err := parseID("user id", userID)
	if err != nil {
		return domain.Result{}, err
	}
	pid, err := parseID("product id", productID)
	if err != nil {
		return domain.Result{}, err
	}
	if quantity < 1 {
		return domain.Result{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	var res domain.Result
	err = s.tx.WithTransaction(ctx, func(tc context.Context) error {
		stock, err := s.stock.AvailableQuantity(tc, pid)
		if err != nil {
			return err
		}

		cart, err := s.repo.GetCart(tc, uid)
		if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
			return err
		}
		current := cart.Quantity(pid)

		switch {
		case stock <= current:
			res = domain.Rejected(MsgStockLimit)
			return nil
		case current > 0:
			next := current + quantity
			if next > stock {
				next = stock
			}
			if err := s.repo.SetItemQuantity(tc, uid, pid, next); err != nil {
				return err
			}
			res = domain.OK(MsgCartUpdated)
		default:
			qty := quantity
			if qty > stock {
				qty = stock
			}
			item := domain.CartItem{ProductID: pid, Quantity: qty, AddedAt: time.Now()}
			if err := s.repo.AddItem(tc, uid, item); err != nil {
				return err
			}
			res = domain.OK(MsgProductAdded)
		}
		return nil
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("add item: %w", err)
	}

	if res.Success {
		s.invalidateCache(userID)
	}
	return res, nil
}

// DeleteItem decrements a line item by one. The last unit removes the
// line; the last line removes the cart document.
func (s *CartService) DeleteItem(ctx context.Context, userID, productID string) (domain.Result, error) {
	uid, err := parseID("user id", userID)
	if err != nil {
		return domain.Result{}, err
	}
	pid, err := parseID("product id", productID)
	if err != nil {
		return domain.Result{}, err
	}

	var res domain.Result
	err = s.tx.WithTransaction(ctx, func(tc context.Context) error {
		cart, err := s.repo.GetCart(tc, uid)
		if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
			return err
		}

		switch {
		case cart.Quantity(pid) > 1:
			if err := s.repo.IncrementItem(tc, uid, pid, -1); err != nil {
				return err
			}
			res = domain.OK(MsgCartUpdated)
		case cart.Len() > 1:
			if err := s.repo.RemoveItem(tc, uid, pid); err != nil {
				return err
			}
			res = domain.OK(MsgProductRemoved)
		default:
			if err := s.deleteCartIgnoreMissing(tc, uid); err != nil {
				return err
			}
			res = domain.OK(MsgCartDeleted)
		}
		return nil
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("delete item: %w", err)
	}

	s.invalidateCache(userID)
	return res, nil
}

// ChangeItemQuantity sets a line item to an absolute quantity, clamped to
// available stock. A clamp to zero stock removes the line (and an emptied
// cart) rather than storing a zero quantity.
func (s *CartService) ChangeItemQuantity(ctx context.Context, userID, productID string, amount int) (domain.Result, error) {
	uid, err := parseID("user id", userID)
	if err != nil {
		return domain.Result{}, err
	}
	pid, err := parseID("product id", productID)
	if err != nil {
		return domain.Result{}, err
	}
	if amount < 1 {
		return domain.Result{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, amount)
	}

	var res domain.Result
	err = s.tx.WithTransaction(ctx, func(tc context.Context) error {
		stock, err := s.stock.AvailableQuantity(tc, pid)
		if err != nil {
			return err
		}

		target, msg := amount, MsgCartUpdated
		if amount > stock {
			target, msg = stock, MsgInventoryLimit
		}

		if target == 0 {
			// Stock is gone entirely; a zero-quantity line is never stored.
			cart, err := s.repo.GetCart(tc, uid)
			if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
				return err
			}
			if cart.Quantity(pid) == 0 {
				res = domain.Rejected(MsgNotInCart)
				return nil
			}
			if cart.Len() <= 1 {
				if err := s.deleteCartIgnoreMissing(tc, uid); err != nil {
					return err
				}
			} else if err := s.repo.RemoveItem(tc, uid, pid); err != nil {
				return err
			}
			res = domain.OK(MsgInventoryLimit)
			return nil
		}

		if err := s.repo.SetItemQuantity(tc, uid, pid, target); err != nil {
			if errors.Is(err, repository.ErrItemNotFound) {
				res = domain.Rejected(MsgNotInCart)
				return nil
			}
			return err
		}
		res = domain.OK(msg)
		return nil
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("change item quantity: %w", err)
	}

	if res.Success {
		s.invalidateCache(userID)
	}
	return res, nil
}

// RemoveItem drops a product's line outright, whatever its quantity.
// Removing the only line drops the cart document instead.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (domain.Result, error) {
	uid, err := parseID("user id", userID)
	if err != nil {
		return domain.Result{}, err
	}
	pid, err := parseID("product id", productID)
	if err != nil {
		return domain.Result{}, err
	}

	var res domain.Result
	err = s.tx.WithTransaction(ctx, func(tc context.Context) error {
		cart, err := s.repo.GetCart(tc, uid)
		if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
			return err
		}

		if cart.Len() <= 1 {
			if err := s.deleteCartIgnoreMissing(tc, uid); err != nil {
				return err
			}
			res = domain.OK(MsgCartCleared)
			return nil
		}

		if err := s.repo.RemoveItem(tc, uid, pid); err != nil {
			return err
		}
		res = domain.OK(MsgProductRemoved)
		return nil
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("remove item: %w", err)
	}

	s.invalidateCache(userID)
	return res, nil
}

// RemoveCart deletes the whole cart document. Unlike the read paths, a
// missing cart is an error here.
func (s *CartService) RemoveCart(ctx context.Context, userID string) (domain.Result, error) {
	uid, err := parseID("user id", userID)
	if err != nil {
		return domain.Result{}, err
	}

	if err := s.repo.DeleteCart(ctx, uid); err != nil {
		return domain.Result{}, fmt.Errorf("remove cart: %w", err)
	}

	s.invalidateCache(userID)
	return domain.OK(MsgCartRemoved), nil
}

// loadCart serves the raw cart document, cache first. Reads that are part
// of a caller's transaction bypass the cache so they see transactional
// state. A missing cart loads as an empty one.
func (s *CartService) loadCart(ctx context.Context, key string, uid primitive.ObjectID) (*domain.Cart, error) {
	if mongo.SessionFromContext(ctx) != nil {
		return s.loadCartFromRepo(ctx, uid)
	}

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, key)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, err = s.loadCartFromRepo(ctx, uid)
		if err != nil {
			return nil, err
		}

		if cart.Len() > 0 {
			go func() {
				errSet := s.cache.Set(context.Background(), key, cart)
				if errSet != nil {
					log.Printf("cache set error: %v", errSet)
				}
			}()
		}

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *CartService) loadCartFromRepo(ctx context.Context, uid primitive.ObjectID) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return &domain.Cart{UserID: uid}, nil
		}
		return nil, err
	}
	return cart, nil
}

// deleteCartIgnoreMissing collapses the cart document; deleting a cart
// that is already gone is not an error on these paths.
func (s *CartService) deleteCartIgnoreMissing(ctx context.Context, uid primitive.ObjectID) error {
	err := s.repo.DeleteCart(ctx, uid)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return err
	}
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func parseID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %q", ErrInvalidID, field, raw)
	}
	return id, nil
}
