package repositories

import (
	"context"
	"sync"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// MemoryCartStore keeps carts in process memory. Carts are session
// state, so losing them on restart is acceptable.
type MemoryCartStore struct {
	mu     sync.RWMutex
	carts  map[string]*models.Cart
	logger *logger.Logger
}

var _ CartStoreInterface = (*MemoryCartStore)(nil)

func NewMemoryCartStore(log *logger.Logger) *MemoryCartStore {
	return &MemoryCartStore{
		carts:  make(map[string]*models.Cart),
		logger: log.WithComponent("memory_cart_store"),
	}
}

func (s *MemoryCartStore) Get(ctx context.Context, clientID string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[clientID]
	if !ok {
		return nil, nil
	}

	copy := *cart
	copy.Items = append([]models.CartItem(nil), cart.Items...)
	return &copy, nil
}

func (s *MemoryCartStore) Save(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *cart
	copy.Items = append([]models.CartItem(nil), cart.Items...)
	s.carts[cart.ClientID] = &copy

	s.logger.Debug("Saved cart", "client_id", cart.ClientID, "items", len(cart.Items))
	return nil
}

func (s *MemoryCartStore) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, clientID)
	s.logger.Debug("Deleted cart", "client_id", clientID)
	return nil
}
