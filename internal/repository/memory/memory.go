// Package memory holds map-backed repositories for tests and database-less runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
)

// NewRepositories returns an empty in-memory repository set.
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Session:         NewSessionRepository(),
		WebhookDelivery: NewWebhookDeliveryRepository(),
	}
}

type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *SessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == "" {
		session.ID = domain.OfflineSessionID(session.Shop)
	}
	now := time.Now()
	if existing, ok := r.sessions[session.ID]; ok {
		session.CreatedAt = existing.CreatedAt
	} else if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) GetByShop(ctx context.Context, shop string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[domain.OfflineSessionID(shop)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepository) DeleteByShop(ctx context.Context, shop string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.Shop == shop {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

type WebhookDeliveryRepository struct {
	mu         sync.Mutex
	deliveries map[string]domain.WebhookDelivery
}

func NewWebhookDeliveryRepository() *WebhookDeliveryRepository {
	return &WebhookDeliveryRepository{deliveries: make(map[string]domain.WebhookDelivery)}
}

func (r *WebhookDeliveryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.deliveries[id]
	return ok, nil
}

func (r *WebhookDeliveryRepository) Create(ctx context.Context, delivery *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if delivery.ReceivedAt.IsZero() {
		delivery.ReceivedAt = time.Now()
	}
	if _, ok := r.deliveries[delivery.ID]; !ok {
		r.deliveries[delivery.ID] = *delivery
	}
	return nil
}

// Count returns the number of recorded deliveries.
func (r *WebhookDeliveryRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deliveries)
}
