// internal/service/customer_service.go
package service

import (
	"context"
	"log/slog"

	"github.com/unclebandit/customer-service/internal/model"
	"github.com/unclebandit/customer-service/internal/queue"
	"github.com/unclebandit/customer-service/internal/repository"
)

// EventsTopic is where change notifications go unless configured otherwise.
const EventsTopic = "customer_events"

// PublishObserver is told about every publish attempt. Satisfied by
// *metrics.Registry.
type PublishObserver interface {
	EventPublished(eventType string, err error)
}

type CustomerService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	Queue        queue.Queue
	Topic        string
	Observer     PublishObserver
	Logger       *slog.Logger
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.CustomerRepo.List(ctx)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return s.CustomerRepo.GetByID(ctx, id)
}

func (s *CustomerService) CreateCustomer(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	created, err := s.CustomerRepo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.notify(model.CustomerCreated, *created)
	return created, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	updated, err := s.CustomerRepo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	s.notify(model.CustomerUpdated, *updated)
	return updated, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) (*model.Customer, error) {
	removed, err := s.CustomerRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(model.CustomerDeleted, *removed)
	return removed, nil
}

// Ready reports whether the backing store answers.
func (s *CustomerService) Ready(ctx context.Context) error {
	return s.CustomerRepo.Ping(ctx)
}

// notify publishes a change notification. The write has already committed,
// so a failure here is logged and counted but never returned to the caller.
func (s *CustomerService) notify(eventType string, c model.Customer) {
	if s.Queue == nil {
		return
	}
	topic := s.Topic
	if topic == "" {
		topic = EventsTopic
	}

	err := s.Queue.Publish(topic, model.NewCustomerEvent(eventType, c))
	if s.Observer != nil {
		s.Observer.EventPublished(eventType, err)
	}
	if err != nil && s.Logger != nil {
		s.Logger.Warn("failed to publish customer event", "type", eventType, "id", c.ID, "err", err)
	}
}
