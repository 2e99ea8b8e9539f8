// internal/handler/customer_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-multierror"

	appErrors "github.com/unclebandit/customer-service/internal/errors"
	"github.com/unclebandit/customer-service/internal/model"
	"github.com/unclebandit/customer-service/internal/service"
)

const maxBodyBytes = 1 << 20

// CustomerHandler holds the dependencies for customer-related HTTP handlers
type CustomerHandler struct {
	Service *service.CustomerService
	Logger  *slog.Logger
}

// NewCustomerHandler creates a new CustomerHandler with the given service
func NewCustomerHandler(svc *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		Service: svc,
		Logger:  logger,
	}
}

// Routes mounts the customer endpoints on r.
func (h *CustomerHandler) Routes(r chi.Router) {
	r.Get("/", h.ListCustomers)
	r.Post("/", h.CreateCustomer)
	r.Put("/", h.UpdateCustomer)
	r.Get("/{id}", h.GetCustomer)
	r.Delete("/{id}", h.DeleteCustomer)
}

// CustomerPayload is the request body for create and update. "_id" is
// accepted as an alias of "id" for clients written against the document
// store's native field name.
type CustomerPayload struct {
	ID          string  `json:"id"`
	LegacyID    string  `json:"_id"`
	Name        string  `json:"name"`
	DateOfBirth *string `json:"dateOfBirth"`
	Interests   string  `json:"interests"`
}

// Validate checks required fields and returns the customer to store.
// requireID is set for updates.
func (p *CustomerPayload) Validate(requireID bool) (*model.Customer, error) {
	var errs *multierror.Error

	c := &model.Customer{
		ID:        strings.TrimSpace(p.ID),
		Name:      strings.TrimSpace(p.Name),
		Interests: p.Interests,
	}
	if c.ID == "" {
		c.ID = strings.TrimSpace(p.LegacyID)
	}

	if requireID && c.ID == "" {
		errs = multierror.Append(errs, errors.New("id is required"))
	}
	if c.Name == "" {
		errs = multierror.Append(errs, errors.New("name is required"))
	}
	if p.DateOfBirth == nil || strings.TrimSpace(*p.DateOfBirth) == "" {
		errs = multierror.Append(errs, errors.New("dateOfBirth is required"))
	} else {
		dob, err := model.ParseDate(strings.TrimSpace(*p.DateOfBirth))
		switch {
		case err != nil:
			errs = multierror.Append(errs, errors.New("dateOfBirth must be a date in YYYY-MM-DD format"))
		case dob.IsZero():
			// 0001-01-01 is indistinguishable from an absent date
			errs = multierror.Append(errs, errors.New("dateOfBirth must be a valid date"))
		}
		c.DateOfBirth = dob
	}

	if err := appErrors.NewValidationError(errs); err != nil {
		return nil, err
	}
	return c, nil
}

// customerResponse repeats the id as "_id" so clients that read the
// document store's native field name can send it back on update.
type customerResponse struct {
	model.Customer
	LegacyID string `json:"_id"`
}

func toResponse(c *model.Customer) customerResponse {
	return customerResponse{Customer: *c, LegacyID: c.ID}
}

func toResponses(customers []model.Customer) []customerResponse {
	out := make([]customerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, toResponse(&customers[i]))
	}
	return out
}

func decodePayload(w http.ResponseWriter, r *http.Request) (*CustomerPayload, error) {
	var payload CustomerPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, appErrors.Invalid("invalid request body: %v", err)
	}
	return &payload, nil
}

// ListCustomers returns every customer sorted by name
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.ListCustomers(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(customers))
}

// GetCustomer returns a single customer by ID
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	customer, err := h.Service.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(customer))
}

// CreateCustomer handles creating a new customer
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	customer, err := payload.Validate(false)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	// ids are store-assigned
	customer.ID = ""

	created, err := h.Service.CreateCustomer(r.Context(), customer)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	h.Logger.Debug("customer created", "id", created.ID)
	writeJSON(w, http.StatusCreated, toResponse(created))
}

// UpdateCustomer replaces the customer named by the id in the body.
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	customer, err := payload.Validate(true)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.UpdateCustomer(r.Context(), customer)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	h.Logger.Debug("customer updated", "id", updated.ID)
	writeJSON(w, http.StatusOK, toResponse(updated))
}

// DeleteCustomer removes a customer and echoes it back
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := h.Service.DeleteCustomer(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	h.Logger.Debug("customer deleted", "id", removed.ID)
	writeJSON(w, http.StatusOK, toResponse(removed))
}
