package handlers

import (
	"net/http"
	"slices"

	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/store"
)

func (r *Router) listCustomers(w http.ResponseWriter, req *http.Request) {
	customers, err := r.store.ListCustomers(req.Context(), store.CustomerFilter{
		IncludeHidden:  queryBool(req, "include_hidden"),
		IncludeDeleted: queryBool(req, "include_deleted"),
	})
	if err != nil {
		r.respondStoreError(w, err, "customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (r *Router) getCustomer(w http.ResponseWriter, req *http.Request) {
	c, err := r.store.GetCustomer(req.Context(), pathID(req, "id"), queryBool(req, "include_deleted"))
	if err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (r *Router) createCustomer(w http.ResponseWriter, req *http.Request) {
	var c models.Customer
	if err := r.decode(req, &c, false); err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	c.ID = 0
	if err := r.store.AddCustomer(req.Context(), &c); err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	r.notify("customer.created", c.ID)
	respondJSON(w, http.StatusCreated, c)
}

func (r *Router) updateCustomer(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	c, err := r.store.GetCustomer(req.Context(), id, false)
	if err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	if err := r.decode(req, c, false); err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	c.ID = id
	updated, err := r.store.UpdateCustomer(req.Context(), c)
	if err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	r.notify("customer.updated", id)
	respondJSON(w, http.StatusOK, updated)
}

func (r *Router) deleteCustomer(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	if err := r.store.SoftDeleteCustomer(req.Context(), id); err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	r.notify("customer.deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) restoreCustomer(w http.ResponseWriter, req *http.Request) {
	c, err := r.store.RestoreCustomer(req.Context(), pathID(req, "id"))
	if err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	r.notify("customer.restored", c.ID)
	respondJSON(w, http.StatusOK, c)
}

func (r *Router) toggleHiddenCustomer(w http.ResponseWriter, req *http.Request) {
	c, err := r.store.ToggleHiddenCustomer(req.Context(), pathID(req, "id"))
	if err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	r.notify("customer.hidden", c.ID)
	respondJSON(w, http.StatusOK, c)
}

func (r *Router) setCustomerStatus(w http.ResponseWriter, req *http.Request) {
	var body statusRequest
	if err := r.decode(req, &body, false); err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	if !slices.Contains(models.CustomerStatuses, body.Status) {
		respondError(w, http.StatusBadRequest, "Unknown customer status")
		return
	}
	c, err := r.store.SetCustomerStatus(req.Context(), pathID(req, "id"), body.Status)
	if err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	r.notify("customer.status", c.ID)
	respondJSON(w, http.StatusOK, c)
}
