package handlers

import (
	"net/http"
	"strconv"

	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/store"
)

func (r *Router) listViewings(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	propertyID, _ := strconv.ParseUint(q.Get("property_id"), 10, 64)
	customerID, _ := strconv.ParseUint(q.Get("customer_id"), 10, 64)
	viewings, err := r.store.ListViewings(req.Context(), store.ViewingFilter{
		PropertyID: uint(propertyID),
		CustomerID: uint(customerID),
	})
	if err != nil {
		r.respondStoreError(w, err, "viewings")
		return
	}
	respondJSON(w, http.StatusOK, viewings)
}

func (r *Router) createViewing(w http.ResponseWriter, req *http.Request) {
	var v models.Viewing
	if err := r.decode(req, &v, false); err != nil {
		r.respondStoreError(w, err, "Viewing")
		return
	}
	v.ID = 0
	if _, err := r.store.GetProperty(req.Context(), v.PropertyID, false); err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	if v.CustomerID != nil {
		if _, err := r.store.GetCustomer(req.Context(), *v.CustomerID, false); err != nil {
			r.respondStoreError(w, err, "Customer")
			return
		}
	}
	if err := r.store.AddViewing(req.Context(), &v); err != nil {
		r.respondStoreError(w, err, "Viewing")
		return
	}
	r.afterChange(req.Context(), "viewing.created", v.ID)
	respondJSON(w, http.StatusCreated, v)
}

func (r *Router) setViewingStatus(w http.ResponseWriter, req *http.Request) {
	var body statusRequest
	if err := r.decode(req, &body, false); err != nil {
		r.respondStoreError(w, err, "Viewing")
		return
	}
	if body.Status != models.ViewingScheduled && body.Status != models.ViewingDone {
		respondError(w, http.StatusBadRequest, "Unknown viewing status")
		return
	}
	v, err := r.store.UpdateViewingStatus(req.Context(), pathID(req, "id"), body.Status)
	if err != nil {
		r.respondStoreError(w, err, "Viewing")
		return
	}
	r.afterChange(req.Context(), "viewing.status", v.ID)
	respondJSON(w, http.StatusOK, v)
}

type memoRequest struct {
	Memo string `json:"memo"`
}

func (r *Router) setViewingMemo(w http.ResponseWriter, req *http.Request) {
	var body memoRequest
	if err := r.decode(req, &body, false); err != nil {
		r.respondStoreError(w, err, "Viewing")
		return
	}
	v, err := r.store.UpdateViewingMemo(req.Context(), pathID(req, "id"), body.Memo)
	if err != nil {
		r.respondStoreError(w, err, "Viewing")
		return
	}
	r.afterChange(req.Context(), "viewing.memo", v.ID)
	respondJSON(w, http.StatusOK, v)
}

func (r *Router) deleteViewing(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	if err := r.store.DeleteViewing(req.Context(), id); err != nil {
		r.respondStoreError(w, err, "Viewing")
		return
	}
	r.afterChange(req.Context(), "viewing.deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
