package handlers

import (
	"net/http"
	"strconv"

	"github.com/xelth-com/brokerledger/internal/matching"
	"github.com/xelth-com/brokerledger/internal/metrics"
	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/proposal"
	"github.com/xelth-com/brokerledger/internal/store"
)

// proposalLimit is how many matches a proposal lists when no properties
// are picked explicitly.
const proposalLimit = 10

func (r *Router) rankFor(req *http.Request, c *models.Customer, limit int) ([]matching.Result, error) {
	props, err := r.store.ListProperties(req.Context(), store.PropertyFilter{})
	if err != nil {
		return nil, err
	}
	metrics.MatchCandidates.Observe(float64(len(props)))
	return matching.Match(c, props, limit), nil
}

// matchCustomer ranks visible properties for a customer.
func (r *Router) matchCustomer(w http.ResponseWriter, req *http.Request) {
	c, err := r.store.GetCustomer(req.Context(), pathID(req, "customer_id"), false)
	if err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	results, err := r.rankFor(req, c, limit)
	if err != nil {
		r.respondStoreError(w, err, "matches")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer": c,
		"matches":  results,
	})
}

type proposalRequest struct {
	PropertyIDs  []uint `json:"property_ids"`
	IncludeLinks *bool  `json:"include_links"`
}

// proposalMessage renders the recommendation text for a customer, either
// for the given properties or for the top matches.
func (r *Router) proposalMessage(w http.ResponseWriter, req *http.Request) {
	c, err := r.store.GetCustomer(req.Context(), pathID(req, "customer_id"), false)
	if err != nil {
		r.respondStoreError(w, err, "Customer")
		return
	}
	var body proposalRequest
	if err := r.decode(req, &body, true); err != nil {
		r.respondStoreError(w, err, "proposal")
		return
	}

	var props []models.Property
	if len(body.PropertyIDs) > 0 {
		for _, id := range body.PropertyIDs {
			p, err := r.store.GetProperty(req.Context(), id, false)
			if err != nil {
				r.respondStoreError(w, err, "Property")
				return
			}
			props = append(props, *p)
		}
	} else {
		results, err := r.rankFor(req, c, proposalLimit)
		if err != nil {
			r.respondStoreError(w, err, "matches")
			return
		}
		for _, res := range results {
			props = append(props, *res.Property)
		}
	}

	includeLinks := body.IncludeLinks == nil || *body.IncludeLinks
	ids := make([]uint, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id":  c.ID,
		"property_ids": ids,
		"message":      proposal.BuildMessage(c, props, includeLinks),
	})
}
