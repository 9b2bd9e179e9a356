package handlers

import (
	"net/http"
	"slices"

	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/store"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// listProperties returns listings, optionally filtered by ?tab=.
func (r *Router) listProperties(w http.ResponseWriter, req *http.Request) {
	props, err := r.store.ListProperties(req.Context(), store.PropertyFilter{
		Tag:            req.URL.Query().Get("tab"),
		IncludeHidden:  queryBool(req, "include_hidden"),
		IncludeDeleted: queryBool(req, "include_deleted"),
	})
	if err != nil {
		r.respondStoreError(w, err, "properties")
		return
	}
	respondJSON(w, http.StatusOK, props)
}

func (r *Router) getProperty(w http.ResponseWriter, req *http.Request) {
	p, err := r.store.GetProperty(req.Context(), pathID(req, "id"), queryBool(req, "include_deleted"))
	if err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// createProperty stores a new listing. Apartment listings get their unit
// details filled from the layout master when left blank.
func (r *Router) createProperty(w http.ResponseWriter, req *http.Request) {
	var p models.Property
	if err := r.decode(req, &p, false); err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	p.ID = 0
	if r.layouts != nil {
		if err := r.layouts.FillProperty(&p); err != nil {
			r.log.Warn("layout lookup failed", "tab", p.Tag, "error", err)
		}
	}
	if err := r.store.AddProperty(req.Context(), &p); err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	r.afterChange(req.Context(), "property.created", p.ID)
	respondJSON(w, http.StatusCreated, p)
}

// updateProperty applies a partial JSON document over the stored listing.
func (r *Router) updateProperty(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	p, err := r.store.GetProperty(req.Context(), id, false)
	if err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	if err := r.decode(req, p, false); err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	p.ID = id
	updated, err := r.store.UpdateProperty(req.Context(), p)
	if err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	r.afterChange(req.Context(), "property.updated", id)
	respondJSON(w, http.StatusOK, updated)
}

func (r *Router) deleteProperty(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	if err := r.store.SoftDeleteProperty(req.Context(), id); err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	r.afterChange(req.Context(), "property.deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) restoreProperty(w http.ResponseWriter, req *http.Request) {
	p, err := r.store.RestoreProperty(req.Context(), pathID(req, "id"))
	if err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	r.afterChange(req.Context(), "property.restored", p.ID)
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) toggleHiddenProperty(w http.ResponseWriter, req *http.Request) {
	p, err := r.store.ToggleHiddenProperty(req.Context(), pathID(req, "id"))
	if err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	r.afterChange(req.Context(), "property.hidden", p.ID)
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) setPropertyStatus(w http.ResponseWriter, req *http.Request) {
	var body statusRequest
	if err := r.decode(req, &body, false); err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	if !slices.Contains(models.PropertyStatuses, body.Status) {
		respondError(w, http.StatusBadRequest, "Unknown property status")
		return
	}
	p, err := r.store.SetPropertyStatus(req.Context(), pathID(req, "id"), body.Status)
	if err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	r.afterChange(req.Context(), "property.status", p.ID)
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) listPhotos(w http.ResponseWriter, req *http.Request) {
	photos, err := r.store.ListPhotos(req.Context(), pathID(req, "id"))
	if err != nil {
		r.respondStoreError(w, err, "photos")
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

type photoRequest struct {
	FilePath string `json:"file_path" validate:"required"`
	Tag      string `json:"tag"`
}

func (r *Router) addPhoto(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	var body photoRequest
	if err := r.decode(req, &body, false); err != nil {
		r.respondStoreError(w, err, "Photo")
		return
	}
	if _, err := r.store.GetProperty(req.Context(), id, false); err != nil {
		r.respondStoreError(w, err, "Property")
		return
	}
	photo := models.Photo{PropertyID: id, FilePath: body.FilePath, Tag: body.Tag}
	if err := r.store.AddPhoto(req.Context(), &photo); err != nil {
		r.respondStoreError(w, err, "Photo")
		return
	}
	r.afterChange(req.Context(), "photo.added", photo.ID)
	respondJSON(w, http.StatusCreated, photo)
}

func (r *Router) deletePhoto(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	if err := r.store.DeletePhoto(req.Context(), id); err != nil {
		r.respondStoreError(w, err, "Photo")
		return
	}
	r.afterChange(req.Context(), "photo.deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
