package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// layoutTag resolves the {tag} variable, answering 404 for tags without a
// unit master.
func (r *Router) layoutTag(w http.ResponseWriter, req *http.Request) (string, bool) {
	tag := mux.Vars(req)["tag"]
	if r.layouts == nil || !r.layouts.HasMaster(tag) {
		respondError(w, http.StatusNotFound, "No layout for "+tag)
		return "", false
	}
	return tag, true
}

func (r *Router) layoutFailed(w http.ResponseWriter, err error) {
	r.log.Error("layout lookup failed", "error", err)
	respondError(w, http.StatusInternalServerError, "Failed to read layout")
}

func (r *Router) listLayouts(w http.ResponseWriter, req *http.Request) {
	tags := []string{}
	if r.layouts != nil {
		tags = append(tags, r.layouts.Tags()...)
	}
	respondJSON(w, http.StatusOK, tags)
}

func (r *Router) layoutDongs(w http.ResponseWriter, req *http.Request) {
	tag, ok := r.layoutTag(w, req)
	if !ok {
		return
	}
	dongs, err := r.layouts.Dongs(tag)
	if err != nil {
		r.layoutFailed(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dongs)
}

func (r *Router) layoutFloors(w http.ResponseWriter, req *http.Request) {
	tag, ok := r.layoutTag(w, req)
	if !ok {
		return
	}
	floors, err := r.layouts.Floors(tag, mux.Vars(req)["dong"])
	if err != nil {
		r.layoutFailed(w, err)
		return
	}
	respondJSON(w, http.StatusOK, floors)
}

func (r *Router) layoutHos(w http.ResponseWriter, req *http.Request) {
	tag, ok := r.layoutTag(w, req)
	if !ok {
		return
	}
	vars := mux.Vars(req)
	floor, _ := strconv.Atoi(vars["floor"])
	hos, err := r.layouts.Hos(tag, vars["dong"], floor)
	if err != nil {
		r.layoutFailed(w, err)
		return
	}
	respondJSON(w, http.StatusOK, hos)
}

// layoutUnit returns one unit with the building's total floor count.
func (r *Router) layoutUnit(w http.ResponseWriter, req *http.Request) {
	tag, ok := r.layoutTag(w, req)
	if !ok {
		return
	}
	vars := mux.Vars(req)
	floor, _ := strconv.Atoi(vars["floor"])
	unit, found, err := r.layouts.UnitInfo(tag, vars["dong"], floor, vars["ho"])
	if err != nil {
		r.layoutFailed(w, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Unit not found")
		return
	}
	total, err := r.layouts.TotalFloor(tag, vars["dong"])
	if err != nil {
		r.layoutFailed(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"unit":        unit,
		"total_floor": total,
	})
}
