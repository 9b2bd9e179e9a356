package handlers

import (
	"net/http"
	"strconv"

	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/store"
)

// listTasks returns open tasks, due first. ?all=true includes done tasks,
// ?auto=true limits to reconciler-owned tasks.
func (r *Router) listTasks(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := store.TaskFilter{
		IncludeDone: queryBool(req, "all"),
		KindPrefix:  q.Get("kind"),
		Limit:       limit,
	}
	if queryBool(req, "auto") {
		filter.Origin = models.OriginAuto
	}
	list, err := r.store.ListTasks(req.Context(), filter)
	if err != nil {
		r.respondStoreError(w, err, "tasks")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

type taskRequest struct {
	Title      string  `json:"title" validate:"required"`
	DueAt      *string `json:"due_at"`
	Note       string  `json:"note"`
	EntityType string  `json:"entity_type" validate:"omitempty,oneof=PROPERTY CUSTOMER VIEWING"`
	EntityID   *uint   `json:"entity_id"`
}

// createTask adds a manual task.
func (r *Router) createTask(w http.ResponseWriter, req *http.Request) {
	var body taskRequest
	if err := r.decode(req, &body, false); err != nil {
		r.respondStoreError(w, err, "Task")
		return
	}
	t := models.Task{Title: body.Title, DueAt: body.DueAt, Note: body.Note}
	t.SetEntity(models.DecodeEntityRef(body.EntityType, body.EntityID))
	if err := r.store.AddTask(req.Context(), &t); err != nil {
		r.respondStoreError(w, err, "Task")
		return
	}
	r.notify("task.created", t.ID)
	respondJSON(w, http.StatusCreated, t)
}

func (r *Router) completeTask(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	if err := r.store.SetTaskStatus(req.Context(), id, models.TaskDone); err != nil {
		r.respondStoreError(w, err, "Task")
		return
	}
	t, err := r.store.GetTask(req.Context(), id)
	if err != nil {
		r.respondStoreError(w, err, "Task")
		return
	}
	r.notify("task.done", id)
	respondJSON(w, http.StatusOK, t)
}

func (r *Router) deleteTask(w http.ResponseWriter, req *http.Request) {
	id := pathID(req, "id")
	if err := r.store.DeleteTask(req.Context(), id); err != nil {
		r.respondStoreError(w, err, "Task")
		return
	}
	r.notify("task.deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// reconcileTasks runs a reconciliation pass and returns the open tasks.
// Partial write failures are reported alongside the result.
func (r *Router) reconcileTasks(w http.ResponseWriter, req *http.Request) {
	if r.reconciler == nil {
		respondError(w, http.StatusServiceUnavailable, "Reconciler not configured")
		return
	}
	open, recErr := r.reconciler.Reconcile(req.Context())
	list, err := r.store.ListTasks(req.Context(), store.TaskFilter{})
	if err != nil {
		r.respondStoreError(w, err, "tasks")
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	resp := map[string]interface{}{
		"open_auto_tasks": open,
		"tasks":           list,
	}
	if recErr != nil {
		resp["error"] = recErr.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}
