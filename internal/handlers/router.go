package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xelth-com/brokerledger/internal/buildinfo"
	"github.com/xelth-com/brokerledger/internal/logger"
	"github.com/xelth-com/brokerledger/internal/middleware"
	"github.com/xelth-com/brokerledger/internal/store"
	"github.com/xelth-com/brokerledger/internal/tasks"
	"github.com/xelth-com/brokerledger/internal/unitmaster"
	"github.com/xelth-com/brokerledger/internal/websocket"
)

// Deps are the collaborators the API is built from. Hub may be nil.
type Deps struct {
	Store      *store.Store
	Layouts    *unitmaster.Registry
	Reconciler *tasks.Reconciler
	Hub        *websocket.Hub
	Log        *logger.Logger
	JWTSecret  string
}

// Router wraps the mux router and the ledger services
type Router struct {
	*mux.Router
	store      *store.Store
	layouts    *unitmaster.Registry
	reconciler *tasks.Reconciler
	hub        *websocket.Hub
	log        *logger.Logger
	validate   *validator.Validate
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(d Deps) *Router {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	r := &Router{
		Router:     mux.NewRouter(),
		store:      d.Store,
		layouts:    d.Layouts,
		reconciler: d.Reconciler,
		hub:        d.Hub,
		log:        d.Log,
		validate:   validator.New(),
	}
	r.Use(middleware.RequestID, middleware.Logging(d.Log))

	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if r.hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(r.hub, w, req)
		})
	}

	api := r.NewRoute().Subrouter()
	api.Use(middleware.Auth(d.JWTSecret))

	api.HandleFunc("/api/status", r.getStatus).Methods("GET")

	api.HandleFunc("/properties", r.listProperties).Methods("GET")
	api.HandleFunc("/properties", r.createProperty).Methods("POST")
	api.HandleFunc("/properties/{id:[0-9]+}", r.getProperty).Methods("GET")
	api.HandleFunc("/properties/{id:[0-9]+}", r.updateProperty).Methods("PATCH")
	api.HandleFunc("/properties/{id:[0-9]+}", r.deleteProperty).Methods("DELETE")
	api.HandleFunc("/properties/{id:[0-9]+}/restore", r.restoreProperty).Methods("POST")
	api.HandleFunc("/properties/{id:[0-9]+}/hidden", r.toggleHiddenProperty).Methods("POST")
	api.HandleFunc("/properties/{id:[0-9]+}/status", r.setPropertyStatus).Methods("POST")
	api.HandleFunc("/properties/{id:[0-9]+}/photos", r.listPhotos).Methods("GET")
	api.HandleFunc("/properties/{id:[0-9]+}/photos", r.addPhoto).Methods("POST")
	api.HandleFunc("/photos/{id:[0-9]+}", r.deletePhoto).Methods("DELETE")

	api.HandleFunc("/customers", r.listCustomers).Methods("GET")
	api.HandleFunc("/customers", r.createCustomer).Methods("POST")
	api.HandleFunc("/customers/{id:[0-9]+}", r.getCustomer).Methods("GET")
	api.HandleFunc("/customers/{id:[0-9]+}", r.updateCustomer).Methods("PATCH")
	api.HandleFunc("/customers/{id:[0-9]+}", r.deleteCustomer).Methods("DELETE")
	api.HandleFunc("/customers/{id:[0-9]+}/restore", r.restoreCustomer).Methods("POST")
	api.HandleFunc("/customers/{id:[0-9]+}/hidden", r.toggleHiddenCustomer).Methods("POST")
	api.HandleFunc("/customers/{id:[0-9]+}/status", r.setCustomerStatus).Methods("POST")

	api.HandleFunc("/viewings", r.listViewings).Methods("GET")
	api.HandleFunc("/viewings", r.createViewing).Methods("POST")
	api.HandleFunc("/viewings/{id:[0-9]+}/status", r.setViewingStatus).Methods("POST")
	api.HandleFunc("/viewings/{id:[0-9]+}/memo", r.setViewingMemo).Methods("POST")
	api.HandleFunc("/viewings/{id:[0-9]+}", r.deleteViewing).Methods("DELETE")

	api.HandleFunc("/tasks", r.listTasks).Methods("GET")
	api.HandleFunc("/tasks", r.createTask).Methods("POST")
	api.HandleFunc("/tasks/reconcile", r.reconcileTasks).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}/done", r.completeTask).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}", r.deleteTask).Methods("DELETE")

	api.HandleFunc("/matching/{customer_id:[0-9]+}", r.matchCustomer).Methods("GET")
	api.HandleFunc("/proposal/message/{customer_id:[0-9]+}", r.proposalMessage).Methods("POST")

	api.HandleFunc("/layouts", r.listLayouts).Methods("GET")
	api.HandleFunc("/layouts/{tag}/dongs", r.layoutDongs).Methods("GET")
	api.HandleFunc("/layouts/{tag}/dongs/{dong}/floors", r.layoutFloors).Methods("GET")
	api.HandleFunc("/layouts/{tag}/dongs/{dong}/floors/{floor:[0-9]+}/hos", r.layoutHos).Methods("GET")
	api.HandleFunc("/layouts/{tag}/dongs/{dong}/floors/{floor:[0-9]+}/hos/{ho}", r.layoutUnit).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus returns build metadata
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "running",
		"build":  buildinfo.Summary(),
	})
}

// afterChange runs a best-effort reconciliation after a property, photo or
// viewing mutation. Failures are logged only.
func (r *Router) afterChange(ctx context.Context, event string, id uint) {
	if r.reconciler != nil {
		if _, err := r.reconciler.Reconcile(ctx); err != nil {
			r.log.Warn("reconcile after change failed", "event", event, "id", id, "error", err)
		}
	}
	r.notify(event, id)
}

func (r *Router) notify(event string, id uint) {
	if r.hub == nil {
		return
	}
	r.hub.Broadcast(websocket.EventLedgerChanged, map[string]interface{}{
		"change": event,
		"id":     id,
	})
}

// pathID reads a numeric route variable.
func pathID(req *http.Request, name string) uint {
	id, _ := strconv.ParseUint(mux.Vars(req)[name], 10, 64)
	return uint(id)
}

func queryBool(req *http.Request, name string) bool {
	v, _ := strconv.ParseBool(req.URL.Query().Get(name))
	return v
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted when allowEmpty is set.
func (r *Router) decode(req *http.Request, dst interface{}, allowEmpty bool) error {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return errBadRequest("Invalid payload")
		}
	}
	if err := r.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return errBadRequest(err.Error())
	}
	return nil
}

type badRequest string

func (e badRequest) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequest(msg) }

// respondStoreError maps store errors onto HTTP statuses.
func (r *Router) respondStoreError(w http.ResponseWriter, err error, what string) {
	var br badRequest
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, what+" not found")
	case errors.As(err, &br):
		respondError(w, http.StatusBadRequest, br.Error())
	default:
		r.log.Error("request failed", "what", what, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to process "+what)
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
