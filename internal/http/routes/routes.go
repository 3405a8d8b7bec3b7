package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	appmw "github.com/briangreenhill/prplan/internal/http/middleware"
	"github.com/briangreenhill/prplan/internal/jobs"
	"github.com/briangreenhill/prplan/internal/workout"
)

const maxPlanBytes = 1 << 20

// Enqueuer is satisfied by *asynq.Client
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskLookup is satisfied by *asynq.Inspector
type TaskLookup interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

type Server struct {
	Router *chi.Mux
	Queue  Enqueuer
	Tasks  TaskLookup
}

type ServerOptions struct {
	Logger   zerolog.Logger
	Queue    Enqueuer
	Tasks    TaskLookup
	APIToken string
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Queue: opts.Queue, Tasks: opts.Tasks}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireToken(opts.APIToken))
		r.Post("/plans", s.handleCreatePlan)
		r.Get("/plans/{runID}", s.handleGetPlan)
	})

	return s
}

type createPlanResponse struct {
	RunID    string `json:"run_id"`
	Workouts int    `json:"workouts"`
}

// handleCreatePlan validates a plan and queues it for publishing
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPlanBytes))
	if err != nil {
		http.Error(w, "could not read plan", http.StatusRequestEntityTooLarge)
		return
	}

	plan, err := workout.ParsePlan(string(body))
	if err != nil {
		log.Info().Err(err).Msg("rejected plan")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(plan) == 0 {
		http.Error(w, "plan has no workouts", http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	task, err := jobs.NewPushTask(runID, plan)
	if err != nil {
		log.Error().Err(err).Msg("build push task")
		http.Error(w, "could not queue plan", http.StatusInternalServerError)
		return
	}

	info, err := s.Queue.Enqueue(task)
	if err != nil {
		log.Error().Err(err).Msg("[asynq] enqueue failed")
		http.Error(w, "could not queue plan", http.StatusServiceUnavailable)
		return
	}
	log.Info().Str("run_id", runID).Str("task_id", info.ID).Str("queue", info.Queue).Int("workouts", len(plan)).Msg("[asynq] enqueued push")

	writeJSON(w, http.StatusAccepted, createPlanResponse{RunID: runID, Workouts: len(plan)})
}

type planStatusResponse struct {
	RunID   string           `json:"run_id"`
	State   string           `json:"state"`
	LastErr string           `json:"last_error,omitempty"`
	Result  *json.RawMessage `json:"result,omitempty"`
}

// handleGetPlan reports the state of a queued push and its outcome once finished
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if _, err := uuid.Parse(runID); err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	info, err := s.Tasks.GetTaskInfo(jobs.QueuePush, runID)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("run_id", runID).Msg("[asynq] task lookup failed")
		http.Error(w, "could not look up run", http.StatusInternalServerError)
		return
	}

	resp := planStatusResponse{RunID: runID, State: info.State.String(), LastErr: info.LastErr}
	if len(info.Result) > 0 {
		raw := json.RawMessage(info.Result)
		resp.Result = &raw
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
