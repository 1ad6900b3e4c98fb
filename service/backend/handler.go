package backend

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/otellib"
	"github.com/QuangTung97/marketing/repository"
	"github.com/QuangTung97/marketing/service/marketing"
)

type handlerOptions struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	jwtSecret []byte
}

// HandlerOption ...
type HandlerOption func(opts *handlerOptions)

// WithHandlerLogger ...
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(opts *handlerOptions) {
		opts.logger = logger
	}
}

// WithHandlerTracer ...
func WithHandlerTracer(tracer trace.Tracer) HandlerOption {
	return func(opts *handlerOptions) {
		opts.tracer = tracer
	}
}

// WithJWTSecret enables bearer verification, tracking endpoints stay public
func WithJWTSecret(secret string) HandlerOption {
	return func(opts *handlerOptions) {
		if secret != "" {
			opts.jwtSecret = []byte(secret)
		}
	}
}

// Handler serves the marketing HTTP surface
type Handler struct {
	service *Service
}

// NewHandler returns the router of every endpoint under marketing.BasePath
func NewHandler(service *Service, options ...HandlerOption) http.Handler {
	opts := handlerOptions{
		logger: zap.NewNop(),
		tracer: otel.Tracer("marketing/backend"),
	}
	for _, fn := range options {
		fn(&opts)
	}

	h := &Handler{service: service}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(TraceMiddleware(opts.tracer))
	r.Use(otellib.SetLoggerMiddleware(opts.logger))

	r.Route(marketing.BasePath, func(r chi.Router) {
		r.Post("/track/conversion/{code}", h.trackConversion)
		r.Post("/track/unsubscribe/{code}", h.trackUnsubscribe)

		r.Group(func(r chi.Router) {
			if opts.jwtSecret != nil {
				r.Use(BearerAuth(opts.jwtSecret))
			}
			h.routes(r)
		})
	})
	return r
}

func (h *Handler) routes(r chi.Router) {
	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", h.createCampaign)
		r.Get("/", h.listCampaigns)
		r.Get("/search", h.searchCampaigns)
		r.Get("/over-budget", h.overBudgetCampaigns)
		r.Get("/status/{status}", h.campaignsByStatus)
		r.Get("/type/{type}", h.campaignsByType)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getCampaign)
			r.Put("/", h.updateCampaign)
			r.Delete("/", h.deleteCampaign)

			r.Post("/activate", h.transition(model.CampaignActionActivate))
			r.Post("/pause", h.transition(model.CampaignActionPause))
			r.Post("/complete", h.transition(model.CampaignActionComplete))
			r.Post("/cancel", h.transition(model.CampaignActionCancel))
			r.Post("/archive", h.transition(model.CampaignActionArchive))
			r.Post("/schedule", h.scheduleCampaign)

			r.Get("/executions", h.executionsByCampaign)
			r.Get("/performance", h.campaignPerformance)
			r.Get("/roi", h.campaignROI)
			r.Get("/metrics", h.campaignMetrics)
			r.Get("/dashboard", h.campaignDashboard)
			r.Get("/budget", h.campaignBudget)
			r.Put("/budget", h.updateCampaignBudget)
		})
	})

	r.Route("/executions", func(r chi.Router) {
		r.Post("/", h.createExecution)
		r.Get("/status/{status}", h.executionsByStatus)
		r.Get("/{id}", h.getExecution)
		r.Post("/{id}/send", h.sendExecution)
	})

	r.Get("/performance/overall", h.overallPerformance)
	r.Get("/performance/campaign-types", h.campaignTypePerformance)
	r.Get("/dashboard", h.dashboard)

	r.Post("/system/"+OperationProcessScheduled, h.processScheduled)
	r.Post("/system/"+OperationRetryFailed, h.retryFailed)
	r.Post("/system/"+OperationOptimize, h.optimize)
	r.Get("/system/health", h.systemHealth)
}

// respond writes data with status, or the error envelope of err
func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, status, data)
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var c model.Campaign
	if err := decodeBody(r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.CreateCampaign(r.Context(), c)
	respond(w, r, http.StatusCreated, result, err)
}

func sortOrder(r *http.Request) (repository.SortOrder, error) {
	q := r.URL.Query()
	field := repository.SortField(q.Get("sortBy"))
	if field != "" {
		if _, ok := repository.CampaignSortFields[field]; !ok {
			return repository.SortOrder{}, validationError("unknown sortBy %q", field)
		}
	}

	dir := strings.ToLower(q.Get("sortDir"))
	switch marketing.SortDirection(dir) {
	case "", marketing.SortAsc, marketing.SortDesc:
	default:
		return repository.SortOrder{}, validationError("unknown sortDir %q", dir)
	}
	return repository.SortOrder{
		Field: field,
		Desc:  marketing.SortDirection(dir) == marketing.SortDesc,
	}, nil
}

func (h *Handler) listCampaignsBy(w http.ResponseWriter, r *http.Request, filter repository.CampaignFilter) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := sortOrder(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.ListCampaigns(r.Context(), filter, order, page)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	h.listCampaignsBy(w, r, repository.CampaignFilter{})
}

func (h *Handler) searchCampaigns(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, r, validationError("query is required"))
		return
	}
	h.listCampaignsBy(w, r, repository.CampaignFilter{Query: query})
}

func (h *Handler) campaignsByStatus(w http.ResponseWriter, r *http.Request) {
	raw, err := stringParam(r, "status")
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := model.ParseCampaignStatus(raw)
	if err != nil {
		writeError(w, r, validationError("%v", err))
		return
	}
	h.listCampaignsBy(w, r, repository.CampaignFilter{Status: status})
}

func (h *Handler) campaignsByType(w http.ResponseWriter, r *http.Request) {
	raw, err := stringParam(r, "type")
	if err != nil {
		writeError(w, r, err)
		return
	}
	campaignType, err := model.ParseCampaignType(raw)
	if err != nil {
		writeError(w, r, validationError("%v", err))
		return
	}
	h.listCampaignsBy(w, r, repository.CampaignFilter{Type: campaignType})
}

func (h *Handler) overBudgetCampaigns(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.ListOverBudgetCampaigns(r.Context(), page)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.GetCampaign(r.Context(), id)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) updateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var c model.Campaign
	if err := decodeBody(r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.UpdateCampaign(r.Context(), id, c)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.DeleteCampaign(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transition(action model.CampaignAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		result, err := h.service.TransitionCampaign(r.Context(), id, action)
		respond(w, r, http.StatusOK, result, err)
	}
}

func (h *Handler) scheduleCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	scheduledTime, err := timeQuery(r.URL.Query(), "scheduledTime")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if scheduledTime == nil {
		writeError(w, r, validationError("scheduledTime is required"))
		return
	}
	result, err := h.service.ScheduleCampaign(r.Context(), id, *scheduledTime)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) createExecution(w http.ResponseWriter, r *http.Request) {
	var e model.Execution
	if err := decodeBody(r, &e); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.CreateExecution(r.Context(), e)
	respond(w, r, http.StatusCreated, result, err)
}

func (h *Handler) executionsByCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.ListExecutionsByCampaign(r.Context(), id, page)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) executionsByStatus(w http.ResponseWriter, r *http.Request) {
	raw, err := stringParam(r, "status")
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := model.ParseExecutionStatus(raw)
	if err != nil {
		writeError(w, r, validationError("%v", err))
		return
	}
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.ListExecutionsByStatus(r.Context(), status, page)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) getExecution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.GetExecution(r.Context(), id)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) sendExecution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.SendExecution(r.Context(), id)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) campaignPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	start, err := timeQuery(q, "startDate")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := timeQuery(q, "endDate")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.GetCampaignPerformance(r.Context(), id, start, end)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) overallPerformance(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetOverallPerformance(r.Context())
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) campaignTypePerformance(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetCampaignTypePerformance(r.Context())
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) campaignROI(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.GetCampaignROI(r.Context(), id)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) campaignMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.GetCampaignMetrics(r.Context(), id, page)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetDashboard(r.Context())
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) campaignDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.GetCampaignDashboard(r.Context(), id)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) campaignBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.GetCampaignBudget(r.Context(), id)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) updateCampaignBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var update model.BudgetUpdate
	if err := decodeBody(r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.UpdateCampaignBudget(r.Context(), id, update)
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) processScheduled(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ProcessScheduled(r.Context())
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) retryFailed(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RetryFailed(r.Context())
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) optimize(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.OptimizeCampaigns(r.Context())
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) systemHealth(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetSystemHealth(r.Context())
	respond(w, r, http.StatusOK, result, err)
}

func (h *Handler) trackConversion(w http.ResponseWriter, r *http.Request) {
	code, err := stringParam(r, "code")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	value, err := decimalQuery(q, "value")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.TrackConversion(r.Context(), code, q.Get("event"), value); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) trackUnsubscribe(w http.ResponseWriter, r *http.Request) {
	code, err := stringParam(r, "code")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.TrackUnsubscribe(r.Context(), code, r.URL.Query().Get("reason")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
