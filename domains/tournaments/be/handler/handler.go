package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/tournament-admin/domains/tournaments/be/service"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/httpapi"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

type operation string

const (
	listOperation       operation = "tournamentsList"
	getOperation        operation = "tournamentsGet"
	getByUUIDOperation  operation = "tournamentsGetByUuid"
	getBySlugOperation  operation = "tournamentsGetBySlug"
	createOperation     operation = "tournamentsCreate"
	updateOperation     operation = "tournamentsUpdate"
	statusOperation     operation = "tournamentsChangeStatus"
	deleteOperation     operation = "tournamentsDelete"
	restoreOperation    operation = "tournamentsRestore"
	purgeOperation      operation = "tournamentsPermanentDelete"
	bulkDeleteOperation operation = "tournamentsBulkDelete"
)

const (
	resourceName           = "tournaments"
	resourceLocationPrefix = "/api/v1/tournaments/"
)

// Handler wires the tournaments service to the HTTP contract.
type Handler struct {
	svc     service.Service
	respond httpapi.Responder
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tournaments service is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &Handler{svc: svc, respond: httpapi.Responder{Resource: resourceName, Logger: logger}}
}

// Routes returns the /tournaments router. Permanent deletes require the ADMIN role.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/uuid/{uuid}", h.GetByUUID)
	r.Get("/slug/{slug}", h.GetBySlug)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Patch("/{id}/status", h.ChangeStatus)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/restore", h.Restore)

	r.Group(func(admin chi.Router) {
		admin.Use(platformauth.RequireRole(platformauth.RoleAdmin))
		admin.Delete("/{id}/permanent", h.PermanentDelete)
		admin.Post("/bulk-delete", h.BulkDelete)
	})
	return r
}

type tournamentBody struct {
	Title                 *string         `json:"title"`
	Tagline               *string         `json:"tagline"`
	Description           *string         `json:"description"`
	Type                  *string         `json:"type"`
	EntryFee              *string         `json:"entry_fee"`
	Prizepool             *string         `json:"prizepool"`
	FirstPrize            *string         `json:"first_prize"`
	SecondPrize           *string         `json:"second_prize"`
	ThirdPrize            *string         `json:"third_prize"`
	MaxParticipants       *int            `json:"max_participants"`
	MinParticipants       *int            `json:"min_participants"`
	MaxTeams              *int            `json:"max_teams"`
	MinTeams              *int            `json:"min_teams"`
	TournamentStartDate   *string         `json:"tournament_start_date"`
	TournamentEndDate     *string         `json:"tournament_end_date"`
	RegistrationStartDate *string         `json:"registration_start_date"`
	RegistrationEndDate   *string         `json:"registration_end_date"`
	Rules                 json.RawMessage `json:"rules"`
	Status                *string         `json:"status"`
	IsActive              *bool           `json:"is_active"`
}

func (b tournamentBody) details() service.Details {
	return service.Details{
		Tagline:               b.Tagline,
		Description:           b.Description,
		Type:                  b.Type,
		EntryFee:              b.EntryFee,
		Prizepool:             b.Prizepool,
		FirstPrize:            b.FirstPrize,
		SecondPrize:           b.SecondPrize,
		ThirdPrize:            b.ThirdPrize,
		MaxParticipants:       b.MaxParticipants,
		MinParticipants:       b.MinParticipants,
		MaxTeams:              b.MaxTeams,
		MinTeams:              b.MinTeams,
		TournamentStartDate:   b.TournamentStartDate,
		TournamentEndDate:     b.TournamentEndDate,
		RegistrationStartDate: b.RegistrationStartDate,
		RegistrationEndDate:   b.RegistrationEndDate,
		Rules:                 b.Rules,
		Status:                b.Status,
		IsActive:              b.IsActive,
	}
}

type statusBody struct {
	Status string `json:"status"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := httpapi.ListQuery(r, service.SortableFields)
	if err != nil {
		h.respond.Fail(w, r, string(listOperation), err)
		return
	}

	page, err := h.svc.List(r.Context(), params)
	if err != nil {
		h.respond.Fail(w, r, string(listOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		h.respond.Fail(w, r, string(getOperation), err)
		return
	}

	tournament, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, string(getOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Data: tournament})
}

func (h *Handler) GetByUUID(w http.ResponseWriter, r *http.Request) {
	externalID, err := httpapi.PathUUID(r, "uuid")
	if err != nil {
		h.respond.Fail(w, r, string(getByUUIDOperation), err)
		return
	}

	tournament, err := h.svc.GetByExternalID(r.Context(), externalID)
	if err != nil {
		h.respond.Fail(w, r, string(getByUUIDOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Data: tournament})
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respond.Fail(w, r, string(getBySlugOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Data: tournament})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body tournamentBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(createOperation), err)
		return
	}

	input := service.CreateInput{Details: body.details()}
	if body.Title != nil {
		input.Title = *body.Title
	}

	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.respond.Fail(w, r, string(createOperation), err)
		return
	}

	w.Header().Set("Location", resourceLocationPrefix+strconv.FormatInt(created.ID, 10))
	httpapi.WriteJSON(w, http.StatusCreated, httpapi.Envelope{Message: "Tournament created successfully", Data: created})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	var body tournamentBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, service.UpdateInput{Title: body.Title, Details: body.details()})
	if err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: "Tournament updated successfully", Data: updated})
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		h.respond.Fail(w, r, string(statusOperation), err)
		return
	}

	var body statusBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(statusOperation), err)
		return
	}
	if body.Status == "" {
		h.respond.Fail(w, r, string(statusOperation), validation.New("status", "status is required"))
		return
	}

	updated, err := h.svc.ChangeStatus(r.Context(), id, body.Status)
	if err != nil {
		h.respond.Fail(w, r, string(statusOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: "Tournament status updated successfully", Data: updated})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, deleteOperation, h.svc.SoftDelete, "Tournament deleted successfully")
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, restoreOperation, h.svc.Restore, "Tournament restored successfully")
}

func (h *Handler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, purgeOperation, h.svc.Purge, "Tournament permanently deleted")
}

func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	ids, err := httpapi.DecodeBulkIDs(r)
	if err != nil {
		h.respond.Fail(w, r, string(bulkDeleteOperation), err)
		return
	}

	if err := h.svc.BulkPurge(r.Context(), ids); err != nil {
		h.respond.Fail(w, r, string(bulkDeleteOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: strconv.Itoa(len(ids)) + " tournaments deleted successfully"})
}

func (h *Handler) byID(w http.ResponseWriter, r *http.Request, op operation, action func(ctx context.Context, id int64) error, message string) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		h.respond.Fail(w, r, string(op), err)
		return
	}

	if err := action(r.Context(), id); err != nil {
		h.respond.Fail(w, r, string(op), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: message})
}
