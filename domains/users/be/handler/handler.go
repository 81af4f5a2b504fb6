package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/tournament-admin/domains/users/be/service"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/httpapi"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

type operation string

const (
	listOperation       operation = "usersList"
	getOperation        operation = "usersGet"
	getByUUIDOperation  operation = "usersGetByUuid"
	createOperation     operation = "usersCreate"
	updateOperation     operation = "usersUpdate"
	statusOperation     operation = "usersChangeStatus"
	deleteOperation     operation = "usersDelete"
	restoreOperation    operation = "usersRestore"
	purgeOperation      operation = "usersPermanentDelete"
	bulkDeleteOperation operation = "usersBulkDelete"
)

const (
	resourceName           = "users"
	resourceLocationPrefix = "/api/v1/users/"
)

// Handler wires the users service to the HTTP contract.
type Handler struct {
	svc     service.Service
	respond httpapi.Responder
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("users service is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &Handler{svc: svc, respond: httpapi.Responder{Resource: resourceName, Logger: logger}}
}

// Routes returns the /users router. Permanent deletes require the ADMIN role.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/uuid/{uuid}", h.GetByUUID)
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

type userBody struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	WhatsappNumber *string `json:"whatsapp_number"`
	CountryCode    *string `json:"country_code"`
	Password       *string `json:"password"`
	UPIID          *string `json:"upi_id"`
	ProfilePicture *string `json:"profile_picture"`
	Avatar         *string `json:"avatar"`
	Role           *string `json:"role"`
	Status         *string `json:"status"`
	IsVerified     *bool   `json:"is_verified"`
	IsActive       *bool   `json:"is_active"`
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

	user, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, string(getOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Data: user})
}

func (h *Handler) GetByUUID(w http.ResponseWriter, r *http.Request) {
	externalID, err := httpapi.PathUUID(r, "uuid")
	if err != nil {
		h.respond.Fail(w, r, string(getByUUIDOperation), err)
		return
	}

	user, err := h.svc.GetByExternalID(r.Context(), externalID)
	if err != nil {
		h.respond.Fail(w, r, string(getByUUIDOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Data: user})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body userBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(createOperation), err)
		return
	}

	input := service.CreateInput{
		FirstName: body.FirstName, LastName: body.LastName, WhatsappNumber: body.WhatsappNumber,
		CountryCode: body.CountryCode, Password: body.Password, UPIID: body.UPIID,
		ProfilePicture: body.ProfilePicture, Avatar: body.Avatar, Role: body.Role, Status: body.Status,
		IsVerified: body.IsVerified, IsActive: body.IsActive,
	}
	if body.Email != nil {
		input.Email = *body.Email
	}

	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.respond.Fail(w, r, string(createOperation), err)
		return
	}

	w.Header().Set("Location", resourceLocationPrefix+strconv.FormatInt(created.ID, 10))
	httpapi.WriteJSON(w, http.StatusCreated, httpapi.Envelope{Message: "User created successfully", Data: created})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	var body userBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, service.UpdateInput{
		FirstName: body.FirstName, LastName: body.LastName, Email: body.Email,
		WhatsappNumber: body.WhatsappNumber, CountryCode: body.CountryCode, Password: body.Password,
		UPIID: body.UPIID, ProfilePicture: body.ProfilePicture, Avatar: body.Avatar,
		Role: body.Role, Status: body.Status, IsVerified: body.IsVerified, IsActive: body.IsActive,
	})
	if err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: "User updated successfully", Data: updated})
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

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: "User status updated successfully", Data: updated})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, deleteOperation, h.svc.SoftDelete, "User deleted successfully")
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, restoreOperation, h.svc.Restore, "User restored successfully")
}

func (h *Handler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, purgeOperation, h.svc.Purge, "User permanently deleted")
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

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: strconv.Itoa(len(ids)) + " users deleted successfully"})
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
