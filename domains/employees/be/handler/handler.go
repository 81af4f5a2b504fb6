package handler

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/tournament-admin/domains/employees/be/service"
	platformauth "github.com/zenGate-Global/tournament-admin/platform/go/auth"
	"github.com/zenGate-Global/tournament-admin/platform/go/httpapi"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

type operation string

const (
	listOperation       operation = "employeesList"
	getOperation        operation = "employeesGet"
	getByUUIDOperation  operation = "employeesGetByUuid"
	createOperation     operation = "employeesCreate"
	updateOperation     operation = "employeesUpdate"
	statusOperation     operation = "employeesChangeStatus"
	deleteOperation     operation = "employeesDelete"
	restoreOperation    operation = "employeesRestore"
	purgeOperation      operation = "employeesPermanentDelete"
	bulkDeleteOperation operation = "employeesBulkDelete"
	registerOperation   operation = "employeesRegister"
	loginOperation      operation = "employeesLogin"
	logoutOperation     operation = "employeesLogout"
)

const (
	resourceName           = "employees"
	resourceLocationPrefix = "/api/v1/employees/"
)

// Handler wires the employees and employee auth services to the HTTP contract.
type Handler struct {
	svc     service.Service
	auth    service.AuthService
	respond httpapi.Responder
}

// New constructs a Handler instance.
func New(svc service.Service, auth service.AuthService, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("employees service is required")
	}
	if auth == nil {
		panic("employee auth service is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &Handler{svc: svc, auth: auth, respond: httpapi.Responder{Resource: resourceName, Logger: logger}}
}

// Routes returns the /employees router. Register and login are public; everything else
// needs an authenticated employee, and permanent deletes need the ADMIN role.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(authed chi.Router) {
		authed.Use(platformauth.RequireAuthenticated)
		authed.Post("/logout", h.Logout)
		authed.Get("/", h.List)
		authed.Post("/", h.Create)
		authed.Get("/uuid/{uuid}", h.GetByUUID)
		authed.Get("/{id}", h.Get)
		authed.Patch("/{id}", h.Update)
		authed.Patch("/{id}/status", h.ChangeStatus)
		authed.Delete("/{id}", h.Delete)
		authed.Patch("/{id}/restore", h.Restore)

		authed.Group(func(admin chi.Router) {
			admin.Use(platformauth.RequireRole(platformauth.RoleAdmin))
			admin.Delete("/{id}/permanent", h.PermanentDelete)
			admin.Post("/bulk-delete", h.BulkDelete)
		})
	})
	return r
}

type employeeBody struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Email           *string `json:"email"`
	WhatsappNumber  *string `json:"whatsapp_number"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
	ProfilePicture  *string `json:"profile_picture"`
	Role            *string `json:"role"`
	Status          *string `json:"status"`
	IsActive        *bool   `json:"is_active"`
}

type loginBody struct {
	Email          *string `json:"email"`
	WhatsappNumber *string `json:"whatsapp_number"`
	Password       string  `json:"password"`
	DeviceID       *string `json:"device_id"`
	DeviceType     *string `json:"device_type"`
}

type statusBody struct {
	Status string `json:"status"`
}

type loginResponse struct {
	Token     string               `json:"token"`
	TokenType string               `json:"token_type"`
	ExpiresAt time.Time            `json:"expires_at"`
	Employee  persistence.Employee `json:"employee"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body employeeBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(registerOperation), err)
		return
	}

	input := service.RegisterInput{
		FirstName: body.FirstName, LastName: body.LastName,
		WhatsappNumber: body.WhatsappNumber, ProfilePicture: body.ProfilePicture,
		Email: deref(body.Email), Password: deref(body.Password), ConfirmPassword: deref(body.ConfirmPassword),
	}

	created, err := h.auth.Register(r.Context(), input)
	if err != nil {
		h.respond.Fail(w, r, string(registerOperation), err)
		return
	}

	w.Header().Set("Location", resourceLocationPrefix+strconv.FormatInt(created.ID, 10))
	httpapi.WriteJSON(w, http.StatusCreated, httpapi.Envelope{Message: "Employee registered successfully", Data: created})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(loginOperation), err)
		return
	}

	session, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:          body.Email,
		WhatsappNumber: body.WhatsappNumber,
		Password:       body.Password,
		IPAddress:      clientIP(r),
		UserAgent:      r.UserAgent(),
		DeviceID:       body.DeviceID,
		DeviceType:     body.DeviceType,
	})
	if err != nil {
		h.respond.Fail(w, r, string(loginOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{
		Message: "Login successful",
		Data: loginResponse{
			Token:     session.Token,
			TokenType: "Bearer",
			ExpiresAt: session.ExpiresAt,
			Employee:  session.Employee,
		},
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	creds, _ := platformauth.CredentialsFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), creds); err != nil {
		h.respond.Fail(w, r, string(logoutOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: "Logout successful"})
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

	employee, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respond.Fail(w, r, string(getOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Data: employee})
}

func (h *Handler) GetByUUID(w http.ResponseWriter, r *http.Request) {
	externalID, err := httpapi.PathUUID(r, "uuid")
	if err != nil {
		h.respond.Fail(w, r, string(getByUUIDOperation), err)
		return
	}

	employee, err := h.svc.GetByExternalID(r.Context(), externalID)
	if err != nil {
		h.respond.Fail(w, r, string(getByUUIDOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Data: employee})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body employeeBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(createOperation), err)
		return
	}

	created, err := h.svc.Create(r.Context(), service.CreateInput{
		FirstName: body.FirstName, LastName: body.LastName, Email: deref(body.Email),
		WhatsappNumber: body.WhatsappNumber, Password: body.Password, ConfirmPassword: body.ConfirmPassword,
		ProfilePicture: body.ProfilePicture, Role: body.Role, Status: body.Status, IsActive: body.IsActive,
	})
	if err != nil {
		h.respond.Fail(w, r, string(createOperation), err)
		return
	}

	w.Header().Set("Location", resourceLocationPrefix+strconv.FormatInt(created.ID, 10))
	httpapi.WriteJSON(w, http.StatusCreated, httpapi.Envelope{Message: "Employee created successfully", Data: created})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	var body employeeBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, service.UpdateInput{
		FirstName: body.FirstName, LastName: body.LastName, Email: body.Email,
		WhatsappNumber: body.WhatsappNumber, Password: body.Password, ProfilePicture: body.ProfilePicture,
		Role: body.Role, Status: body.Status, IsActive: body.IsActive,
	})
	if err != nil {
		h.respond.Fail(w, r, string(updateOperation), err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: "Employee updated successfully", Data: updated})
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

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: "Employee status updated successfully", Data: updated})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, deleteOperation, h.svc.SoftDelete, "Employee deleted successfully")
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, restoreOperation, h.svc.Restore, "Employee restored successfully")
}

func (h *Handler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, purgeOperation, h.svc.Purge, "Employee permanently deleted")
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

	httpapi.WriteJSON(w, http.StatusOK, httpapi.Envelope{Message: strconv.Itoa(len(ids)) + " employees deleted successfully"})
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

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has already
// replaced it with the forwarded address when one was sent.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
