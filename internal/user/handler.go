// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/account-service/internal/core"
	"github.com/carterperez-dev/templates/account-service/internal/middleware"
)

const (
	codeForbiddenOperation  = "FORBIDDEN_OPERATION"
	codeDuplicateEmail      = "DUPLICATE_EMAIL"
	codeNotFound            = "NOT_FOUND"
	codeEmailDispatchFailed = "EMAIL_DISPATCH_FAILED"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts /users. welcomeLimiter may be nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, welcomeLimiter func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/me", h.GetMe)

		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Patch("/", h.UpdateUser)

			r.Group(func(r chi.Router) {
				if welcomeLimiter != nil {
					r.Use(welcomeLimiter)
				}
				r.Post("/welcome", h.ResendWelcome)
			})
		})
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), req, actor)
	if err != nil {
		h.writeError(w, err, user)
		return
	}

	core.Created(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req, actor)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) ResendWelcome(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.ResendWelcome(r.Context(), id, actor); err != nil {
		h.writeError(w, err, nil)
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), actor.ID, actor)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	params := ListUsersParams{
		Search: q.Get("search"),
	}
	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	if raw := q.Get("role"); raw != "" {
		role, valid := ParseRole(raw)
		if !valid {
			core.BadRequest(w, "role must be one of: Administrator Manager User")
			return
		}
		params.Role = string(role)
	}

	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			core.BadRequest(w, "active must be a boolean")
			return
		}
		params.Active = &active
	}

	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), params, actor)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

// actor resolves the caller from the verified token against the current
// account state.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "")
		return Actor{}, false
	}

	actor, err := h.service.ResolveActor(
		r.Context(),
		claims.UserID,
		claims.TokenVersion,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTokenRevoked):
			core.JSONError(w, core.TokenRevokedError())
		case errors.Is(err, core.ErrUnauthorized):
			core.Unauthorized(w, "account is not active")
		default:
			core.InternalServerError(w, err)
		}
		return Actor{}, false
	}

	return actor, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid user ID")
		return 0, false
	}
	return id, true
}

// writeError renders service failures. created is the persisted user
// returned alongside an email dispatch failure, if any.
func (h *Handler) writeError(w http.ResponseWriter, err error, created *User) {
	uerr, ok := AsError(err)
	if !ok {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	switch uerr.Kind {
	case KindForbiddenOperation:
		core.JSONError(w, core.NewAppError(
			core.ErrForbidden,
			uerr.Message,
			http.StatusForbidden,
			codeForbiddenOperation,
		))
	case KindDuplicateEmail:
		core.JSONError(w, core.NewAppError(
			core.ErrDuplicateKey,
			uerr.Message,
			http.StatusConflict,
			codeDuplicateEmail,
		))
	case KindEntityNotFound:
		core.JSONError(w, core.NewAppError(
			core.ErrNotFound,
			uerr.Message,
			http.StatusNotFound,
			codeNotFound,
		))
	case KindEmailDispatchFailure:
		details := EmailDispatchDetails{Type: uerr.Type}
		if created != nil {
			resp := ToUserResponse(created)
			details.User = &resp
		}
		core.JSONError(w, core.NewAppError(
			core.ErrBadGateway,
			uerr.Message,
			http.StatusBadGateway,
			codeEmailDispatchFailed,
		).WithDetails(details))
	default:
		core.InternalServerError(w, err)
	}
}
