package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/hotube/pkg/flash"
	"github.com/dmitrymomot/hotube/pkg/logger"
	"github.com/dmitrymomot/hotube/pkg/session"
	"github.com/dmitrymomot/hotube/pkg/validator"
	"github.com/dmitrymomot/hotube/pkg/view"
)

const maxEditFormMemory = 8 << 20

// Handler serves the profile pages: edit, change password and the
// public profile view.
type Handler struct {
	svc      *Service
	sessions *session.Manager
	flashes  *flash.Manager
	views    view.Renderer
	logger   *slog.Logger
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

func NewHandler(svc *Service, sessions *session.Manager, flashes *flash.Manager, views view.Renderer, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:      svc,
		sessions: sessions,
		flashes:  flashes,
		views:    views,
		logger:   logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Handle returns the router for the /users subtree. The protect
// middleware guards the edit and change-password routes; the profile
// page stays open.
func (h *Handler) Handle(protect func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Get("/edit", h.editForm)
		r.Post("/edit", h.edit)
		r.Get("/change-password", h.changePasswordForm)
		r.Post("/change-password", h.changePassword)
	})

	r.Get("/{id}", h.profile)

	return r
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	principal, ok := session.PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, "edit-profile", view.Data{
		"Form": ProfileUpdate{
			Name:     principal.Name,
			Email:    principal.Email,
			Username: principal.Username,
			Location: principal.Location,
		},
	})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := session.PrincipalFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseMultipartForm(maxEditFormMemory); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	update := ProfileUpdate{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Location: r.FormValue("location"),
	}
	if _, fh, err := r.FormFile("avatar"); err == nil {
		update.Avatar = fh
	}

	account, err := h.svc.UpdateProfile(ctx, principal.ID, update)
	if err != nil {
		h.renderEditError(w, r, update, err)
		return
	}

	if err := h.sessions.RefreshPrincipal(ctx, r, account.Principal()); err != nil {
		h.logger.ErrorContext(ctx, "failed to refresh session principal",
			logger.Error(err),
			logger.Component("user"),
		)
	}

	h.addFlash(w, r, flash.KindSuccess, "Profile updated.")
	http.Redirect(w, r, "/users/edit", http.StatusFound)
}

func (h *Handler) renderEditError(w http.ResponseWriter, r *http.Request, form ProfileUpdate, err error) {
	data := view.Data{"Form": form}

	switch {
	case errors.Is(err, ErrAlreadyTaken):
		data["Error"] = "This username or email is already taken."
	default:
		if ve := validator.ExtractValidationErrors(err); !ve.IsEmpty() {
			data["Errors"] = ve
		} else {
			data["Error"] = err.Error()
		}
	}

	h.render(w, r, http.StatusBadRequest, "edit-profile", data)
}

func (h *Handler) changePasswordForm(w http.ResponseWriter, r *http.Request) {
	if principal, ok := session.PrincipalFromContext(r.Context()); ok && principal.SocialOnly {
		h.addFlash(w, r, flash.KindError, "Can't change password for social accounts.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, "change-password", view.Data{})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := session.PrincipalFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	err := h.svc.ChangePassword(ctx, principal.ID,
		r.PostFormValue("old_password"),
		r.PostFormValue("new_password"),
		r.PostFormValue("new_password_confirm"),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrSocialOnly):
			h.addFlash(w, r, flash.KindError, "Can't change password for social accounts.")
			http.Redirect(w, r, "/", http.StatusFound)
		case errors.Is(err, ErrWrongPassword):
			h.render(w, r, http.StatusBadRequest, "change-password", view.Data{
				"Error": "The current password is incorrect.",
			})
		case errors.Is(err, ErrPasswordConfirmMismatch):
			h.render(w, r, http.StatusBadRequest, "change-password", view.Data{
				"Error": "The password does not match the confirmation.",
			})
		default:
			h.render(w, r, http.StatusBadRequest, "change-password", view.Data{
				"Error": err.Error(),
			})
		}
		return
	}

	// A changed password invalidates the current login.
	if err := h.sessions.Destroy(ctx, w, r); err != nil {
		h.logger.ErrorContext(ctx, "failed to destroy session",
			logger.Error(err),
			logger.Component("user"),
		)
	}

	h.addFlash(w, r, flash.KindSuccess, "Password updated. Please log in again.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	profile, err := h.svc.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load profile",
			logger.Error(err),
			logger.Component("user"),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "profile", view.Data{
		"Account": profile.Account,
		"Videos":  profile.Videos,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data view.Data) {
	if data == nil {
		data = view.Data{}
	}
	if principal, ok := session.PrincipalFromContext(r.Context()); ok {
		data["LoggedIn"] = true
		data["Principal"] = principal
	} else {
		data["LoggedIn"] = false
	}
	data["Notices"] = h.flashes.Pop(w, r)

	if err := h.views.Render(w, status, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			logger.Error(err),
			logger.Component("user"),
		)
	}
}

func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, kind flash.Kind, message string) {
	if err := h.flashes.Add(w, r, kind, message); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to add flash notice",
			logger.Error(err),
			logger.Component("user"),
		)
	}
}
