package video

import (
	"encoding/json"
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

const maxUploadFormMemory = 32 << 20

// Handler serves the home page, the video pages and the comment API.
type Handler struct {
	svc     *Service
	flashes *flash.Manager
	views   view.Renderer
	logger  *slog.Logger
}

type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

func NewHandler(svc *Service, flashes *flash.Manager, views view.Renderer, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:     svc,
		flashes: flashes,
		views:   views,
		logger:  logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Routes registers the home page, the /videos subtree and the JSON
// /api endpoints on the root router. The protect middleware guards
// uploads, edits and comment writes; browsing stays open.
func (h *Handler) Routes(r chi.Router, protect func(http.Handler) http.Handler) {
	r.Get("/", h.home)

	r.Route("/videos", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Get("/upload", h.uploadForm)
			r.Post("/upload", h.upload)
			r.Get("/{id}/edit", h.editForm)
			r.Post("/{id}/edit", h.edit)
			r.Post("/{id}/delete", h.deleteVideo)
		})
		r.Get("/{id}", h.watch)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/videos/{id}/view", h.registerView)
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Post("/videos/{id}/comment", h.createComment)
			r.Delete("/comments/{id}", h.deleteComment)
		})
	})
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	videos, err := h.svc.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list videos",
			logger.Error(err),
			logger.Component("video"),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "home", view.Data{
		"Videos": videos,
		"Search": r.URL.Query().Get("search"),
	})
}

func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	page, err := h.svc.Watch(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to load video",
			logger.Error(err),
			logger.Component("video"),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "watch", view.Data{
		"Video":    page.Video,
		"Comments": page.Comments,
	})
}

func (h *Handler) uploadForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "upload", view.Data{})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := session.PrincipalFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseMultipartForm(maxUploadFormMemory); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := UploadRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Hashtags:    r.FormValue("hashtags"),
	}
	if _, fh, err := r.FormFile("video"); err == nil {
		req.File = fh
	}
	if _, fh, err := r.FormFile("thumb"); err == nil {
		req.Thumb = fh
	}

	v, err := h.svc.Upload(ctx, principal.ID, req)
	if err != nil {
		data := view.Data{"Form": req}
		if ve := validator.ExtractValidationErrors(err); !ve.IsEmpty() {
			data["Errors"] = ve
		} else {
			data["Error"] = err.Error()
		}
		h.render(w, r, http.StatusBadRequest, "upload", data)
		return
	}

	http.Redirect(w, r, "/videos/"+v.ID.String(), http.StatusFound)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	principal, ok := session.PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	page, err := h.svc.Watch(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if page.Video.OwnerID != principal.ID {
		h.denyNotOwner(w, r)
		return
	}

	h.render(w, r, http.StatusOK, "edit-video", view.Data{"Video": page.Video})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := session.PrincipalFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	v, err := h.svc.Edit(ctx, principal.ID, id, EditRequest{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Hashtags:    r.PostFormValue("hashtags"),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrVideoNotFound):
			http.NotFound(w, r)
		case errors.Is(err, ErrNotOwner):
			h.denyNotOwner(w, r)
		default:
			data := view.Data{"Error": err.Error()}
			if current, gerr := h.svc.Watch(ctx, id); gerr == nil {
				data["Video"] = current.Video
			}
			h.render(w, r, http.StatusBadRequest, "edit-video", data)
		}
		return
	}

	http.Redirect(w, r, "/videos/"+v.ID.String(), http.StatusFound)
}

func (h *Handler) deleteVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := session.PrincipalFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.svc.Delete(ctx, principal.ID, id); err != nil {
		switch {
		case errors.Is(err, ErrVideoNotFound):
			http.NotFound(w, r)
		case errors.Is(err, ErrNotOwner):
			h.denyNotOwner(w, r)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) registerView(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.svc.RegisterView(r.Context(), id); err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := session.PrincipalFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	c, err := h.svc.CreateComment(ctx, principal.ID, videoID, body.Text)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "invalid comment", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"id": c.ID.String()})
}

// deleteComment returns the deleted id so the client can remove the
// corresponding DOM node.
func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := session.PrincipalFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	deletedID, err := h.svc.DeleteComment(ctx, principal.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrCommentNotFound):
			http.NotFound(w, r)
		case errors.Is(err, ErrNotOwner):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"id": deletedID.String()})
}

func (h *Handler) denyNotOwner(w http.ResponseWriter, r *http.Request) {
	if err := h.flashes.Add(w, r, flash.KindError, "Not authorized."); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to add flash notice",
			logger.Error(err),
			logger.Component("video"),
		)
	}
	http.Redirect(w, r, "/", http.StatusFound)
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
			logger.Component("video"),
		)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode json response",
			logger.Error(err),
			logger.Component("video"),
		)
	}
}
