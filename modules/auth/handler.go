package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/hotube/modules/user"
	"github.com/dmitrymomot/hotube/pkg/cookie"
	"github.com/dmitrymomot/hotube/pkg/flash"
	"github.com/dmitrymomot/hotube/pkg/logger"
	"github.com/dmitrymomot/hotube/pkg/session"
	"github.com/dmitrymomot/hotube/pkg/validator"
	"github.com/dmitrymomot/hotube/pkg/view"
)

const (
	oauthStateCookie = "__oauth_state"
	oauthStateMaxAge = 600 // seconds
)

// Handler serves signup, local login, the federated login flow and
// logout.
type Handler struct {
	password   *PasswordService
	provider   IdentityProvider
	reconciler *Reconciler
	sessions   *session.Manager
	cookies    *cookie.Manager
	flashes    *flash.Manager
	views      view.Renderer
	logger     *slog.Logger
}

type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

func NewHandler(
	password *PasswordService,
	provider IdentityProvider,
	reconciler *Reconciler,
	sessions *session.Manager,
	cookies *cookie.Manager,
	flashes *flash.Manager,
	views view.Renderer,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{
		password:   password,
		provider:   provider,
		reconciler: reconciler,
		sessions:   sessions,
		cookies:    cookies,
		flashes:    flashes,
		views:      views,
		logger:     logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Routes registers the auth routes on the site root router. Signup,
// login and the OAuth flow are public-only; logout is protected.
func (h *Handler) Routes(r chi.Router, gate *Gate) {
	r.Group(func(r chi.Router) {
		r.Use(gate.PublicOnly)
		r.Get("/join", h.joinForm)
		r.Post("/join", h.join)
		r.Get("/login", h.loginForm)
		r.Post("/login", h.login)
		r.Get("/oauth/start", h.oauthStart)
		r.Get("/oauth/finish", h.oauthFinish)
	})

	r.With(gate.Protect).Get("/logout", h.logout)
}

func (h *Handler) joinForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "join", view.Data{"Form": JoinRequest{}})
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := JoinRequest{
		Name:            r.PostFormValue("name"),
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password2"),
		Location:        r.PostFormValue("location"),
	}

	if _, err := h.password.Join(ctx, req); err != nil {
		req.Password, req.PasswordConfirm = "", ""
		data := view.Data{"Form": req}
		switch {
		case errors.Is(err, user.ErrPasswordConfirmMismatch):
			data["Error"] = "The password does not match the confirmation."
		case errors.Is(err, user.ErrAlreadyTaken):
			data["Error"] = "This username or email is already taken."
		default:
			if ve := validator.ExtractValidationErrors(err); !ve.IsEmpty() {
				data["Errors"] = ve
			} else {
				// Persistence errors surface their message on the form.
				data["Error"] = err.Error()
			}
		}
		h.render(w, r, http.StatusBadRequest, "join", data)
		return
	}

	h.addFlash(w, r, flash.KindSuccess, "Account created. Please log in.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", view.Data{})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	account, err := h.password.Authenticate(ctx, username, password)
	if err != nil {
		data := view.Data{"Username": username}
		switch {
		case errors.Is(err, ErrNoSuchAccount):
			data["Error"] = "An account with this username does not exist."
		case errors.Is(err, ErrWrongPassword):
			data["Error"] = "Wrong password."
		default:
			data["Error"] = err.Error()
		}
		h.render(w, r, http.StatusBadRequest, "login", data)
		return
	}

	if err := h.sessions.Establish(ctx, w, r, account.Principal()); err != nil {
		h.logger.ErrorContext(ctx, "failed to establish session",
			logger.Error(err),
			logger.Component("auth"),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) oauthStart(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate oauth state",
			logger.Error(err),
			logger.Component("auth"),
		)
		h.abortToLogin(w, r)
		return
	}

	if err := h.cookies.SetEncrypted(w, oauthStateCookie, state,
		cookie.WithMaxAge(oauthStateMaxAge),
	); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to set oauth state cookie",
			logger.Error(err),
			logger.Component("auth"),
		)
		h.abortToLogin(w, r)
		return
	}

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusFound)
}

// oauthFinish runs the whole reconciliation flow. Any step failing
// aborts the flow to the login page with no account mutation and no
// session established.
func (h *Handler) oauthFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.verifyState(r); err != nil {
		h.logger.WarnContext(ctx, "oauth state mismatch",
			logger.Error(err),
			logger.Component("auth"),
		)
		h.abortToLogin(w, r)
		return
	}
	h.cookies.Delete(w, oauthStateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.abortToLogin(w, r)
		return
	}

	accessToken, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "oauth token exchange failed",
			logger.Error(err),
			logger.Component("auth"),
		)
		h.abortToLogin(w, r)
		return
	}

	identity, err := h.provider.FetchIdentity(ctx, accessToken)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to fetch provider identity",
			logger.Error(err),
			logger.Component("auth"),
		)
		h.abortToLogin(w, r)
		return
	}

	account, err := h.reconciler.Reconcile(ctx, identity)
	if err != nil {
		h.logger.WarnContext(ctx, "identity reconciliation failed",
			logger.Error(err),
			logger.Component("auth"),
		)
		h.abortToLogin(w, r)
		return
	}

	if err := h.sessions.Establish(ctx, w, r, account.Principal()); err != nil {
		h.logger.ErrorContext(ctx, "failed to establish session",
			logger.Error(err),
			logger.Component("auth"),
		)
		h.abortToLogin(w, r)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to destroy session",
			logger.Error(err),
			logger.Component("auth"),
		)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) verifyState(r *http.Request) error {
	want, err := h.cookies.GetEncrypted(r, oauthStateCookie)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	got := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrInvalidState
	}

	return nil
}

func (h *Handler) abortToLogin(w http.ResponseWriter, r *http.Request) {
	h.addFlash(w, r, flash.KindError, "Could not log you in. Please try again.")
	http.Redirect(w, r, "/login", http.StatusFound)
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
			logger.Component("auth"),
		)
	}
}

func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, kind flash.Kind, message string) {
	if err := h.flashes.Add(w, r, kind, message); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to add flash notice",
			logger.Error(err),
			logger.Component("auth"),
		)
	}
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
