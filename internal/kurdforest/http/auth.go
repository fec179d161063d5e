package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/service"
	"github.com/aussiebroadwan/kurdforest/pkg/errutil"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

// AuthHandler serves the registration, verification and login pages.
type AuthHandler struct {
	Registration *service.RegistrationService
	Sessions     *service.SessionService
	Views        *Views
	Cookie       SessionCookie
}

// HandleRegisterForm godoc
//
//	@Summary	Registration form
//	@Tags		Auth
//	@Produce	html
//	@Success	200	{string}	string	"HTML form"
//	@Success	302	{string}	string	"Redirect home when already logged in"
//	@Router		/register [get]
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "register", viewData{Title: "Register"})
}

// HandleRegister godoc
//
//	@Summary		Submit a registration
//	@Description	Stages the sign-up and emails a six character code valid for one minute.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			username	formData	string	true	"Username"
//	@Param			email		formData	string	true	"Email address"
//	@Param			password	formData	string	true	"Password"
//	@Success		302			{string}	string	"Redirect to /verify?token=..."
//	@Failure		400			{string}	string	"Form re-rendered with error"
//	@Failure		409			{string}	string	"Email or username taken"
//	@Failure		500			{string}	string	"Email could not be sent"
//	@Router			/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.Views.Render(w, r, http.StatusBadRequest, "register", viewData{Title: "Register", Error: "Invalid form data."})
		return
	}

	token, err := h.Registration.Register(ctx, r.FormValue("username"), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		status, msg := http.StatusInternalServerError, "An error occurred during registration."
		switch {
		case errors.Is(err, service.ErrUserExists):
			status, msg = http.StatusConflict, err.Error()
		case errors.Is(err, service.ErrValidation):
			status, msg = http.StatusBadRequest, err.Error()
		case errors.Is(err, service.ErrDelivery):
			msg = "An error occurred while sending the verification email."
			errutil.LogError(slogx.FromContext(ctx), "registration email failed", err)
		default:
			errutil.LogError(slogx.FromContext(ctx), "registration failed", err)
		}
		h.Views.Render(w, r, status, "register", viewData{Title: "Register", Error: msg})
		return
	}

	http.Redirect(w, r, "/verify?token="+url.QueryEscape(token), http.StatusFound)
}

// HandleVerifyForm godoc
//
//	@Summary	Verification form
//	@Tags		Auth
//	@Produce	html
//	@Param		token	query		string	true	"Registration token"
//	@Success	200		{string}	string	"HTML form"
//	@Success	302		{string}	string	"Redirect to /register for an unknown token"
//	@Router		/verify [get]
func (h *AuthHandler) HandleVerifyForm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if !h.Registration.IsPending(token) {
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}
	h.Views.Render(w, r, http.StatusOK, "verify", viewData{Title: "Verify", Token: token})
}

// HandleVerify godoc
//
//	@Summary		Submit a verification code
//	@Description	Codes are case-insensitive. A wrong code may be retried until the registration expires.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			token	formData	string	true	"Registration token"
//	@Param			code	formData	string	true	"Six character code from the email"
//	@Success		302		{string}	string	"Session cookie set, redirect home"
//	@Failure		200		{string}	string	"Form re-rendered with error"
//	@Failure		500		{string}	string	"Account could not be saved"
//	@Router			/verify [post]
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.Views.Render(w, r, http.StatusBadRequest, "verify", viewData{Title: "Verify", Error: "Invalid form data."})
		return
	}
	token := r.FormValue("token")

	_, signed, err := h.Registration.Verify(ctx, token, r.FormValue("code"))
	if err != nil {
		data := viewData{Title: "Verify", Error: err.Error()}
		status := http.StatusOK
		switch {
		case errors.Is(err, service.ErrToken):
			// Registration is gone; the form must not be offered again
		case errors.Is(err, service.ErrCodeMismatch):
			data.Token = token
		case errors.Is(err, service.ErrUserExists):
			status = http.StatusConflict
		default:
			status = http.StatusInternalServerError
			data.Error = "An error occurred during verification."
			data.Token = token
			errutil.LogError(slogx.FromContext(ctx), "verification failed", err)
		}
		h.Views.Render(w, r, status, "verify", data)
		return
	}

	h.Cookie.Set(w, signed)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLoginForm godoc
//
//	@Summary	Login form
//	@Tags		Auth
//	@Produce	html
//	@Success	200	{string}	string	"HTML form"
//	@Router		/login [get]
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "login", viewData{Title: "Log in"})
}

// HandleLogin godoc
//
//	@Summary	Log in
//	@Tags		Auth
//	@Accept		x-www-form-urlencoded
//	@Produce	html
//	@Param		email		formData	string	true	"Email address"
//	@Param		password	formData	string	true	"Password"
//	@Success	302			{string}	string	"Session cookie set, redirect home"
//	@Failure	401			{string}	string	"Invalid credentials or unverified account"
//	@Router		/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.Views.Render(w, r, http.StatusBadRequest, "login", viewData{Title: "Log in", Error: "Invalid form data."})
		return
	}

	_, signed, err := h.Sessions.Login(ctx, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrAuth) {
			h.Views.Render(w, r, http.StatusUnauthorized, "login", viewData{Title: "Log in", Error: err.Error()})
			return
		}
		errutil.LogError(slogx.FromContext(ctx), "login failed", err)
		h.Views.Render(w, r, http.StatusInternalServerError, "login", viewData{Title: "Log in", Error: "An error occurred during login."})
		return
	}

	h.Cookie.Set(w, signed)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout godoc
//
//	@Summary	Log out
//	@Tags		Auth
//	@Success	302	{string}	string	"Cookie cleared, redirect home"
//	@Router		/logout [get]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context(), SessionFromContext(r.Context()))
	h.Cookie.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
