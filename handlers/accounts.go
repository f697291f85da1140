package handlers

import (
	"net/http"

	"github.com/dchest/captcha"

	"chantierbook/auth"
	"chantierbook/config"
	"chantierbook/ledger"
)

func SignupHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	ip := getClientIP(r)
	if !signupLimiter.Allow(ip) {
		sendErrorKey(w, r, http.StatusTooManyRequests, "TooManyAttempts")
		return
	}

	var input struct {
		ledger.RegisterInput
		CaptchaID       string `json:"captcha_id"`
		CaptchaSolution string `json:"captcha_solution"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	if config.AppConfig.Captcha && !captcha.VerifyString(input.CaptchaID, input.CaptchaSolution) {
		sendErrorKey(w, r, http.StatusBadRequest, "CaptchaFailed")
		return
	}

	if err := svc.Register(input.RegisterInput); err != nil {
		signupLimiter.RecordFailure(ip)
		sendOperationError(w, r, err)
		return
	}

	// Limit the rate of account creation per IP
	signupLimiter.RecordFailure(ip)
	sendMessage(w, r, http.StatusCreated, "AccountCreated")
}

// NewCaptchaHandler hands out a challenge id; the image is served under
// /captcha/<id>.png.
func NewCaptchaHandler(w http.ResponseWriter, r *http.Request) {
	sendData(w, map[string]string{"captcha_id": captcha.New()})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	ip := getClientIP(r)
	if !loginLimiter.Allow(ip) {
		sendErrorKey(w, r, http.StatusTooManyRequests, "TooManyAttempts")
		return
	}

	var input struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	sess, err := svc.Login(input.ID, input.Password)
	if err != nil {
		loginLimiter.RecordFailure(ip)
		sendErrorKey(w, r, http.StatusUnauthorized, "InvalidCredentials")
		return
	}
	loginLimiter.Reset(ip)

	auth.SetSession(w, r, sess.AccountID, sess.Role, sess.SiteID)
	sendData(w, map[string]string{
		"id":      sess.AccountID,
		"role":    sess.Role,
		"site_id": sess.SiteID,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w, r)
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}

func AccountHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		view, err := svc.Account(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, view)
	case http.MethodPost:
		var input ledger.AccountUpdateInput
		if !decodeBody(w, r, &input) {
			return
		}
		newID, err := svc.UpdateAccount(sess, input)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		// The identifier may have changed; refresh the session cookie.
		auth.SetSession(w, r, newID, sess.Role, sess.SiteID)
		sendData(w, map[string]string{"id": newID})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func ToggleThemeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	theme, err := svc.ToggleTheme(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendData(w, map[string]string{"theme": theme})
}

func AvatarHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Avatar string `json:"avatar"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if err := svc.SetAvatar(sess, input.Avatar); err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}

func ActivationHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if err := svc.SetActivationPassword(sess, input.Value); err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendMessage(w, r, http.StatusOK, "ActivationUpdated")
}
