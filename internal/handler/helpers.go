package handler

import (
	"encoding/base64"
	"net/http"
	"strconv"

	internal_errors "github.com/grouptalk-dev/grouptalk/shared/errors"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
)

// setFlash stores a one-shot message shown on the next rendered page.
// Values are base64-encoded so non-ASCII messages survive the cookie header.
func (h *Handler) setFlash(w http.ResponseWriter, name, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.URLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash reads and clears a flash cookie.
func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, cookieName, message string) {
	h.setFlash(w, cookieName, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// httpReply implements form.Notifier and form.Navigator for one request.
// Notify stages a flash toast; NavigateTo issues the redirect. finish must
// run after Submit so a submission that neither navigated nor errored still
// lands the user back on the form.
type httpReply struct {
	h           *Handler
	w           http.ResponseWriter
	r           *http.Request
	fallbackURL string
	navigated   bool
}

func (h *Handler) newReply(w http.ResponseWriter, r *http.Request, fallbackURL string) *httpReply {
	return &httpReply{h: h, w: w, r: r, fallbackURL: fallbackURL}
}

func (p *httpReply) Notify(message string) {
	p.h.setFlash(p.w, flashCookieError, message)
}

func (p *httpReply) NavigateTo(url string) {
	p.navigated = true
	http.Redirect(p.w, p.r, url, http.StatusSeeOther)
}

func (p *httpReply) finish() {
	if !p.navigated {
		http.Redirect(p.w, p.r, p.fallbackURL, http.StatusSeeOther)
	}
}

// parseTopicId accepts only positive integers.
func parseTopicId(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "invalid topic id", StatusCode: http.StatusNotFound}
	}
	return id, nil
}
