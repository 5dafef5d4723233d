package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"project-tracker/app/views"
)

const flashCookie = "flash"

// Flash categories understood by the templates.
const (
	flashSuccess = "green"
	flashWarning = "red"
)

// addFlash queues a notice for the next rendered page. Notices still
// pending on the request are carried over.
func addFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	flashes := append(readFlashes(r), views.Flash{Category: category, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the pending notices and clears the cookie.
func popFlashes(w http.ResponseWriter, r *http.Request) []views.Flash {
	flashes := readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return flashes
}

// readFlashes decodes the flash cookie. A malformed cookie yields no notices.
func readFlashes(r *http.Request) []views.Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []views.Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
