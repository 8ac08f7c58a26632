package server

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"
)

// handleSubscribe creates a subscription or merges new magic words and
// hall selections into an existing one, mirroring the behavior of the
// original subscription form.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		writeError(w, http.StatusBadRequest, "a valid email address is required")
		return
	}

	keywords := splitKeywords(r.PostForm.Get("keywords"))
	if len(keywords) == 0 {
		writeError(w, http.StatusBadRequest, "at least one magic word is required (comma-separated)")
		return
	}

	halls := r.PostForm["halls"]
	for _, h := range halls {
		if !s.knownHall(h) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown hall %q", h))
			return
		}
	}

	if err := s.store.Upsert(r.Context(), email, keywords, halls); err != nil {
		s.log.Error("upsert subscription", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "could not save subscription")
		return
	}

	s.log.Info("subscription saved", "email", email, "keywords", len(keywords))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("Subscribed! We'll watch for dishes matching: %s.", strings.Join(keywords, ", ")),
		"keywords": keywords,
	})
}

// handleUnsubscribe removes every alert for the given email.
func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "an email address is required")
		return
	}

	removed, err := s.store.Delete(r.Context(), email)
	if err != nil {
		s.log.Error("delete subscription", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "could not remove subscription")
		return
	}

	msg := "No active subscriptions found for that email."
	if removed {
		msg = "You've been unsubscribed from all alerts for this email."
		s.log.Info("subscription removed", "email", email)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"removed": removed,
	})
}

// splitKeywords parses a comma-separated magic word list, allowing
// spaces inside phrases.
func splitKeywords(raw string) []string {
	var keywords []string
	for _, kw := range strings.Split(raw, ",") {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

func (s *Server) knownHall(name string) bool {
	for _, h := range s.halls {
		if h == name {
			return true
		}
	}
	return false
}
