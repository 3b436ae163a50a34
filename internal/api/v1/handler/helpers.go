package handler

import (
	"encoding/json"
	"net/http"

	"pathshala/internal/middleware"
	"pathshala/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireUser pulls the authenticated subject out of the request context.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// requireStaff rejects callers whose role is neither admin nor staff.
func requireStaff(w http.ResponseWriter, r *http.Request) bool {
	role, _ := r.Context().Value(middleware.RoleContextKey).(string)
	if role != model.RoleAdmin && role != model.RoleStaff {
		http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
		return false
	}
	return true
}
