package handlers

import (
	"encoding/json"
	"net/http"
)

// maxErrorMessageLength bounds error text returned to clients
const maxErrorMessageLength = 300

// respondJSON sends payload as the whole JSON body
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage trims error text before it is shown to a client
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends {"success": false, "error": message}
func respondJSONError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"error":   sanitizeErrorMessage(message),
	})
}
