package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http/response"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	RecentLogs(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	dispatcher notification.Dispatcher
	jwtService jwt.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(dispatcher notification.Dispatcher, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		dispatcher: dispatcher,
		jwtService: jwtService,
	}
}

// getSubjectFromContext extracts the sub claim from JWT context
func getSubjectFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

// RecentLogs returns the latest delivery attempts, newest first
func (h *notificationHandlerImpl) RecentLogs(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 50)

	entries, err := h.dispatcher.RecentLogs(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]notification.LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, notification.ToLogEntryResponse(e))
	}
	response.Success(w, result)
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *notificationHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	subject := getSubjectFromContext(r)
	if subject == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(subject)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, notification.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles SSE connection for the live delivery feed
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	subject, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.dispatcher.Subscribe(r.Context())
	defer cleanup()

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"subject\":%q}\n\n", subject)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
