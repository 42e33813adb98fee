package http

import (
	"net/http"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/leave"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http/response"
)

type LeaveHandler interface {
	ListPending(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{leaveService: leaveService}
}

// ListPending handles GET /leave-requests/pending
func (h *leaveHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 50)

	requests, err := h.leaveService.ListPending(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, req := range requests {
		result = append(result, leave.ToLeaveRequestResponse(req))
	}
	response.Success(w, result)
}
