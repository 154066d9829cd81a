package api

import (
	"fmt"
	"net/http"
)

func (a *Api) toggleCompletionHandler(w http.ResponseWriter, r *http.Request) {
	eventID, date, err := parseOccurrencePath(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	req := &struct {
		Completed *bool  `json:"completed"`
		MemberID  *int64 `json:"member_id"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if req.Completed == nil {
		a.failedValidationResponse(w, r, map[string]string{"completed": "completed must be provided"})
		return
	}

	// The member in the body may only repeat the acting member.
	memberID := req.MemberID
	if member, ok := memberFrom(r); ok {
		if memberID != nil && *memberID != member.ID {
			a.forbiddenResponse(w, r, "completion on behalf of another member")
			return
		}
		memberID = &member.ID
	}

	completed, err := a.completionsService.ToggleCompletion(r.Context(), eventID, memberID, date, *req.Completed)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("toggle completion: %w", err))
		return
	}

	resp := &struct {
		Completed bool `json:"completed"`
	}{
		Completed: completed,
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
