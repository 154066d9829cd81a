package api

import (
	"net/http"
)

func (a *Api) getMemberHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := memberFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveMember)
		return
	}

	resp, _ := mapToMemberResp(member)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
