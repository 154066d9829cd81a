package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

type contextKey string

const (
	contextKeyMember = contextKey("member")
	contextKeyFamily = contextKey("family")
)

// memberHeader carries the acting member. Authentication happens upstream.
const memberHeader = "X-Member-ID"

var (
	errNoMember            = errors.New("member identity must be provided")
	errCantRetrieveFamily  = errors.New("can't retrieve family from context")
	errCantRetrieveMember  = errors.New("can't retrieve member from context")
	errUnknownMember       = errors.New("member does not exist")
	errInvalidMemberHeader = fmt.Errorf("invalid %s header", memberHeader)
)

// memberCtx resolves the acting member when the request names one.
func (a *Api) memberCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(memberHeader)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			a.badRequestResponse(w, r, errInvalidMemberHeader)
			return
		}

		member, err := a.members.GetMember(r.Context(), a.db, id)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrNoRecord):
				a.unauthorizedResponse(w, r, errUnknownMember)
			default:
				a.serverErrorResponse(w, r, fmt.Errorf("get member: %w", err))
			}
			return
		}

		memberCtx := context.WithValue(r.Context(), contextKeyMember, member)
		next.ServeHTTP(w, r.WithContext(memberCtx))
	})
}

func (a *Api) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := memberFrom(r); !ok {
			a.unauthorizedResponse(w, r, errNoMember)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// familyCtx admits members of the family named in the path only.
func (a *Api) familyCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member, ok := memberFrom(r)
		if !ok {
			a.serverErrorResponse(w, r, errCantRetrieveMember)
			return
		}

		familyID, err := parseIDParam(r, "familyID")
		if err != nil {
			a.notFoundResponse(w, r)
			return
		}

		if member.FamilyID != familyID {
			a.serviceErrorResponse(w, r, model.ErrCrossFamilyAccess)
			return
		}

		familyCtx := context.WithValue(r.Context(), contextKeyFamily, familyID)
		next.ServeHTTP(w, r.WithContext(familyCtx))
	})
}

func memberFrom(r *http.Request) (*model.Member, bool) {
	member, ok := r.Context().Value(contextKeyMember).(*model.Member)
	return member, ok
}

func familyFrom(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(contextKeyFamily).(int64)
	return id, ok
}
