package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
	"github.com/SergeyKozhin/family-calendar-backend/internal/pkg/validator"
	"github.com/lucasb-eyer/go-colorful"
)

func (a *Api) getCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	familyID, ok := familyFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveFamily)
		return
	}

	categories, err := a.categories.GetFamilyCategories(r.Context(), a.db, familyID)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get categories of family %v: %w", familyID, err))
		return
	}

	resp, _ := mapSlice(categories, mapToCategoryResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := memberFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveMember)
		return
	}

	familyID, ok := familyFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveFamily)
		return
	}

	if !member.Role.CanManageCategories() {
		a.forbiddenResponse(w, r, fmt.Sprintf("%v cannot manage categories", member.Role))
		return
	}

	req := &struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	v := validator.New()

	v.Check(len(req.Name) != 0, "name", "name must be provided")
	v.Check(validator.Matches(req.Color, validator.HexRX), "color", "color must be valid HEX color")

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	color, err := colorful.Hex(req.Color)
	if err != nil {
		a.failedValidationResponse(w, r, map[string]string{"color": "color must be valid HEX color"})
		return
	}

	id, err := a.categories.CreateCategory(r.Context(), a.db, &model.CategoryCreate{
		FamilyID: familyID,
		Name:     req.Name,
		Color:    color,
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyExists):
			a.failedValidationResponse(w, r, map[string]string{"name": "category with this name already exists"})
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("create category: %w", err))
		}
		return
	}

	category, err := a.categories.GetCategory(r.Context(), a.db, id)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get category: %w", err))
		return
	}

	resp, _ := mapToCategoryResp(category)

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
