package model

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

type Role int

const (
	RoleChild Role = iota
	RoleAdult
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleChild:
		return "child"
	case RoleAdult:
		return "adult"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) CanManageEvents() bool {
	return r == RoleAdult || r == RoleAdmin
}

func (r Role) CanCompleteTasks() bool {
	return r == RoleChild || r == RoleAdult || r == RoleAdmin
}

func (r Role) CanManageCategories() bool {
	return r == RoleAdmin
}

type Member struct {
	ID        int64
	FamilyID  int64
	Name      string
	Role      Role
	PushToken string
	Notify    bool
}

type CategoryCreate struct {
	FamilyID int64
	Name     string
	Color    colorful.Color
}

type Category struct {
	ID int64
	CategoryCreate
}
