package auth

import (
	"errors"
	"fmt"
	"slices"

	"github.com/wolfeidau/escuela/internal/models"
)

var (
	// ErrUnauthenticated is returned when no usable session is present.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the session role is not allowed.
	ErrForbidden = errors.New("forbidden")
)

// Action is an operation a screen can expose.
type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Permission names an action on an entity collection, eg "materias:create".
type Permission string

// PermissionFor builds the permission for action on entity.
func PermissionFor(entity string, action Action) Permission {
	return Permission(entity + ":" + string(action))
}

var (
	adminOnly      = []models.Role{models.RoleAdmin}
	adminOrTeacher = []models.Role{models.RoleAdmin, models.RoleTeacher}
)

// Permissions maps each entity action to the roles allowed to perform it.
// Anything not listed is denied.
var Permissions = map[Permission][]models.Role{
	"estudiantes:list":   adminOrTeacher,
	"estudiantes:create": adminOrTeacher,
	"estudiantes:update": adminOrTeacher,
	"estudiantes:delete": adminOnly,

	"personal:list":   adminOnly,
	"personal:create": adminOnly,
	"personal:update": adminOnly,
	"personal:delete": adminOnly,

	"materias:list":   adminOrTeacher,
	"materias:create": adminOnly,
	"materias:update": adminOnly,
	"materias:delete": adminOnly,

	"grados:list":   adminOnly,
	"grados:create": adminOnly,
	"grados:update": adminOnly,
	"grados:delete": adminOnly,

	"calificaciones:list":   adminOrTeacher,
	"calificaciones:create": adminOrTeacher,
	"calificaciones:update": adminOrTeacher,
	"calificaciones:delete": adminOrTeacher,

	"periodos:list":   adminOnly,
	"periodos:create": adminOnly,
	"periodos:update": adminOnly,
	"periodos:delete": adminOnly,

	"instituciones:list":   adminOnly,
	"instituciones:create": adminOnly,
	"instituciones:update": adminOnly,
	"instituciones:delete": adminOnly,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role models.Role, perm Permission) bool {
	roles, ok := Permissions[perm]
	if !ok {
		return false
	}
	return slices.Contains(roles, role)
}

// RequirePermission checks the session against perm.
func RequirePermission(session *models.Session, perm Permission) error {
	if !session.HasToken() {
		return ErrUnauthenticated
	}

	if !HasPermission(session.Role, perm) {
		return fmt.Errorf("%w: %s requires %s", ErrForbidden, session.Role, perm)
	}

	return nil
}

// AllowedActions returns the actions on entity the role may perform, in
// list, create, update, delete order.
func AllowedActions(role models.Role, entity string) []Action {
	var actions []Action
	for _, action := range []Action{ActionList, ActionCreate, ActionUpdate, ActionDelete} {
		if HasPermission(role, PermissionFor(entity, action)) {
			actions = append(actions, action)
		}
	}
	return actions
}
