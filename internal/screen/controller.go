package screen

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/wolfeidau/escuela/internal/auth"
	"github.com/wolfeidau/escuela/internal/models"
	"github.com/wolfeidau/escuela/internal/resource"
)

// SessionReader exposes the current session. Screens only read it.
type SessionReader interface {
	Current() *models.Session
}

// Column renders one table column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Descriptor is the static definition of a screen.
type Descriptor[T any] struct {
	// Noun is the record name with its article, eg "la materia".
	Noun    string
	Columns []Column[T]
	Fields  []Field
	ID      func(T) int64

	// Created is the success message after a create.
	Created string
	// Deleted is the success message after a delete.
	Deleted string
}

// Table is a rendered collection.
type Table struct {
	Headers []string
	Rows    []Row
}

// Row is one rendered record.
type Row struct {
	ID    int64
	Cells []string
}

// Screen is the type-erased view of a Controller used by the surfaces.
type Screen interface {
	Entity() string
	Route() auth.Route
	Fields() []Field
	Actions() []auth.Action
	Can(action auth.Action) bool
	Table(ctx context.Context, filters map[string]string) (*Table, error)
	Submit(ctx context.Context, fields resource.Fields) (int64, error)
	Remove(ctx context.Context, id int64, confirm Confirmer) (bool, error)
}

// Controller drives one entity screen. It reads the session role to decide
// which actions are exposed, delegates every operation to its resource
// client and reports outcomes to the notifier. Failed actions are never
// retried.
type Controller[T any] struct {
	desc     Descriptor[T]
	client   *resource.Client[T]
	session  SessionReader
	notifier Notifier
	validate *validator.Validate
	route    auth.Route
}

var _ Screen = (*Controller[models.Grade])(nil)

// NewController creates a controller. The entity must have a route in the
// auth route table.
func NewController[T any](desc Descriptor[T], client *resource.Client[T], session SessionReader, notifier Notifier) *Controller[T] {
	if notifier == nil {
		notifier = LogNotifier{}
	}

	route, ok := auth.RouteForEntity(client.Entity().Name)
	if !ok {
		panic(fmt.Sprintf("screen: no route for entity %q", client.Entity().Name))
	}

	return &Controller[T]{
		desc:     desc,
		client:   client,
		session:  session,
		notifier: notifier,
		validate: newValidator(),
		route:    route,
	}
}

func (c *Controller[T]) Entity() string {
	return c.client.Entity().Name
}

func (c *Controller[T]) Route() auth.Route {
	return c.route
}

func (c *Controller[T]) Fields() []Field {
	return c.desc.Fields
}

// Actions returns the actions the current role may use on this screen.
func (c *Controller[T]) Actions() []auth.Action {
	current := c.session.Current()
	if !current.HasToken() {
		return nil
	}
	return auth.AllowedActions(current.Role, c.Entity())
}

// Can reports whether the current role may perform action.
func (c *Controller[T]) Can(action auth.Action) bool {
	return c.authorize(action) == nil
}

// List loads the collection.
func (c *Controller[T]) List(ctx context.Context, filters map[string]string) ([]T, error) {
	if err := c.authorize(auth.ActionList); err != nil {
		c.notifier.Error("No tiene permiso para ver "+c.route.Title, err)
		return nil, err
	}

	items, err := c.client.List(ctx, filters)
	if err != nil {
		c.notifier.Error("Error al cargar "+c.route.Title, err)
		return nil, err
	}

	return items, nil
}

// Create validates fields locally and, if they pass, creates the record.
func (c *Controller[T]) Create(ctx context.Context, fields resource.Fields) (*T, error) {
	if err := c.authorize(auth.ActionCreate); err != nil {
		c.notifier.Error("No tiene permiso para crear "+c.desc.Noun, err)
		return nil, err
	}

	data, err := clean(c.desc.Fields, fields)
	if err != nil {
		verr := &ValidationError{Invalid: []string{err.Error()}}
		c.notifier.Error(verr.Error(), nil)
		return nil, verr
	}

	if err := validate(c.validate, c.desc.Fields, data); err != nil {
		c.notifier.Error(err.Error(), nil)
		return nil, err
	}

	record, err := c.client.Create(ctx, typed(c.desc.Fields, data))
	if err != nil {
		c.notifier.Error("Error al crear "+c.desc.Noun, err)
		return nil, err
	}

	c.notifier.Success(c.desc.Created)

	return record, nil
}

// Delete removes the record after confirm approves. A declined prompt sends
// no request and reports false.
func (c *Controller[T]) Delete(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	if err := c.authorize(auth.ActionDelete); err != nil {
		c.notifier.Error("No tiene permiso para eliminar "+c.desc.Noun, err)
		return false, err
	}

	prompt := fmt.Sprintf("¿Está seguro de eliminar %s #%d?", c.desc.Noun, id)
	if confirm != nil && !confirm(prompt) {
		return false, nil
	}

	if err := c.client.Delete(ctx, id); err != nil {
		c.notifier.Error("Error al eliminar "+c.desc.Noun, err)
		return false, err
	}

	c.notifier.Success(c.desc.Deleted)

	return true, nil
}

// Render turns records into table rows.
func (c *Controller[T]) Render(items []T) *Table {
	table := &Table{Headers: make([]string, 0, len(c.desc.Columns))}
	for _, col := range c.desc.Columns {
		table.Headers = append(table.Headers, col.Header)
	}

	table.Rows = make([]Row, 0, len(items))
	for _, item := range items {
		row := Row{ID: c.desc.ID(item), Cells: make([]string, 0, len(c.desc.Columns))}
		for _, col := range c.desc.Columns {
			row.Cells = append(row.Cells, col.Value(item))
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

func (c *Controller[T]) Table(ctx context.Context, filters map[string]string) (*Table, error) {
	items, err := c.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return c.Render(items), nil
}

func (c *Controller[T]) Submit(ctx context.Context, fields resource.Fields) (int64, error) {
	record, err := c.Create(ctx, fields)
	if err != nil {
		return 0, err
	}
	return c.desc.ID(*record), nil
}

func (c *Controller[T]) Remove(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	return c.Delete(ctx, id, confirm)
}

func (c *Controller[T]) authorize(action auth.Action) error {
	return auth.RequirePermission(c.session.Current(), auth.PermissionFor(c.Entity(), action))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
