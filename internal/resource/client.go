package resource

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/client"
	"github.com/wolfeidau/escuela/internal/models"
)

// Envelope is the paginated list format returned by every collection.
type Envelope[T any] struct {
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// Client maps one backend collection onto typed records.
type Client[T any] struct {
	api    *client.API
	entity Entity
}

// New creates a client for entity. api should authenticate its requests.
func New[T any](api *client.API, entity Entity) *Client[T] {
	return &Client[T]{api: api, entity: entity}
}

func NewStudents(api *client.API) *Client[models.Student] {
	return New[models.Student](api, Students)
}

func NewStaff(api *client.API) *Client[models.Staff] {
	return New[models.Staff](api, Staff)
}

func NewSubjects(api *client.API) *Client[models.Subject] {
	return New[models.Subject](api, Subjects)
}

func NewGrades(api *client.API) *Client[models.Grade] {
	return New[models.Grade](api, Grades)
}

func NewGradeRecords(api *client.API) *Client[models.GradeRecord] {
	return New[models.GradeRecord](api, GradeRecords)
}

func NewPeriods(api *client.API) *Client[models.Period] {
	return New[models.Period](api, Periods)
}

func NewInstitutions(api *client.API) *Client[models.Institution] {
	return New[models.Institution](api, Institutions)
}

// Entity returns the collection this client serves.
func (c *Client[T]) Entity() Entity {
	return c.entity
}

// Page fetches one page of the collection.
func (c *Client[T]) Page(ctx context.Context, filters map[string]string) (*Envelope[T], error) {
	query, err := c.entity.Query(filters)
	if err != nil {
		return nil, err
	}

	var page Envelope[T]
	if err := c.api.Do(ctx, client.Request{Method: http.MethodGet, Path: c.entity.Name, Query: query, Header: revalidate()}, &page); err != nil {
		return nil, err
	}

	if page.Results == nil {
		page.Results = []T{}
	}

	return &page, nil
}

// List returns the records of the first page. An empty page is an empty
// slice, never an error.
func (c *Client[T]) List(ctx context.Context, filters map[string]string) ([]T, error) {
	page, err := c.Page(ctx, filters)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("entity", c.entity.Name).Int("count", page.Count).Int("returned", len(page.Results)).Msg("listed records")

	return page.Results, nil
}

// Get fetches a single record.
func (c *Client[T]) Get(ctx context.Context, id int64) (*T, error) {
	var record T
	if err := c.api.Do(ctx, client.Request{Method: http.MethodGet, Path: c.itemPath(id), Header: revalidate()}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create posts a new record and returns the backend's copy.
func (c *Client[T]) Create(ctx context.Context, fields Fields) (*T, error) {
	body, err := c.entity.Encode(fields)
	if err != nil {
		return nil, err
	}

	var record T
	if err := c.api.Do(ctx, client.Request{Method: http.MethodPost, Path: c.entity.Name, Body: body}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update replaces a record.
func (c *Client[T]) Update(ctx context.Context, id int64, fields Fields) (*T, error) {
	body, err := c.entity.Encode(fields)
	if err != nil {
		return nil, err
	}

	var record T
	if err := c.api.Do(ctx, client.Request{Method: http.MethodPut, Path: c.itemPath(id), Body: body}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a record.
func (c *Client[T]) Delete(ctx context.Context, id int64) error {
	return c.api.Do(ctx, client.Request{Method: http.MethodDelete, Path: c.itemPath(id)}, nil)
}

// revalidate sends every read to the backend regardless of cached copies.
func revalidate() http.Header {
	return http.Header{"Cache-Control": []string{"no-cache"}}
}

func (c *Client[T]) itemPath(id int64) string {
	return c.entity.Name + "/" + strconv.FormatInt(id, 10)
}
