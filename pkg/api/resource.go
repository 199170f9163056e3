package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/0xmhha/squad-console/pkg/model"
)

// Resource is a REST collection of T edited through drafts of type D.
// It satisfies query.Lister[T] and mutation.Resource[T, D].
type Resource[T model.Entity, D any] struct {
	c    *Client
	path string
}

// NewResource binds a collection path such as "/players".
func NewResource[T model.Entity, D any](c *Client, path string) *Resource[T, D] {
	return &Resource[T, D]{c: c, path: path}
}

// Players is the /players collection. FilterID selects a team.
func Players(c *Client) *Resource[model.Player, model.PlayerDraft] {
	return NewResource[model.Player, model.PlayerDraft](c, "/players")
}

// Teams is the /teams collection.
func Teams(c *Client) *Resource[model.Team, model.TeamDraft] {
	return NewResource[model.Team, model.TeamDraft](c, "/teams")
}

// Members is the /members collection. Admin only.
func Members(c *Client) *Resource[model.User, model.MemberDraft] {
	return NewResource[model.User, model.MemberDraft](c, "/members")
}

// Comments is the comment collection of one player.
func Comments(c *Client, playerID string) *Resource[model.Comment, model.CommentDraft] {
	return NewResource[model.Comment, model.CommentDraft](c, "/players/"+url.PathEscape(playerID)+"/comments")
}

// Path returns the collection path.
func (r *Resource[T, D]) Path() string {
	return r.path
}

// List fetches one page.
func (r *Resource[T, D]) List(ctx context.Context, params model.ListParams) (model.ListResult[T], error) {
	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.FilterID != "" {
		q.Set("filterId", params.FilterID)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	var res model.ListResult[T]
	if err := r.c.do(ctx, http.MethodGet, r.path, q, nil, &res); err != nil {
		return model.ListResult[T]{}, err
	}
	if res.Items == nil {
		res.Items = []T{}
	}
	return res, nil
}

// Get fetches one entity.
func (r *Resource[T, D]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Create posts a draft and returns the stored entity.
func (r *Resource[T, D]) Create(ctx context.Context, draft D) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPost, r.path, nil, draft, &out)
	return out, err
}

// Update puts a draft and returns the stored entity.
func (r *Resource[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), nil, draft, &out)
	return out, err
}

// Delete removes one entity.
func (r *Resource[T, D]) Delete(ctx context.Context, id string) error {
	var res ack
	if err := r.c.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil, &res); err != nil {
		return err
	}
	return res.check(http.StatusOK)
}
