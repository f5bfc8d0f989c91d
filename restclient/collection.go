// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-towel/resource"
	"github.com/pkg/errors"
)

// Collection is a read-only resource.Collection served by a remote
// API.  Items are addressed through the canonical registration of
// the kind.
type Collection struct {
	client *Client
	kind   resource.Kind
}

// Collection returns a view of the remote items of a kind.  The
// server does not publish field lists, so the caller supplies the
// kind's declaration.
func (c *Client) Collection(kind resource.Kind) (*Collection, error) {
	if _, err := c.short(kind.Name); err != nil {
		return nil, err
	}
	return &Collection{client: c, kind: kind}, nil
}

// Kind returns the kind of the items.
func (coll *Collection) Kind() resource.Kind {
	return coll.kind
}

// Get retrieves a single item.
func (coll *Collection) Get(id int64) (resource.Item, error) {
	env, err := coll.client.Get(coll.kind.Name, id)
	if err != nil {
		return nil, err
	}
	return coll.item(env)
}

// GetMany retrieves the items that exist out of ids.  The server
// refuses sets with missing members, so those are dropped and the
// request is retried.  If the server reports missing items that were
// never requested, its error is returned.
func (coll *Collection) GetMany(ids []int64) ([]resource.Item, error) {
	for len(ids) > 0 {
		envs, err := coll.client.GetSet(coll.kind.Name, ids)
		if missing, ok := errors.Cause(err).(resource.ErrMissingItems); ok {
			remaining := without(ids, missing.IDs)
			if len(remaining) == len(ids) {
				return nil, err
			}
			ids = remaining
			continue
		}
		if err != nil {
			return nil, err
		}
		return coll.items(envs)
	}
	return nil, nil
}

func without(ids, drop []int64) []int64 {
	dropped := make(map[int64]bool, len(drop))
	for _, id := range drop {
		dropped[id] = true
	}
	var result []int64
	for _, id := range ids {
		if !dropped[id] {
			result = append(result, id)
		}
	}
	return result
}

// Count returns the number of items in the listing.
func (coll *Collection) Count() (int, error) {
	list, err := coll.client.List(coll.kind.Name, 1, nil)
	if err != nil {
		return 0, err
	}
	if list.Meta == nil {
		return 0, errors.New("listing has no pagination data")
	}
	return list.Meta.Count, nil
}

// Slice returns items of the listing by walking its pages.  The
// page size is whatever the server uses; it is learned from the
// first page.
func (coll *Collection) Slice(offset, limit int) ([]resource.Item, error) {
	if offset < 0 || limit <= 0 {
		return nil, nil
	}
	first, err := coll.client.List(coll.kind.Name, 1, nil)
	if err != nil {
		return nil, err
	}
	if first.Meta == nil {
		return nil, errors.New("listing has no pagination data")
	}
	if offset >= first.Meta.Count {
		return nil, nil
	}
	if first.Meta.Pages <= 1 {
		end := offset + limit
		if end > len(first.Objects) {
			end = len(first.Objects)
		}
		return coll.items(first.Objects[offset:end])
	}

	pageSize := len(first.Objects)
	var result []resource.Item
	for page := offset/pageSize + 1; page <= first.Meta.Pages && len(result) < limit; page++ {
		list := first
		if page != 1 {
			list, err = coll.client.List(coll.kind.Name, page, nil)
			if err != nil {
				return nil, err
			}
			if list.Meta == nil || list.Meta.Current != page {
				break
			}
		}
		start := 0
		if page == offset/pageSize+1 {
			start = offset % pageSize
		}
		if start >= len(list.Objects) {
			break
		}
		items, err := coll.items(list.Objects[start:])
		if err != nil {
			return nil, err
		}
		result = append(result, items...)
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (coll *Collection) items(envs []resource.Envelope) ([]resource.Item, error) {
	result := make([]resource.Item, len(envs))
	for i, env := range envs {
		item, err := coll.item(env)
		if err != nil {
			return nil, err
		}
		result[i] = item
	}
	return result, nil
}

func (coll *Collection) item(env resource.Envelope) (resource.Item, error) {
	id, err := coll.client.ParseDetailURI(coll.kind.Name, env.SelfURI())
	if err != nil {
		return nil, err
	}
	item := &remoteItem{
		id:     id,
		label:  env.DisplayLabel(),
		values: make(map[string]interface{}),
	}
	for _, field := range coll.kind.Fields {
		value, present := env[field.Name]
		if !present || value == nil {
			continue
		}
		if field.IsReference() {
			uri, ok := value.(string)
			if !ok {
				continue
			}
			ref, err := coll.client.ParseDetailURI(field.Target, uri)
			if err != nil {
				continue
			}
			item.values[field.Name] = ref
			continue
		}
		item.values[field.Name] = normalize(value)
	}
	return item, nil
}

// ParseDetailURI extracts the identifier from the detail URI of an
// item of kind.
func (c *Client) ParseDetailURI(kind, uri string) (int64, error) {
	short, err := c.short(kind)
	if err != nil {
		return 0, err
	}
	tmpl, err := c.URL.Parse(short.DetailURL)
	if err != nil {
		return 0, err
	}
	target, err := c.URL.Parse(uri)
	if err != nil {
		return 0, err
	}
	// The template path is unescaped by url.Parse, so "{id}" is
	// still visible in it.
	pattern := "{" + resource.IDParam + "}"
	split := strings.Index(tmpl.Path, pattern)
	if split < 0 {
		return 0, errors.Errorf("detail template %q has no %s", short.DetailURL, pattern)
	}
	prefix, suffix := tmpl.Path[:split], tmpl.Path[split+len(pattern):]
	path := target.Path
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) || len(path) < len(prefix)+len(suffix) {
		return 0, errors.Errorf("%q is not a %s URI", uri, kind)
	}
	value := path[len(prefix) : len(path)-len(suffix)]
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, resource.ErrBadIdentifier{Value: value}
	}
	return id, nil
}

// normalize turns decoded JSON numbers into the types local items
// use.
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case uint64:
		return int64(v)
	case float64:
		if v == float64(int64(v)) {
			return int64(v)
		}
	}
	return value
}

// remoteItem is an item decoded from an envelope.
type remoteItem struct {
	id     int64
	label  string
	values map[string]interface{}
}

func (i *remoteItem) ID() int64 {
	return i.id
}

func (i *remoteItem) String() string {
	return i.label
}

func (i *remoteItem) Value(field string) interface{} {
	return i.values[field]
}

// DetailURL returns the absolute URL of an item.
func (c *Client) DetailURL(kind string, id int64) (*url.URL, error) {
	short, err := c.short(kind)
	if err != nil {
		return nil, err
	}
	return c.Template(short.DetailURL, map[string]interface{}{
		resource.IDParam: strconv.FormatInt(id, 10),
	})
}
