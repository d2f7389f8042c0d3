package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SportHub/pkg/kit"
)

// TokenSource yields the bearer token for the next request. Implementations
// refresh the token before it expires.
type TokenSource func() (string, error)

// RemoteStore is a Repository backed by another instance of this service's
// collection API, e.g. http://host:8080/cities.
type RemoteStore[T any] struct {
	BaseURL string
	Client  *http.Client
	// Token is nil for anonymous access.
	Token TokenSource

	schema Schema[T]
}

func NewRemoteStore[T any](baseURL string, schema Schema[T]) *RemoteStore[T] {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &RemoteStore[T]{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
		schema:  schema,
	}
}

func (c *RemoteStore[T]) Ping(ctx context.Context) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}
	u.Path = "/readyz"
	return c.do(ctx, http.MethodGet, u.String(), nil, nil)
}

func (c *RemoteStore[T]) All(ctx context.Context) ([]T, error) {
	var page Page[T]
	if err := c.do(ctx, http.MethodGet, c.BaseURL, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *RemoteStore[T]) Search(ctx context.Context, q string) ([]T, error) {
	var page Page[T]
	target := c.BaseURL + "?q=" + url.QueryEscape(q)
	if err := c.do(ctx, http.MethodGet, target, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *RemoteStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var v T
	err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &v)
	if errors.Is(err, ErrNotFound) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

func (c *RemoteStore[T]) Add(ctx context.Context, v T) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPost, c.BaseURL, v, &out)
	return out, err
}

// Update fetches the record, applies fn locally and writes the result back
// with PUT. It is not atomic across clients.
func (c *RemoteStore[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	var zero T

	cur, ok, err := c.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, notFound(c.schema.Kind, id)
	}
	next, err := fn(cur)
	if err != nil {
		return zero, err
	}
	if c.schema.ID(next) != id {
		return zero, &ValidationError{Kind: c.schema.Kind, Field: "id", Reason: "is immutable"}
	}

	var out T
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), next, &out); err != nil {
		return zero, err
	}
	return out, nil
}

func (c *RemoteStore[T]) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *RemoteStore[T]) itemURL(id string) string {
	return c.BaseURL + "/" + url.PathEscape(id)
}

func (c *RemoteStore[T]) do(ctx context.Context, method, target string, body, out any) error {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.schema.Kind, err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != nil {
		tok, err := c.Token()
		if err != nil {
			return fmt.Errorf("%s token: %w", c.schema.Kind, err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return transient(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return notFound(c.schema.Kind, target)
	case resp.StatusCode == http.StatusBadRequest:
		return decodeValidation(resp.Body, c.schema.Kind)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: status=%d: %w", method, target, resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode == http.StatusConflict:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: %w", c.schema.Kind, ErrConflict)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return transient(fmt.Errorf("%s %s: status=%d", method, target, resp.StatusCode))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", c.schema.Kind, err)
	}
	return nil
}

func decodeValidation(body io.Reader, kind string) error {
	var env struct {
		kit.ErrorResponse
		Details *ValidationError `json:"details"`
	}
	if err := json.NewDecoder(body).Decode(&env); err != nil || env.Details == nil {
		return &ValidationError{Kind: kind, Field: "body", Reason: "rejected by remote"}
	}
	return env.Details
}
