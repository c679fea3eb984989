// Package httpkit re-exports the platform http helpers for modules
// so handlers do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "eogfeat/internal/platform/net/http"
	"eogfeat/internal/platform/net/http/bind"
)

type (
	// Envelope is the transport envelope type
	Envelope = phttp.Envelope

	// Page is the pagination metadata type
	Page = phttp.Page

	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error returns a response that maps an error to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// List returns a 200 response with items and pagination
func List(items any, p Page) Response { return phttp.List(items, p) }

// JSON binds and validates a T body; fn may return a Response to pick its own status
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return respond(fn(r, in))
	})
}

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return respond(fn(r)) })
}

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

func respond(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}

// Get mounts a no-body handler for GET
func Get(r Router, path string, fn func(*http.Request) (any, error)) { r.Get(path, Call(fn)) }

// PostJSON mounts a JSON body handler for POST
func PostJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error)) {
	r.Post(path, JSON(fn))
}
