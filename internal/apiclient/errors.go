package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error is a non-2xx response from the backend. Message and Details are the
// user-facing rendition of a {"detail": ...} body when the backend sent one.
type Error struct {
	Method  string
	Path    string
	Status  int
	Body    string
	Message string
	Details []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error %d: %s", e.Status, e.Body)
}

// Redirect tells the web layer where an auth failure should send the user.
type Redirect int

const (
	NoRedirect Redirect = iota
	RedirectLogin
	RedirectSelectTenant
)

// Path is the console route for the redirect, or "" for NoRedirect.
func (r Redirect) Path() string {
	switch r {
	case RedirectLogin:
		return "/login"
	case RedirectSelectTenant:
		return "/select-tenant"
	default:
		return ""
	}
}

// Redirect classifies the failure. Any classified failure means the cached
// tenant credentials must be dropped.
func (e *Error) Redirect() Redirect {
	switch {
	case e.Status == 401:
		return RedirectLogin
	case e.Status == 404 && strings.Contains(e.Body, "Tenant"):
		return RedirectSelectTenant
	case e.Status == 400 && strings.Contains(e.Body, "X-Tenant"):
		return RedirectLogin
	default:
		return NoRedirect
	}
}

type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

type detailItem struct {
	Msg string `json:"msg"`
}

func newError(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, Status: status, Body: string(body)}
	e.Message = e.Error()

	var parsed detailBody
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Detail) == 0 {
		return e
	}

	var text string
	if err := json.Unmarshal(parsed.Detail, &text); err == nil {
		e.Message = text
		return e
	}

	var items []detailItem
	if err := json.Unmarshal(parsed.Detail, &items); err == nil {
		e.Message = "Error de validación"
		for _, it := range items {
			if it.Msg != "" {
				e.Details = append(e.Details, it.Msg)
			}
		}
	}
	return e
}

// TransportError wraps a request that never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError is raised before any request when form input is invalid.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// ErrorState is the banner shown above a list or form.
type ErrorState struct {
	Message string
	Details []string
}

// StateFromError normalizes any error into the banner shape. A nil error
// yields a nil state.
func StateFromError(err error) *ErrorState {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return &ErrorState{Message: apiErr.Message, Details: apiErr.Details}
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return &ErrorState{Message: vErr.Message, Details: vErr.Details}
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		return &ErrorState{Message: "No se pudo conectar con el servidor", Details: []string{tErr.Err.Error()}}
	}

	return &ErrorState{Message: "Ha ocurrido un error inesperado"}
}
