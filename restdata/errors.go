// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"

	"github.com/diffeo/go-towel/resource"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  This remaps the well-known resource errors to
// specific e.Error codes.
func (e *ErrorResponse) FromError(err error) {
	switch et := err.(type) {
	case resource.ErrNoSuchItem:
		e.Error = "ErrNoSuchItem"
		e.Value = et.Kind + "/" + strconv.FormatInt(et.ID, 10)
	case resource.ErrMissingItems:
		e.Error = "ErrMissingItems"
		e.Value = et.Kind + "/" + resource.FormatIDSet(et.IDs)
	case resource.ErrBadIdentifier:
		e.Error = "ErrBadIdentifier"
		e.Value = et.Value
	case resource.ErrNoSuchField:
		e.Error = "ErrNoSuchField"
		e.Value = et.Kind + "/" + et.Field
	case ErrNotFound:
		// Discard this wrapper and return the embedded error
		e.FromError(et.Err)
	case ErrBadRequest:
		e.FromError(et.Err)
	}
}

// ToError converts e back to a resource error, if that is possible.
// If not, returns a plain error with e.Message text.
func (e *ErrorResponse) ToError() error {
	kind, rest := e.Value, ""
	if slash := strings.Index(e.Value, "/"); slash >= 0 {
		kind, rest = e.Value[:slash], e.Value[slash+1:]
	}
	switch e.Error {
	case "ErrNoSuchItem":
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return resource.ErrNoSuchItem{Kind: kind, ID: id}
		}
	case "ErrMissingItems":
		if ids, err := resource.ParseIDSet(rest); err == nil {
			return resource.ErrMissingItems{Kind: kind, IDs: ids}
		}
	case "ErrBadIdentifier":
		return resource.ErrBadIdentifier{Value: e.Value}
	case "ErrNoSuchField":
		return resource.ErrNoSuchField{Kind: kind, Field: rest}
	}
	return errors.New(e.Message)
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//     defer func() {
//         if obj := recovered(); obj != nil {
//             resp := restdata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//    }
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	len := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:len])
}
