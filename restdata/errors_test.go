// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"testing"

	"github.com/diffeo/go-towel/resource"
	"github.com/stretchr/testify/assert"
)

func TestErrorRoundTrip(t *testing.T) {
	tests := []error{
		resource.ErrNoSuchItem{Kind: "contact", ID: 17},
		resource.ErrMissingItems{Kind: "contact", IDs: []int64{3, 9}},
		resource.ErrBadIdentifier{Value: "abc"},
		resource.ErrNoSuchField{Kind: "contact", Field: "shoe_size"},
	}
	for _, err := range tests {
		resp := ErrorResponse{Error: "error", Message: err.Error()}
		resp.FromError(ErrNotFound{Err: err})
		assert.NotEqual(t, "error", resp.Error, err.Error())
		assert.Equal(t, err, resp.ToError())
	}
}

func TestErrorPlain(t *testing.T) {
	err := errors.New("something broke")
	resp := ErrorResponse{Error: "error", Message: err.Error()}
	resp.FromError(err)
	assert.Equal(t, "error", resp.Error)
	assert.Equal(t, "", resp.Value)
	assert.EqualError(t, resp.ToError(), "something broke")
}

func TestErrorPanic(t *testing.T) {
	resp := ErrorResponse{}
	resp.FromPanic("oops")
	assert.Equal(t, "panic", resp.Error)
	assert.Equal(t, "oops", resp.Message)
	assert.NotEmpty(t, resp.Stack)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, 404, ErrNotFound{Err: errors.New("x")}.HTTPStatus())
	assert.Equal(t, 400, ErrBadRequest{Err: errors.New("x")}.HTTPStatus())
}
