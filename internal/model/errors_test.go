package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	cases := map[error]string{
		fmt.Errorf("photo.txt: %w", ErrUnsupportedType): "UnsupportedType",
		fmt.Errorf("x.png: %w", ErrInvalidImage):        "InvalidImage",
		ErrUnauthorized:                                 "Unauthorized",
		fmt.Errorf("read dir: %w", ErrListing):          "InternalListingError",
		ErrNotFound:                                     "NotFound",
		errors.New("disk full"):                         "ProcessingFailed",
	}
	for err, want := range cases {
		assert.Equal(t, want, ErrorKind(err), err.Error())
	}
}

func TestBatchResultAdd(t *testing.T) {
	var b BatchResult
	b.Add("bad.png", nil, fmt.Errorf("bad.png: %w", ErrInvalidImage))
	assert.False(t, b.Success)

	b.Add("good.png", &StoreResult{Filename: "20240101T000000Z_abc.png"}, nil)
	assert.True(t, b.Success)
	assert.Len(t, b.Items, 1)
	assert.Len(t, b.Errors, 1)
	assert.Equal(t, "InvalidImage", b.Errors[0].Kind)
}

func TestStoreResultJSON(t *testing.T) {
	data, err := json.Marshal(StoreResult{Filename: "a.png", ThumbnailErr: ErrThumbnailFailed})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"filename":"a.png","thumbnail":null,"skipped":false}`, string(data))

	data, err = json.Marshal(StoreResult{Filename: "a.png", Thumbnail: "a.thumb.jpg", Skipped: true})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"filename":"a.png","thumbnail":"a.thumb.jpg","skipped":true}`, string(data))
}
