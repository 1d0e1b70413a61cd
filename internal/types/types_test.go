package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString(t *testing.T) {
	var v struct {
		Year     FlexString `json:"year"`
		Accuracy FlexString `json:"accuracy"`
		Missing  FlexString `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"year":2022,"accuracy":"97%","missing":null}`), &v))
	assert.Equal(t, "2022", v.Year.String())
	assert.Equal(t, "97%", v.Accuracy.String())
	assert.Empty(t, v.Missing)

	require.NoError(t, json.Unmarshal([]byte(`{"year":97.5}`), &v))
	assert.Equal(t, "97.5", v.Year.String())

	assert.Error(t, json.Unmarshal([]byte(`{"year":{"a":1}}`), &v))
}

func TestFlexList(t *testing.T) {
	var v struct {
		Names FlexList[string] `json:"names"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"names":"Nine Eleven"}`), &v))
	assert.Equal(t, []string{"Nine Eleven"}, v.Names.Slice())

	require.NoError(t, json.Unmarshal([]byte(`{"names":["GT3","GT3 RS"]}`), &v))
	assert.Equal(t, []string{"GT3", "GT3 RS"}, v.Names.Slice())

	assert.Error(t, json.Unmarshal([]byte(`{"names":[1]}`), &v))
}

func TestStorageError(t *testing.T) {
	assert.NoError(t, NewStorageError("local", "saveScan", KindWrite, nil))

	cause := errors.New("disk full")
	err := fmt.Errorf("wrapped: %w", NewStorageError("local", "saveScan", KindWrite, cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindWrite))
	assert.False(t, IsKind(err, KindRead))
	assert.False(t, IsKind(cause, KindWrite))
	assert.Contains(t, err.Error(), "local write saveScan: disk full")
}

func TestCustomError(t *testing.T) {
	err := &CustomError{Code: 403, Message: "Invalid session", Type: "authorization"}
	assert.Equal(t, "403: Invalid session [type: authorization]", err.Error())
}
