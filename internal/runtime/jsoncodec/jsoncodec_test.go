package jsoncodec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	Message string `json:"message"`
	Color   string `json:"color,omitempty"`
	Notify  bool   `json:"notify"`
}

func TestMarshalUnmarshal(t *testing.T) {
	data, err := Marshal(reply{Message: "pong", Notify: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"pong","notify":true}`, string(data))

	var decoded reply
	require.NoError(t, Unmarshal(data, &decoded))
	assert.Equal(t, "pong", decoded.Message)
	assert.True(t, decoded.Notify)
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(reply{Message: "hi"}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"message\": \"hi\"")
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, reply{Message: "echo", Color: "green"}))

	var decoded reply
	require.NoError(t, Decode(strings.NewReader(buf.String()), &decoded))
	assert.Equal(t, "green", decoded.Color)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`{"event":"room_message"}`)))
	assert.False(t, Valid([]byte(`{"event":`)))
}
