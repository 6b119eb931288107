package taxii

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPreservesPropertyOrder(t *testing.T) {
	input := `{"type":"indicator","spec_version":"2.1","id":"indicator--1","created":"2024-01-01T00:00:00.000Z","modified":"2024-01-02T00:00:00.000Z","name":"Bad IP","pattern":"[ipv4-addr:value = '1.2.3.4']","x_custom":{"b":1,"a":2}}`

	var obj Object
	require.NoError(t, json.Unmarshal([]byte(input), &obj))

	assert.Equal(t, "indicator--1", obj.ID())
	assert.Equal(t, "indicator", obj.Type())
	assert.Equal(t, "Bad IP", obj.Name())
	assert.Equal(t, "2024-01-01T00:00:00.000Z", obj.Created())
	assert.Equal(t, "2024-01-02T00:00:00.000Z", obj.Modified())
	assert.Equal(t, []string{"spec_version", "name", "pattern", "x_custom"}, obj.Extensions())
	assert.Empty(t, obj.Missing())

	out, err := json.Marshal(&obj)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestObjectMissing(t *testing.T) {
	var obj Object
	require.NoError(t, json.Unmarshal([]byte(`{"type":"note","id":"note--1"}`), &obj))
	assert.Equal(t, []string{"created", "modified"}, obj.Missing())
	assert.Equal(t, "", obj.Name())
}

func TestNewObject(t *testing.T) {
	obj := NewObject("malware--1", "malware", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z")
	require.NoError(t, obj.Set("name", "Emotet"))
	require.NoError(t, obj.Set("type", "malware"))

	assert.Equal(t, []string{"type", "id", "created", "modified", "name"}, obj.Keys())

	raw, ok := obj.Get("name")
	require.True(t, ok)
	assert.JSONEq(t, `"Emotet"`, string(raw))
}

func TestNilObject(t *testing.T) {
	var obj *Object
	assert.Equal(t, "", obj.ID())
	assert.Nil(t, obj.Keys())
}

func TestEnvelopeDecodesObjects(t *testing.T) {
	input := `{"more":true,"next":"p2","objects":[{"type":"indicator","id":"indicator--1"},{"type":"malware","id":"malware--1","name":"X"}]}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(input), &env))
	assert.True(t, env.More)
	assert.Equal(t, "p2", env.Next)
	require.Len(t, env.Objects, 2)
	assert.Equal(t, "X", env.Objects[1].Name())
}
