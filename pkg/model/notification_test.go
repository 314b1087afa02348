// pkg/model/notification_test.go
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeListHas(t *testing.T) {
	types := TypeList{TypeInApp, TypeEmail}
	assert.True(t, types.Has(TypeInApp))
	assert.True(t, types.Has(TypeEmail))
	assert.False(t, types.Has("sms"))
	assert.False(t, TypeList(nil).Has(TypeInApp))
}

func TestTypeListScanRoundTrip(t *testing.T) {
	original := TypeList{TypeInApp}
	value, err := original.Value()
	require.NoError(t, err)

	var scanned TypeList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)
}

func TestNotificationIsReadDerivedFromReadAt(t *testing.T) {
	n := Notification{ID: "n1", UserID: "u1"}
	assert.False(t, n.IsRead())

	now := time.Now()
	n.ReadAt = &now
	assert.True(t, n.IsRead())
}

func TestNotificationJSONCarriesDerivedIsRead(t *testing.T) {
	n := Notification{ID: "n1", UserID: "u1", Title: "t"}

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, false, decoded["is_read"])
	assert.Nil(t, decoded["read_at"])

	now := time.Now()
	n.ReadAt = &now
	data, err = json.Marshal(n)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["is_read"])
	assert.NotNil(t, decoded["read_at"])
}

func TestTemplateIsEmailOnly(t *testing.T) {
	email := Template{Types: TypeList{TypeEmail}}
	assert.True(t, email.IsEmailOnly())

	inApp := Template{Types: TypeList{TypeInApp}}
	assert.False(t, inApp.IsEmailOnly())

	mixed := Template{Types: TypeList{TypeInApp, TypeEmail}}
	assert.True(t, mixed.IsEmailOnly())
}
