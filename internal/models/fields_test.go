package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventFieldsPreserveOrder(t *testing.T) {
	var fields EventFields
	err := json.Unmarshal([]byte(`{"zebra":"1","apple":2,"mango":true}`), &fields)

	require.NoError(t, err)
	require.Equal(t, []string{"zebra", "apple", "mango"}, fields.Names())
	require.Equal(t, "1", fields[0].ValueString())
	require.Equal(t, "2", fields[1].ValueString())
	require.Equal(t, "true", fields[2].ValueString())
}

func TestEventFieldsRejectNestedValues(t *testing.T) {
	cases := []string{
		`{"nested":{"a":1}}`,
		`{"list":[1,2]}`,
		`{"missing":null}`,
		`["not","an","object"]`,
		`"scalar"`,
	}
	for _, body := range cases {
		var fields EventFields
		require.Error(t, json.Unmarshal([]byte(body), &fields), "body %s", body)
	}
}

func TestEventFieldsRoundTrip(t *testing.T) {
	in := []byte(`{"b":"two","a":1,"c":false}`)

	var fields EventFields
	require.NoError(t, json.Unmarshal(in, &fields))

	out, err := json.Marshal(fields)
	require.NoError(t, err)
	require.Equal(t, `{"b":"two","a":1,"c":false}`, string(out))
}

func TestEventFieldsPreserveNumberPrecision(t *testing.T) {
	var fields EventFields
	require.NoError(t, json.Unmarshal([]byte(`{"amount":49.99,"big":9007199254740993}`), &fields))

	require.Equal(t, "49.99", fields[0].ValueString())
	require.Equal(t, "9007199254740993", fields[1].ValueString())
}

func TestEventFieldsEmptyObject(t *testing.T) {
	var fields EventFields
	require.NoError(t, json.Unmarshal([]byte(`{}`), &fields))
	require.Empty(t, fields)

	out, err := json.Marshal(fields)
	require.NoError(t, err)
	require.Equal(t, `{}`, string(out))
}
