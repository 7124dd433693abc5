package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScan(t *testing.T) {
	cases := map[string]interface{}{
		"time":   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.FixedZone("x", 3600)),
		"bytes":  []byte("2024-01-15"),
		"string": "2024-01-15T00:00:00Z",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(src))
			assert.Equal(t, "2024-01-15", d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(nil))
	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2024, time.January, 15).Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), v)
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"1999-12-31"`)))
	assert.True(t, d.Equal(NewDate(1999, time.December, 31)))

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1999-12-31"`, string(b))

	assert.Error(t, d.UnmarshalJSON([]byte(`"not a date"`)))
}
