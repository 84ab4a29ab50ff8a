package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeUnixConversions(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	tt := Time(fixed)

	assert.Equal(t, fixed.Unix(), tt.Unix())
	assert.Equal(t, fixed.UnixMilli(), tt.UnixMilli())
	assert.Equal(t, fixed.UnixMicro(), tt.UnixMicro())
	assert.Equal(t, fixed.UnixNano(), tt.UnixNano())
}

func TestTimeJSON(t *testing.T) {
	t.Run("zero value marshals to null", func(t *testing.T) {
		data, err := Time(time.Time{}).MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("round trip keeps the second precision", func(t *testing.T) {
		orig := Time(time.Date(2024, 6, 15, 9, 30, 45, 0, time.Local))
		data, err := orig.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `"2024-06-15 09:30:45"`, string(data))

		var parsed Time
		require.NoError(t, parsed.UnmarshalJSON(data))
		assert.Equal(t, orig.Unix(), parsed.Unix())
	})

	t.Run("null and empty string unmarshal to zero", func(t *testing.T) {
		for _, raw := range []string{"null", `""`} {
			var parsed Time
			require.NoError(t, parsed.UnmarshalJSON([]byte(raw)))
			assert.True(t, parsed.IsZero())
		}
	})

	t.Run("accepts RFC3339 input", func(t *testing.T) {
		var parsed Time
		require.NoError(t, parsed.UnmarshalJSON([]byte(`"2024-06-15T09:30:45Z"`)))
		assert.False(t, parsed.IsZero())
	})
}

func TestTimeDatabaseRoundTrip(t *testing.T) {
	t.Run("zero value stores as NULL", func(t *testing.T) {
		v, err := Time(time.Time{}).Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("scan supports driver representations", func(t *testing.T) {
		fixed := time.Date(2024, 6, 15, 9, 30, 45, 0, time.Local)

		var fromTime Time
		require.NoError(t, fromTime.Scan(fixed))
		assert.Equal(t, fixed.Unix(), fromTime.Unix())

		var fromString Time
		require.NoError(t, fromString.Scan("2024-06-15 09:30:45"))
		assert.Equal(t, fixed.Unix(), fromString.Unix())

		var fromBytes Time
		require.NoError(t, fromBytes.Scan([]byte("2024-06-15 09:30:45")))
		assert.Equal(t, fixed.Unix(), fromBytes.Unix())

		var fromNil Time
		require.NoError(t, fromNil.Scan(nil))
		assert.True(t, fromNil.IsZero())
	})

	t.Run("scan rejects unsupported types", func(t *testing.T) {
		var tt Time
		assert.Error(t, tt.Scan(42))
	})
}
