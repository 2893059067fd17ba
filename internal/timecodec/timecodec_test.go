package timecodec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace", "   \t", ""},
		{"full form", "1:23:45.678", "01:23:45.678"},
		{"full form padded", "01:23:45.678", "01:23:45.678"},
		{"minute form", "1:23.456", "00:01:23.456"},
		{"second form", "23.456", "00:00:23.456"},
		{"short fraction", "1:30.5", "00:01:30.500"},
		{"two digit fraction", "14.16", "00:00:14.160"},
		{"signed", "+5.404", "+00:00:05.404"},
		{"signed with gap", "+ 14.16", "+00:00:14.160"},
		{"signed with gap and padding", " + 14.16 ", "+00:00:14.160"},
		{"surrounding whitespace", "  1:02.003  ", "00:01:02.003"},
		{"malformed kept", "abc", "abc"},
		{"malformed trimmed", "  1 lap ", "1 lap"},
		{"too many fraction digits", "1:23.4567", "1:23.4567"},
		{"missing fraction", "1:23", "1:23"},
		{"dnf sentinel", "DNF", "DNF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "1:23:45.678", "1:23.456", "23.456", "+5.404", "+ 14.16",
		" + abc ", "99:59:59.999", "0.1", "garbage", "1:2:3.4", "+",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestIsValidTimeFormat(t *testing.T) {
	valid := []string{"", "01:23:45.678", "1:23:45.6", "+00:00:05.404", "12:00:00.12"}
	for _, in := range valid {
		assert.True(t, IsValidTimeFormat(in), "expected %q to be valid", in)
	}

	invalid := []string{"1:23.456", "23.456", "abc", "001:23:45.678", "01:23:45", "01:23:45.6789", "+ 00:00:05.404"}
	for _, in := range invalid {
		assert.False(t, IsValidTimeFormat(in), "expected %q to be invalid", in)
	}
}

func TestParseTimeToMs(t *testing.T) {
	ms, ok := ParseTimeToMs("01:23:45.678")
	require.True(t, ok)
	assert.Equal(t, int64(5025678), ms)

	ms, ok = ParseTimeToMs("0:01:30.5")
	require.True(t, ok)
	assert.Equal(t, int64(90500), ms)

	for _, in := range []string{"", "   ", "+00:00:01.000", "1:30.000", "abc"} {
		_, ok := ParseTimeToMs(in)
		assert.False(t, ok, "expected %q to be rejected", in)
	}
}

func TestFormatMsToTime(t *testing.T) {
	assert.Equal(t, "00:00:00.000", FormatMsToTime(0))
	assert.Equal(t, "01:23:45.678", FormatMsToTime(5025678))
	assert.Equal(t, "00:01:30.500", FormatMsToTime(90500))
	assert.Equal(t, "123:00:00.001", FormatMsToTime(123*msPerHour+1))
	assert.Equal(t, "-00:00:01.500", FormatMsToTime(-1500))
}

func TestFormatParseRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	values := []int64{0, 1, 999, 1000, 59999, 60000, 3599999, 3600000, 99*msPerHour + 59*msPerMinute + 59999, 100 * msPerHour}
	for i := 0; i < 1000; i++ {
		values = append(values, r.Int63n(500*msPerHour))
	}

	for _, v := range values {
		got, ok := ParseTimeToMs(FormatMsToTime(v))
		require.True(t, ok, "value %d", v)
		assert.Equal(t, v, got)
	}
}

func TestCalculateRaceTimeFromDifference(t *testing.T) {
	leader := int64(5025678)
	diff := int64(2104)

	got, ok := CalculateRaceTimeFromDifference(&leader, &diff)
	require.True(t, ok)
	assert.Equal(t, "01:23:47.782", got)

	_, ok = CalculateRaceTimeFromDifference(nil, &diff)
	assert.False(t, ok)

	_, ok = CalculateRaceTimeFromDifference(&leader, nil)
	assert.False(t, ok)
}

func TestInspect(t *testing.T) {
	in := Inspect("+ 2.5")
	assert.Equal(t, "+00:00:02.500", in.Normalized)
	assert.True(t, in.Valid)
	require.NotNil(t, in.Ms)
	assert.Equal(t, int64(2500), *in.Ms)

	empty := Inspect("  ")
	assert.True(t, empty.Valid)
	assert.Nil(t, empty.Ms)

	bad := Inspect("1:2:3")
	assert.Equal(t, "1:2:3", bad.Normalized)
	assert.False(t, bad.Valid)
	assert.Nil(t, bad.Ms)
}

func TestFormatMsToTime_Extremes(t *testing.T) {
	assert.Equal(t, "2562047788015:12:55.807", FormatMsToTime(math.MaxInt64))
	assert.Equal(t, "-2562047788015:12:55.808", FormatMsToTime(math.MinInt64))
	assert.Equal(t, "99:59:59.999", FormatMsToTime(MaxValidMs))
	assert.True(t, IsValidTimeFormat(FormatMsToTime(MaxValidMs)))
	assert.False(t, IsValidTimeFormat(FormatMsToTime(MaxValidMs+1)))
}

func TestParseTimeToMs_Overflow(t *testing.T) {
	ms, ok := ParseTimeToMs("2562047788015:12:55.807")
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), ms)

	for _, in := range []string{
		"2562047788015:12:55.808",
		"2562047788016:00:00.000",
		"99999999999999999999:00:00.000",
	} {
		_, ok := ParseTimeToMs(in)
		assert.False(t, ok, in)
	}
}
