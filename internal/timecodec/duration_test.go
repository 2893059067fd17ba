package timecodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationBridge(t *testing.T) {
	assert.Equal(t, 90*time.Second+500*time.Millisecond, Duration(90500))
	assert.Equal(t, int64(90500), FromDuration(90*time.Second+500*time.Millisecond+999*time.Microsecond))
	assert.Equal(t, int64(0), FromDuration(Duration(0)))
}

func TestTimespanFormat(t *testing.T) {
	assert.Equal(t, "01:30.100", Timespan(Duration(90100)).Format(LapLayout))
	assert.Equal(t, "01:02:03", Timespan(Duration(3723000)).Format("15:04:05"))
}

func TestFormatLap(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"00:01:30.100", "01:30.100"},
		{"00:00:59.999", "00:59.999"},
		{"01:00:00.000", "01:00:00.000"},
		{"", ""},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLap(tt.in))
		})
	}
}
