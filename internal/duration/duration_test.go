package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   Duration
		wantOK bool
	}{
		{"years and months", "2 yrs 6 mos", Duration{2, 6}, true},
		{"single year", "1 yr", Duration{1, 0}, true},
		{"long words", "3 years 1 month", Duration{3, 1}, true},
		{"months only", "11 mos", Duration{0, 11}, true},
		{"no space", "4yrs 2mos", Duration{4, 2}, true},
		{"upper case", "2 YRS", Duration{2, 0}, true},
		{"embedded in caption", "Jan 2020 - Present · 5 yrs 2 mos", Duration{5, 2}, true},
		{"date range only", "Jan 2020 - Mar 2021", Duration{}, false},
		{"empty", "", Duration{}, false},
		{"garbage", "yrs mos", Duration{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(0, 0))
	assert.Equal(t, "1 yr", Format(1, 0))
	assert.Equal(t, "2 yrs", Format(2, 0))
	assert.Equal(t, "1 mo", Format(0, 1))
	assert.Equal(t, "6 mos", Format(0, 6))
	assert.Equal(t, "2 yrs 1 mo", Format(2, 1))
	assert.Equal(t, "1 yr 11 mos", Format(1, 11))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for y := 0; y <= 40; y++ {
		for m := 0; m <= 11; m++ {
			if y+m == 0 {
				continue
			}
			text := Format(y, m)
			got, ok := Parse(text)
			require.True(t, ok, text)
			assert.Equal(t, Duration{y, m}, got, text)
			assert.Equal(t, text, Format(got.Years, got.Months))
		}
	}
}

func TestFirstMatch(t *testing.T) {
	d, pos, ok := FirstMatch("Acme\nFull-time · 3 yrs 2 mos\nEngineer\n1 yr 1 mo")
	require.True(t, ok)
	assert.Equal(t, Duration{3, 2}, d)
	assert.Equal(t, 18, pos)

	d, pos, ok = FirstMatch("Oct 2023 - Present · 6 mos")
	require.True(t, ok)
	assert.Equal(t, Duration{0, 6}, d)
	assert.Equal(t, 22, pos)

	_, pos, ok = FirstMatch("Jan 2020 - Present")
	assert.False(t, ok)
	assert.Equal(t, -1, pos)
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, Duration{2, 0}, Duration{1, 6}.Add(Duration{0, 6}))
	assert.Equal(t, Duration{1, 2}, Duration{0, 14}.Normalize())
	assert.Equal(t, 30, Duration{2, 6}.TotalMonths())
	assert.Equal(t, Duration{}, FromMonths(-3))
	assert.True(t, Duration{}.IsZero())
	assert.Equal(t, "2 yrs 6 mos", Duration{2, 6}.String())
}
