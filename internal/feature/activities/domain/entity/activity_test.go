package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "planned", want: StatusPlanned},
		{in: "in_progress", want: StatusInProgress},
		{in: "completed", want: StatusCompleted},
		{in: "", wantErr: true},
		{in: "Planned", wantErr: true},
		{in: "done", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatuses_AllValid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.Valid(), s)
	}
	assert.Equal(t, StatusPlanned, DefaultStatus)
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2025-11-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2025-11-03", FormatDate(d))

	for _, bad := range []string{"", "2025-13-01", "2025-02-30", "03/11/2025", "2025-11-03T10:00:00Z", "not-a-date"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestKnownTypes(t *testing.T) {
	assert.Equal(t, []string{"workout", "meal", "steps"}, KnownTypes())
}
