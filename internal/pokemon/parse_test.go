package pokemon

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]int
		wantErr error
		badKey  string
	}{
		{
			name:  "comma separated",
			input: "level: 5, health: 22",
			want:  map[string]int{"level": 5, "health": 22},
		},
		{
			name:  "newline separated",
			input: "level: 5\nattack: 10",
			want:  map[string]int{"level": 5, "attack": 10},
		},
		{
			name:  "keys normalised",
			input: "  LeVeL : 7 ,SPATK:3",
			want:  map[string]int{"level": 7, "spatk": 3},
		},
		{
			name:  "newline wins over comma",
			input: "level: 5\nspeed: 1",
			want:  map[string]int{"level": 5, "speed": 1},
		},
		{
			name:    "non integer value",
			input:   "level: 5\nattack: nine",
			wantErr: ErrFormat,
		},
		{
			name:   "unknown stat",
			input:  "level: 5, charm: 3",
			badKey: "charm",
		},
		{
			name:    "missing colon",
			input:   "level 5",
			wantErr: ErrFormat,
		},
		{
			name:    "empty key",
			input:   ": 5",
			wantErr: ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStats(tt.input)

			switch {
			case tt.badKey != "":
				var statErr *InvalidStatError
				require.True(t, errors.As(err, &statErr))
				assert.Equal(t, tt.badKey, statErr.Key)
				assert.Nil(t, got)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("ParseStats mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestParseStatsCommitsNothingOnBadKey(t *testing.T) {
	stats := map[string]int{"level": 1}

	parsed, err := ParseStats("attack: 10, luck: 2")
	require.Error(t, err)
	for k, v := range parsed {
		stats[k] = v
	}

	assert.Equal(t, map[string]int{"level": 1}, stats)
}

func TestParseMeta(t *testing.T) {
	got, err := ParseMeta("Nature: hasty, color:  brown ")
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]string{"nature": "hasty", "color": "brown"}, got); diff != "" {
		t.Errorf("ParseMeta mismatch (-want +got):\n%s", diff)
	}

	got, err = ParseMeta("caught at: 12:30")
	require.NoError(t, err)
	assert.Equal(t, "12:30", got["caught at"])

	_, err = ParseMeta("just words")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	_, err = ParseID("twelve")
	assert.Error(t, err)

	_, err = ParseID("-1")
	assert.Error(t, err)
}
