package types

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSimpleDuration(t *testing.T) {
	type args struct {
		s string
	}
	tests := []struct {
		name    string
		args    args
		want    *SimpleDuration
		wantErr assert.ErrorAssertionFunc
	}{
		{
			name:    "3h",
			args:    args{s: "3h"},
			want:    &SimpleDuration{Num: 3, Unit: "h", Duration: Duration(3 * time.Hour)},
			wantErr: assert.NoError,
		},
		{
			name:    "3d",
			args:    args{s: "3d"},
			want:    &SimpleDuration{Num: 3, Unit: "d", Duration: Duration(3 * 24 * time.Hour)},
			wantErr: assert.NoError,
		},
		{
			name:    "3w",
			args:    args{s: "3w"},
			want:    &SimpleDuration{Num: 3, Unit: "w", Duration: Duration(3 * 7 * 24 * time.Hour)},
			wantErr: assert.NoError,
		},
		{
			name:    "800ms",
			args:    args{s: "800ms"},
			want:    nil,
			wantErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSimpleDuration(tt.args.s)
			if !tt.wantErr(t, err, fmt.Sprintf("ParseSimpleDuration(%v)", tt.args.s)) {
				return
			}
			assert.Equalf(t, tt.want, got, "ParseSimpleDuration(%v)", tt.args.s)
		})
	}
}

func TestDuration_Decode(t *testing.T) {
	var v struct {
		Quiet   Duration `json:"quiet" yaml:"quiet"`
		MaxWait Duration `json:"maxWait" yaml:"maxWait"`
		Expiry  Duration `json:"expiry" yaml:"expiry"`
	}

	t.Run("json", func(t *testing.T) {
		err := json.Unmarshal([]byte(`{"quiet":"800ms","maxWait":3,"expiry":"1d"}`), &v)
		require.NoError(t, err)
		assert.Equal(t, 800*time.Millisecond, v.Quiet.Duration())
		assert.Equal(t, 3*time.Second, v.MaxWait.Duration())
		assert.Equal(t, 24*time.Hour, v.Expiry.Duration())
	})

	t.Run("yaml", func(t *testing.T) {
		err := yaml.Unmarshal([]byte("quiet: 400ms\nmaxWait: 2.5\nexpiry: 2h\n"), &v)
		require.NoError(t, err)
		assert.Equal(t, 400*time.Millisecond, v.Quiet.Duration())
		assert.Equal(t, 2500*time.Millisecond, v.MaxWait.Duration())
		assert.Equal(t, 2*time.Hour, v.Expiry.Duration())
	})

	t.Run("invalid", func(t *testing.T) {
		err := json.Unmarshal([]byte(`{"quiet":"soon"}`), &v)
		assert.Error(t, err)
	})
}
