package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "paging disabled",
			cfg:     Config{},
			wantErr: false,
		},
		{
			name:    "page and size",
			cfg:     Config{Page: 3, PageSize: 10},
			wantErr: false,
		},
		{
			name:    "negative page size invalid",
			cfg:     Config{PageSize: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "negative page invalid",
			cfg:     Config{Page: -2, PageSize: 5},
			wantErr: true,
			errMsg:  "non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, Config{}.TotalPages(42))
	assert.Equal(t, 0, Config{PageSize: 10}.TotalPages(0))
	assert.Equal(t, 1, Config{PageSize: 10}.TotalPages(10))
	assert.Equal(t, 2, Config{PageSize: 10}.TotalPages(11))
	assert.Equal(t, 5, Config{PageSize: 3}.TotalPages(13))
}

func TestApply(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name string
		cfg  Config
		want []int
	}{
		{name: "inactive returns all", cfg: Config{Page: 2}, want: items},
		{name: "first page", cfg: Config{Page: 1, PageSize: 3}, want: []int{1, 2, 3}},
		{name: "page zero is first page", cfg: Config{PageSize: 3}, want: []int{1, 2, 3}},
		{name: "middle page", cfg: Config{Page: 2, PageSize: 3}, want: []int{4, 5, 6}},
		{name: "partial last page", cfg: Config{Page: 3, PageSize: 3}, want: []int{7}},
		{name: "past the end", cfg: Config{Page: 9, PageSize: 3}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.cfg, items))
		})
	}
}

func TestBoundsEmpty(t *testing.T) {
	start, end := Config{Page: 1, PageSize: 5}.Bounds(0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}
