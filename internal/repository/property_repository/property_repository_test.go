package property_repository

import (
	"testing"

	"property_search/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAmenities(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []domain.Amenity
		wantErr bool
	}{
		{name: "empty column", raw: "", want: nil},
		{name: "empty array", raw: "[]", want: nil},
		{
			name: "two amenities",
			raw:  `[{"id":1,"name":"Pileta"},{"id":4,"name":"Quincho"}]`,
			want: []domain.Amenity{{ID: 1, Name: "Pileta"}, {ID: 4, Name: "Quincho"}},
		},
		{name: "broken json", raw: `[{"id":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeAmenities([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
