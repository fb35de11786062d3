package domain

import "testing"

func TestRating_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rating  Rating
		wantErr error
	}{
		{name: "minimum", rating: 1, wantErr: nil},
		{name: "maximum", rating: 10, wantErr: nil},
		{name: "middle", rating: 7, wantErr: nil},
		{name: "zero", rating: 0, wantErr: ErrInvalidRating},
		{name: "too high", rating: 11, wantErr: ErrInvalidRating},
		{name: "negative", rating: -3, wantErr: ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rating.Validate(); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
