package param

import "testing"

func TestActivationDelay(t *testing.T) {
	p := Mainnet()

	tests := []struct {
		name                    string
		height                  int32
		controllingHeightValid  int32
		hasController           bool
		want                    int32
	}{
		{"uncontrolled name activates immediately", 100, 0, false, 0},
		{
			name:                   "long-held name delay caps via factor",
			height:                 10000,
			controllingHeightValid: 0,
			hasController:          true,
			want:                   312, // min(4032, 10000/32)
		},
		{
			name:                   "very old name hits the max delay cap",
			height:                 1_000_000,
			controllingHeightValid: 0,
			hasController:          true,
			want:                   4032,
		},
		{
			name:                   "freshly active controller, short age",
			height:                 150,
			controllingHeightValid: 100,
			hasController:          true,
			want:                   1, // 50/32 == 1
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := p.ActivationDelay(tc.height, tc.controllingHeightValid, tc.hasController)
			if got != tc.want {
				t.Fatalf("ActivationDelay(%d, %d, %v) = %d, want %d",
					tc.height, tc.controllingHeightValid, tc.hasController, got, tc.want)
			}
		})
	}
}
