package store

import "testing"

func TestMarshalNames(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"nil", nil, "[]"},
		{"empty", []string{}, "[]"},
		{"order kept", []string{"USB 2", "3.5mm", "Internal"}, `["USB 2","3.5mm","Internal"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalNames(tt.input)
			if err != nil {
				t.Fatalf("marshalNames() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnmarshalNames_Invalid(t *testing.T) {
	if _, err := unmarshalNames("{"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
