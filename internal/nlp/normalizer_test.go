package nlp

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Reunião", "reuniao"},
		{"AMANHÃ", "amanha"},
		{"café com pão", "cafe com pao"},
		{"already plain", "already plain"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "meeting with weekday and clock suffix",
			in:   "Reunião às 14h na sexta-feira",
			want: "meeting at 14:00 na friday",
		},
		{
			name: "financial verb and relative day",
			in:   "gastei 50 reais amanhã",
			want: "spent 50 reais tomorrow",
		},
		{
			name: "clock suffix with minutes",
			in:   "consulta 9h30",
			want: "appointment 9:30",
		},
		{
			name: "horas suffix",
			in:   "prova 8horas",
			want: "prova 8:00",
		},
		{
			name: "unknown words pass through",
			in:   "xyz abc",
			want: "xyz abc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
