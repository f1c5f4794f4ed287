package nlp

import "testing"

func TestExtractExpense(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		wantOK        bool
		wantAmount    string
		wantDirection Direction
	}{
		{
			name:          "spent with currency word",
			in:            "gastei 50 reais no mercado",
			wantOK:        true,
			wantAmount:    "50",
			wantDirection: DirectionLoss,
		},
		{
			name:          "salary is a gain even without a verb",
			in:            "salário de 2500 caiu",
			wantOK:        true,
			wantAmount:    "2500",
			wantDirection: DirectionGain,
		},
		{
			name:          "received is a gain",
			in:            "recebi 120 do freela",
			wantOK:        true,
			wantAmount:    "120",
			wantDirection: DirectionGain,
		},
		{
			name:          "decimal with comma",
			in:            "paguei a conta de luz, R$ 89,90",
			wantOK:        true,
			wantAmount:    "89.9",
			wantDirection: DirectionLoss,
		},
		{
			name:          "glued currency symbol",
			in:            "R$50 no shopping",
			wantOK:        true,
			wantAmount:    "50",
			wantDirection: DirectionLoss,
		},
		{
			name:   "zero amount is rejected",
			in:     "gastei 0 reais",
			wantOK: false,
		},
		{
			name:   "no amount at all",
			in:     "gastei muito dinheiro",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractExpense(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ExtractExpense(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Amount.String() != tt.wantAmount {
				t.Errorf("amount = %s, want %s", got.Amount, tt.wantAmount)
			}
			if got.Direction != tt.wantDirection {
				t.Errorf("direction = %s, want %s", got.Direction, tt.wantDirection)
			}
			if !got.Amount.IsPositive() {
				t.Errorf("extracted amount %s is not positive", got.Amount)
			}
		})
	}
}

func TestExpenseTitleStripsAmountAndCurrency(t *testing.T) {
	got, ok := ExtractExpense("gastei 50 reais no mercado")
	if !ok {
		t.Fatal("expected an expense")
	}
	if got.Title != "gastei no mercado" {
		t.Errorf("title = %q, want %q", got.Title, "gastei no mercado")
	}
}

func TestExpenseTitleFallback(t *testing.T) {
	got, ok := ExtractExpense("R$ 25")
	if !ok {
		t.Fatal("expected an expense")
	}
	if got.Title != "movimentação" {
		t.Errorf("title = %q, want the fallback label", got.Title)
	}
}
