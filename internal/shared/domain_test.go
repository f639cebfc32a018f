package shared

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewJournalLineSigns(t *testing.T) {
	debit := NewJournalLine("1200", decimal.NewFromInt(150))
	if !debit.Debit.Equal(decimal.NewFromInt(150)) || !debit.Credit.IsZero() {
		t.Fatalf("expected debit posting, got debit=%s credit=%s", debit.Debit, debit.Credit)
	}
	credit := NewJournalLine("2100", decimal.NewFromInt(-150))
	if !credit.Credit.Equal(decimal.NewFromInt(150)) || !credit.Debit.IsZero() {
		t.Fatalf("expected credit posting, got debit=%s credit=%s", credit.Debit, credit.Credit)
	}
	if !credit.Signed().Equal(decimal.NewFromInt(-150)) {
		t.Fatalf("signed amount should round-trip, got %s", credit.Signed())
	}
}

func TestEliminationEntryBalanced(t *testing.T) {
	entry := EliminationEntry{Lines: []JournalLine{
		NewJournalLine("1200", decimal.NewFromInt(-100)),
		NewJournalLine("2100", decimal.NewFromInt(100)),
	}}
	if !entry.Balanced() {
		t.Fatalf("offsetting lines should balance")
	}
	entry.Lines = append(entry.Lines, NewJournalLine("7000", decimal.NewFromInt(1)))
	if entry.Balanced() {
		t.Fatalf("extra unbalanced line should break balance")
	}
}

func TestICRoleCounterpart(t *testing.T) {
	if ICReceivable.Counterpart() != ICPayable {
		t.Fatalf("receivable should pair with payable")
	}
	if ICExpense.Counterpart() != ICRevenue {
		t.Fatalf("expense should pair with revenue")
	}
	if ICNone.Counterpart() != ICNone {
		t.Fatalf("non-intercompany role has no counterpart")
	}
}

func TestNormalizeCurrency(t *testing.T) {
	code, err := NormalizeCurrency(" eur ")
	if err != nil {
		t.Fatalf("NormalizeCurrency returned error: %v", err)
	}
	if code != "EUR" {
		t.Fatalf("expected EUR got %s", code)
	}
	if _, err := NormalizeCurrency("ZZZ"); err == nil {
		t.Fatalf("expected error for unknown code")
	}
}
