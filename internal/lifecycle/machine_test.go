package lifecycle

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusInStock, true},
		{StatusPending, StatusProduction, true},
		{StatusPending, StatusScreenprint, true},
		{StatusInStock, StatusUsed, true},
		{StatusInStock, StatusSold, true},
		{StatusInStock, StatusDamagedLost, true},
		{StatusInStock, StatusInStock, true},
		{StatusUsed, StatusInStock, true},
		{StatusSold, StatusInStock, false},
		{StatusDeleted, StatusPending, false},
		{StatusPending, StatusSold, false},
		{Status(99), StatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestScopeApproval(t *testing.T) {
	if ScopeStock.ApprovalTarget("stock") != StatusInStock {
		t.Fatal("own department must land in_stock")
	}
	if ScopeProduction.ApprovalTarget("stock") != StatusPending {
		t.Fatal("foreign department must land pending")
	}
	if ScopeScreenprint.SourceStatus() != StatusScreenprint || ScopeStock.SourceStatus() != StatusPending {
		t.Fatal("unexpected source status")
	}
	if Scope("sales").Valid() {
		t.Fatal("unknown scope accepted")
	}
}

func TestEnumsClosed(t *testing.T) {
	if !ActionAttributeChange.Valid() || Action("UPDATE").Valid() {
		t.Fatal("action enum not closed")
	}
	if !ItemProduct.Valid() || ItemType("recipe").Valid() {
		t.Fatal("item type enum not closed")
	}
	for _, s := range AllStatuses() {
		back, ok := ParseStatus(s.String())
		if !ok || back != s {
			t.Fatalf("status %d does not round trip through its name", s)
		}
	}
	if !RequiresBarcode(StatusInStock) || RequiresBarcode(StatusPending) {
		t.Fatal("only in_stock requires a barcode")
	}
}
