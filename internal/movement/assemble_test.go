package movement

import (
	"testing"

	"depo-backend/internal/apperr"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/models"
)

func TestAssembleConsumesWholeArea(t *testing.T) {
	e := setup(t)
	c1 := e.component("area", lifecycle.StatusInStock, "C00000001", "10")

	res, err := e.svc.Assemble(e.ctx, AssembleRequest{
		Product:    ProductDraft{ProductName: "Tabela", Target: "pending"},
		Components: []ComponentUse{{ComponentID: c1.ID, ConsumeQty: decp("10")}},
	}, e.user.ID)
	if err != nil {
		t.Fatal(err)
	}

	got := e.reload(c1)
	if !e.current(c1).IsZero() || got.StatusID != lifecycle.StatusUsed {
		t.Fatalf("component after assemble: status=%s fields=%+v", got.StatusID, got.Fields)
	}
	links := e.links(res.Product.ID)
	if len(links) != 1 || !links[0].ConsumeQty.Equal(dec("10")) || links[0].Unit != "m2" {
		t.Fatalf("links = %+v", links)
	}

	rows := e.transitions(lifecycle.ItemComponent, c1.ID)
	consume := rows[len(rows)-1]
	if consume.Action != lifecycle.ActionConsume || !consume.QtyDelta.Equal(dec("-10")) {
		t.Fatalf("consume entry = %+v", consume)
	}
	if consume.ContextID == nil || *consume.ContextID != res.Product.ID {
		t.Fatalf("consume context = %v", consume.ContextID)
	}

	prow := e.transitions(lifecycle.ItemProduct, res.Product.ID)
	if len(prow) != 1 || prow[0].Action != lifecycle.ActionAssembleProduct || prow[0].BatchID != consume.BatchID {
		t.Fatalf("product entries = %+v", prow)
	}

	var p models.Product
	if err := e.db.First(&p, res.Product.ID).Error; err != nil {
		t.Fatal(err)
	}
	if p.Barcode != nil || p.StatusID != lifecycle.StatusPending {
		t.Fatalf("product = %+v", p)
	}
}

func TestAssemblePartialAndUnit(t *testing.T) {
	e := setup(t)
	sheet := e.component("weight", lifecycle.StatusInStock, "C00000001", "5")
	screw := e.component("unit", lifecycle.StatusProduction, "", "1")

	res, err := e.svc.Assemble(e.ctx, AssembleRequest{
		Product: ProductDraft{ProductName: "Dolap", Target: "production", WarehouseID: &e.prod.ID, LocationID: &e.pLoc.ID},
		Components: []ComponentUse{
			{ComponentID: sheet.ID, ConsumeQty: decp("1.5")},
			{ComponentID: screw.ID},
		},
	}, e.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Links) != 2 {
		t.Fatalf("links = %v", res.Links)
	}
	if !e.current(sheet).Equal(dec("3.5")) || e.reload(sheet).StatusID != lifecycle.StatusInStock {
		t.Fatalf("partial consume wrong: %s", e.current(sheet))
	}
	if e.reload(screw).StatusID != lifecycle.StatusUsed {
		t.Fatal("unit component must flip to used")
	}
}

func TestAssembleRollsBackOnShortage(t *testing.T) {
	e := setup(t)
	a := e.component("length", lifecycle.StatusInStock, "C00000001", "4")
	b := e.component("length", lifecycle.StatusInStock, "C00000002", "2")

	req := AssembleRequest{
		Product: ProductDraft{ProductName: "Çerçeve", Target: "pending"},
		Components: []ComponentUse{
			{ComponentID: a.ID, ConsumeQty: decp("3")},
			{ComponentID: b.ID, ConsumeQty: decp("2.5")},
		},
	}
	before := e.count(&models.Transition{})
	for i := 0; i < 2; i++ {
		_, err := e.svc.Assemble(e.ctx, req, e.user.ID)
		wantCode(t, err, apperr.CodeConsumeGtStock)
		ae := apperr.From(err)
		if ae.Details["have"] != "2" || ae.Details["qty"] != "2.5" {
			t.Fatalf("details = %v", ae.Details)
		}
	}

	if !e.current(a).Equal(dec("4")) || !e.current(b).Equal(dec("2")) {
		t.Fatal("component measures changed after rollback")
	}
	if n := e.count(&models.Product{}); n != 0 {
		t.Fatalf("products = %d", n)
	}
	if n := e.count(&models.ProductComponent{}); n != 0 {
		t.Fatalf("links = %d", n)
	}
	if n := e.count(&models.Transition{}); n != before {
		t.Fatalf("ledger grew on failure: %d -> %d", before, n)
	}
}

func TestAssembleValidation(t *testing.T) {
	e := setup(t)
	c := e.component("area", lifecycle.StatusInStock, "C00000001", "2")
	pend := e.component("area", lifecycle.StatusPending, "", "2")

	cases := []struct {
		name string
		req  AssembleRequest
		want string
	}{
		{"name", AssembleRequest{Product: ProductDraft{Target: "pending"}, Components: []ComponentUse{{ComponentID: c.ID, ConsumeQty: decp("1")}}}, apperr.CodeValidation},
		{"target", AssembleRequest{Product: ProductDraft{ProductName: "x", Target: "in_stock"}, Components: []ComponentUse{{ComponentID: c.ID, ConsumeQty: decp("1")}}}, apperr.CodeInvalidTarget},
		{"empty", AssembleRequest{Product: ProductDraft{ProductName: "x", Target: "pending"}}, apperr.CodeValidation},
		{"duplicate", AssembleRequest{Product: ProductDraft{ProductName: "x", Target: "pending"}, Components: []ComponentUse{{ComponentID: c.ID, ConsumeQty: decp("1")}, {ComponentID: c.ID, ConsumeQty: decp("1")}}}, apperr.CodeDuplicateItem},
		{"zero qty", AssembleRequest{Product: ProductDraft{ProductName: "x", Target: "pending"}, Components: []ComponentUse{{ComponentID: c.ID, ConsumeQty: decp("0")}}}, apperr.CodeInvalidConsumeQty},
		{"missing qty", AssembleRequest{Product: ProductDraft{ProductName: "x", Target: "pending"}, Components: []ComponentUse{{ComponentID: c.ID}}}, apperr.CodeInvalidConsumeQty},
		{"not found", AssembleRequest{Product: ProductDraft{ProductName: "x", Target: "pending"}, Components: []ComponentUse{{ComponentID: 9999, ConsumeQty: decp("1")}}}, apperr.CodeComponentNotFound},
		{"pending", AssembleRequest{Product: ProductDraft{ProductName: "x", Target: "pending"}, Components: []ComponentUse{{ComponentID: pend.ID, ConsumeQty: decp("1")}}}, apperr.CodeInvalidStatusTransition},
		{"location", AssembleRequest{Product: ProductDraft{ProductName: "x", Target: "pending", WarehouseID: &e.stock.ID, LocationID: &e.pLoc.ID}, Components: []ComponentUse{{ComponentID: c.ID, ConsumeQty: decp("1")}}}, apperr.CodeLocationNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.Assemble(e.ctx, tc.req, e.user.ID)
			wantCode(t, err, tc.want)
		})
	}
	if _, err := e.svc.Assemble(e.ctx, cases[0].req, 0); !apperr.HasCode(err, apperr.CodeValidation) {
		t.Fatalf("missing actor: %v", err)
	}
}

func TestAddComponents(t *testing.T) {
	e := setup(t)
	first := e.component("area", lifecycle.StatusInStock, "C00000001", "6")
	res, err := e.svc.Assemble(e.ctx, AssembleRequest{
		Product:    ProductDraft{ProductName: "Pano", Target: "pending"},
		Components: []ComponentUse{{ComponentID: first.ID, ConsumeQty: decp("2")}},
	}, e.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	pid := res.Product.ID

	bolt := e.component("unit", lifecycle.StatusInStock, "C00000002", "1")
	added, err := e.svc.AddComponents(e.ctx, pid, []ComponentUse{
		{ComponentID: bolt.ID},
		{ComponentID: first.ID, ConsumeQty: decp("4")},
	}, e.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if added.Added != 2 || len(e.links(pid)) != 3 {
		t.Fatalf("added = %+v links=%d", added, len(e.links(pid)))
	}
	if e.reload(bolt).StatusID != lifecycle.StatusUsed || e.reload(first).StatusID != lifecycle.StatusUsed {
		t.Fatal("exhausted components must be used")
	}

	_, err = e.svc.AddComponents(e.ctx, pid, []ComponentUse{{ComponentID: first.ID, ConsumeQty: decp("1")}}, e.user.ID)
	wantCode(t, err, apperr.CodeInvalidStatusTransition)

	more := e.component("unit", lifecycle.StatusInStock, "C00000003", "1")
	_, err = e.svc.AddComponents(e.ctx, pid, []ComponentUse{{ComponentID: more.ID, ConsumeQty: decp("2")}}, e.user.ID)
	wantCode(t, err, apperr.CodeInvalidConsumeQty)

	_, err = e.svc.AddComponents(e.ctx, 9999, []ComponentUse{{ComponentID: more.ID}}, e.user.ID)
	wantCode(t, err, apperr.CodeProductNotFound)
}

// Kolon ölçeğinin altındaki miktar ölçüyü değiştirmeden ledger'a düşmemeli
func TestConsumeRejectsSubScaleQuantity(t *testing.T) {
	e := setup(t)
	c := e.component("area", lifecycle.StatusInStock, "C00000001", "10")
	req := AssembleRequest{
		Product:    ProductDraft{ProductName: "Levha", Target: "pending"},
		Components: []ComponentUse{{ComponentID: c.ID, ConsumeQty: decp("0.00004")}},
	}
	for i := 0; i < 3; i++ {
		_, err := e.svc.Assemble(e.ctx, req, e.user.ID)
		wantCode(t, err, apperr.CodeInvalidConsumeQty)
	}
	if !e.current(c).Equal(dec("10")) || !e.ledgerSum(c.ID).Equal(dec("10")) {
		t.Fatalf("current=%s ledger=%s", e.current(c), e.ledgerSum(c.ID))
	}
	if n := e.count(&models.ProductComponent{}); n != 0 {
		t.Fatalf("links = %d", n)
	}

	req.Components[0].ConsumeQty = decp("0.0001")
	res, err := e.svc.Assemble(e.ctx, req, e.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !e.current(c).Equal(dec("9.9999")) || !e.ledgerSum(c.ID).Equal(e.current(c)) {
		t.Fatalf("current=%s ledger=%s", e.current(c), e.ledgerSum(c.ID))
	}

	_, err = e.svc.AddComponents(e.ctx, res.Product.ID, []ComponentUse{{ComponentID: c.ID, ConsumeQty: decp("1.00005")}}, e.user.ID)
	wantCode(t, err, apperr.CodeInvalidConsumeQty)
	if links := e.links(res.Product.ID); len(links) != 1 || !links[0].ConsumeQty.Equal(dec("0.0001")) {
		t.Fatalf("links = %+v", links)
	}
}
