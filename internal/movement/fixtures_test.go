package movement

import (
	"context"
	"testing"

	"depo-backend/internal/apperr"
	"depo-backend/internal/ledger"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/measure"
	"depo-backend/internal/models"
	"depo-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type env struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	svc   *Service
	user  models.User
	stock models.Warehouse
	shelf models.Location
	prod  models.Warehouse
	pLoc  models.Location
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	e := &env{t: t, ctx: context.Background(), db: db}
	e.svc = NewService(db, ledger.New(db, nil), nil)
	e.user = testutil.CreateUser(t, db, "stock")
	e.stock, e.shelf = testutil.CreateWarehouse(t, db, "Ana Depo", "stock")
	e.prod, e.pLoc = testutil.CreateWarehouse(t, db, "Üretim", "production")
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strp(s string) *string { return &s }

// component doğrudan veritabanına, CREATE kaydıyla birlikte yazılır
func (e *env) component(stockUnit string, status lifecycle.Status, code string, amount string) models.Component {
	e.t.Helper()
	m := testutil.CreateMaster(e.t, e.db, "Malzeme "+stockUnit, stockUnit)
	kind, err := measure.ParseKind(stockUnit)
	if err != nil {
		e.t.Fatal(err)
	}
	c := models.Component{
		MasterID:    m.ID,
		StatusID:    status,
		WarehouseID: &e.stock.ID,
		LocationID:  &e.shelf.ID,
		Fields:      measure.WithAmount(kind, dec(amount)),
		CreatedBy:   e.user.ID,
	}
	if code != "" {
		c.Barcode = strp(code)
	}
	if err := e.db.Create(&c).Error; err != nil {
		e.t.Fatal(err)
	}
	l := ledger.New(e.db, nil)
	if err := l.Record(e.ctx, nil, uuid.New(), []models.Transition{{
		ItemType: lifecycle.ItemComponent,
		ItemID:   c.ID,
		Action:   lifecycle.ActionCreate,
		QtyDelta: dec(amount),
		Unit:     kind.Unit(),
	}}, e.user.ID); err != nil {
		e.t.Fatal(err)
	}
	return c
}

func (e *env) reload(c models.Component) models.Component {
	e.t.Helper()
	var out models.Component
	if err := e.db.First(&out, c.ID).Error; err != nil {
		e.t.Fatal(err)
	}
	return out
}

func (e *env) current(c models.Component) decimal.Decimal {
	e.t.Helper()
	c = e.reload(c)
	kind, err := measure.ResolveKind(e.db, c.MasterID)
	if err != nil {
		e.t.Fatal(err)
	}
	if !measure.Consistent(kind, c.Fields) {
		e.t.Fatalf("component %d measure fields inconsistent with %s: %+v", c.ID, kind, c.Fields)
	}
	return measure.Current(kind, c.Fields)
}

func (e *env) transitions(itemType lifecycle.ItemType, id uint) []models.Transition {
	e.t.Helper()
	var rows []models.Transition
	if err := e.db.Where("item_type = ? AND item_id = ?", itemType, id).Order("id ASC").Find(&rows).Error; err != nil {
		e.t.Fatal(err)
	}
	return rows
}

func (e *env) ledgerSum(id uint) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range e.transitions(lifecycle.ItemComponent, id) {
		sum = sum.Add(r.QtyDelta)
	}
	return sum
}

func (e *env) count(model any) int64 {
	e.t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		e.t.Fatal(err)
	}
	return n
}

func (e *env) links(productID uint) []models.ProductComponent {
	e.t.Helper()
	var rows []models.ProductComponent
	if err := e.db.Where("product_id = ?", productID).Order("id ASC").Find(&rows).Error; err != nil {
		e.t.Fatal(err)
	}
	return rows
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperr.HasCode(err, code) {
		t.Fatalf("err = %v, want %s", err, code)
	}
}

func actions(rows []models.Transition) []lifecycle.Action {
	out := make([]lifecycle.Action, len(rows))
	for i, r := range rows {
		out[i] = r.Action
	}
	return out
}
