package lifecycle

// Geçerli durum geçişleri. Aynı duruma geçiş (ör: in_stock -> in_stock taşıma) her zaman serbest.
var transitions = map[Status][]Status{
	StatusPending:     {StatusInStock, StatusProduction, StatusScreenprint, StatusDeleted},
	StatusProduction:  {StatusPending, StatusInStock, StatusUsed, StatusDeleted},
	StatusScreenprint: {StatusPending, StatusInStock, StatusUsed, StatusDeleted},
	StatusInStock:     {StatusUsed, StatusSold, StatusDamagedLost, StatusDeleted},
	StatusUsed:        {StatusInStock},
	StatusDamagedLost: {StatusDeleted},
}

func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RequiresBarcode: in_stock'a giriş geçerli bir barkod ister
func RequiresBarcode(to Status) bool {
	return to == StatusInStock
}

// Consumable: montaj / bileşen ekleme ile tüketilebilir durumlar
func Consumable(s Status) bool {
	switch s {
	case StatusInStock, StatusProduction, StatusScreenprint:
		return true
	}
	return false
}

// IsEntry: yeni kalemler yalnızca pending veya departman hazırlık durumlarında açılır
func IsEntry(s Status) bool {
	switch s {
	case StatusPending, StatusProduction, StatusScreenprint:
		return true
	}
	return false
}

type Scope string

const (
	ScopeStock       Scope = "stock"
	ScopeProduction  Scope = "production"
	ScopeScreenprint Scope = "screenprint"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeStock, ScopeProduction, ScopeScreenprint:
		return true
	}
	return false
}

// SourceStatus: bir onay kapsamının beklediği mevcut durum
func (s Scope) SourceStatus() Status {
	switch s {
	case ScopeProduction:
		return StatusProduction
	case ScopeScreenprint:
		return StatusScreenprint
	default:
		return StatusPending
	}
}

// ApprovalTarget: hedef depo kendi departmanına aitse in_stock, değilse pending
func (s Scope) ApprovalTarget(warehouseDepartment string) Status {
	if warehouseDepartment == string(s) {
		return StatusInStock
	}
	return StatusPending
}
