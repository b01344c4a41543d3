// Package lifecycle holds the shared status, action and item type enumerations.
// Both the state machine and the ledger validator read from here.
package lifecycle

type Status uint

const (
	StatusPending     Status = 1
	StatusInStock     Status = 2
	StatusUsed        Status = 3
	StatusSold        Status = 4
	StatusDamagedLost Status = 5
	StatusProduction  Status = 6
	StatusScreenprint Status = 7
	StatusDeleted     Status = 8
)

var statusNames = map[Status]string{
	StatusPending:     "pending",
	StatusInStock:     "in_stock",
	StatusUsed:        "used",
	StatusSold:        "sold",
	StatusDamagedLost: "damaged_lost",
	StatusProduction:  "production",
	StatusScreenprint: "screenprint",
	StatusDeleted:     "deleted",
}

// AllStatuses: statuses tablosunun seed sırası
func AllStatuses() []Status {
	return []Status{
		StatusPending, StatusInStock, StatusUsed, StatusSold,
		StatusDamagedLost, StatusProduction, StatusScreenprint, StatusDeleted,
	}
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func ParseStatus(name string) (Status, bool) {
	for s, n := range statusNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

type Action string

const (
	ActionCreate          Action = "CREATE"
	ActionApprove         Action = "APPROVE"
	ActionAssembleProduct Action = "ASSEMBLE_PRODUCT"
	ActionConsume         Action = "CONSUME"
	ActionReturn          Action = "RETURN"
	ActionMove            Action = "MOVE"
	ActionStatusChange    Action = "STATUS_CHANGE"
	ActionAdjust          Action = "ADJUST"
	ActionAttributeChange Action = "ATTRIBUTE_CHANGE"
	ActionDelete          Action = "DELETE"
)

var actions = map[Action]struct{}{
	ActionCreate: {}, ActionApprove: {}, ActionAssembleProduct: {}, ActionConsume: {},
	ActionReturn: {}, ActionMove: {}, ActionStatusChange: {}, ActionAdjust: {},
	ActionAttributeChange: {}, ActionDelete: {},
}

func (a Action) Valid() bool {
	_, ok := actions[a]
	return ok
}

type ItemType string

const (
	ItemComponent ItemType = "component"
	ItemProduct   ItemType = "product"
)

func (t ItemType) Valid() bool {
	return t == ItemComponent || t == ItemProduct
}
