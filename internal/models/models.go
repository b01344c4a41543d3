package models

// All: AutoMigrate sırası
func All() []any {
	return []any{
		&User{},
		&Status{},
		&Warehouse{},
		&Location{},
		&ComponentMaster{},
		&Component{},
		&Product{},
		&ProductComponent{},
		&BarcodePoolEntry{},
		&BarcodeCounter{},
		&Transition{},
	}
}
