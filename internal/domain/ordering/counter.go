package ordering

// OrderNumberSequence is the name of the counter that numbers orders.
const OrderNumberSequence = "order_number"

// Counter is a single monotonically increasing integer per named sequence.
// It is mutated only inside the transaction that also creates the record it
// numbers, which makes issued numbers unique and strictly increasing in
// commit order.
type Counter struct {
	Name  string `gorm:"type:varchar(50);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Counter) TableName() string {
	return "counters"
}
