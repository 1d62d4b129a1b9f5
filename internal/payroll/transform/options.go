package transform

// EntityOrder controls how entities are laid out on the entity axis.
type EntityOrder int

const (
	// OrderFirstSeen keeps the order in which entities appear in the table.
	OrderFirstSeen EntityOrder = iota
	// OrderAlphabetical sorts entity names byte-wise.
	OrderAlphabetical
)

// Option customises an aggregation.
type Option func(*options)

type options struct {
	order EntityOrder
}

// WithEntityOrder selects the entity axis order.
func WithEntityOrder(order EntityOrder) Option {
	return func(o *options) { o.order = order }
}

func applyOptions(opts []Option) options {
	o := options{order: OrderFirstSeen}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
