package events

const (
	TopicOrderCreated   = "order.created"
	TopicStockChanged   = "product.stock.changed"
	TopicOrderFinalized = "order.finalized"
)

// Partition key = product_id utk stock, order_id utk order,
// supaya event per entitas maintain urutan.
func PartitionKey(id string) []byte { return []byte(id) }
