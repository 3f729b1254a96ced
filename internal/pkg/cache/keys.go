package cache

import "time"

const (
	// Order status cache: order_status:{order_id} -> current status string.
	KeyOrderStatus = "order_status:%s"

	// Stock adjustment lock: lock:stock:{variant_id}.
	KeyStockLock = "lock:stock:%s"

	// Hook dedup, at most once per committed transition:
	// dedup:hooks:{order_id}:{new_status}.
	KeyHookDedup = "dedup:hooks:%s:%s"

	// POS event dedup: dedup:pos:{event_id}.
	KeyPosDedup = "dedup:pos:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLStockLock   = 5 * time.Second
	TTLDedup       = 48 * time.Hour
)
