package globals

// Context keys
type ContextKey string

const (
	SessionIDKey ContextKey = "sessionId"
	ProfileKey   ContextKey = "profile"
	TokenKey     ContextKey = "token"
)

// Slot names shared by every storage backend.
const (
	CartKey         = "cart"
	TokenSlot       = "token"
	ConfirmationKey = "confirmation"
	ProductsKey     = "produtos"
	ThumbPrefix     = "thumb"
)

// CacheNamespace prefixes shared cache keys in Redis.
const CacheNamespace = "cache"

// SessionCookie carries the browser session id.
const SessionCookie = "sid"

// Slot joins a slot name with the owning session, e.g. cart:<sid>.
func Slot(name, sid string) string {
	return name + ":" + sid
}
