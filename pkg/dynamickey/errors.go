package dynamickey

import "fmt"

// InvalidKeyError reports why a key string or payload could not be decoded
// or encoded.
type InvalidKeyError struct {
	Format string // "sk", "numeric_b64", "numeric_decimal", or "payload"
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("dynamickey: invalid %s key: %s", e.Format, e.Reason)
}
