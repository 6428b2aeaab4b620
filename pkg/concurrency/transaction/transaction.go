package transaction

import "fmt"

// TransactionID identifies one transaction within a registry. Zero is never
// issued.
type TransactionID uint64

func (tid TransactionID) String() string {
	return fmt.Sprintf("TID-%d", uint64(tid))
}

// IsValid reports whether the identifier was issued by a registry.
func (tid TransactionID) IsValid() bool {
	return tid != 0
}
