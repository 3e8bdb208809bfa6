// internal/domain/client/conflict.go
package client

// ConflictCandidate is another client suspected of representing the same
// person as the subject. It is transient output of the conflict detector and
// is never persisted.
type ConflictCandidate struct {
	Client Client          `json:"client"`
	Phones []ContactNumber `json:"phones"`
	// Human-readable match reasons, accumulated in pass order
	// (phone, then email, then name).
	Reasons []string `json:"reasons"`
}
