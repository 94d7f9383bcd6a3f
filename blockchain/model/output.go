package model

// Output pays Amount whole units to Address. Address is arbitrary text.
type Output struct {
	Address string
	Amount  uint64
}
