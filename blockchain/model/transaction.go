package model

// Transaction is the toy record that gets serialized, hashed and signed.
// Inputs and Outputs are order-significant.
type Transaction struct {
	Version   int64
	Timestamp int64
	Inputs    []Input
	Outputs   []Output
	Memo      string
}
