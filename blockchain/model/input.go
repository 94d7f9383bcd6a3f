package model

// Input references an output of a prior transaction. PrevTxID is free-form text,
// nothing checks that it looks like a hash.
type Input struct {
	PrevTxID string
	Index    uint32
}
