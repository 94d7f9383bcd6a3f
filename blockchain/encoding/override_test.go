package encoding

import (
	"encoding/json"
	"testing"

	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestApplyMemo(t *testing.T) {
	orig := []byte(scenarioBytes)

	tx, b, err := Apply(orig, &Override{Path: "memo", Value: "tampered"})
	require.NoError(t, err)
	require.Equal(t, "tampered", tx.Memo)
	require.Contains(t, string(b), `"memo":"tampered"`)
	require.Equal(t, scenarioBytes, string(orig))
}

func TestApplyNilOverrideIsIdentity(t *testing.T) {
	_, b, err := Apply([]byte(scenarioBytes), nil)
	require.NoError(t, err)
	require.Equal(t, scenarioBytes, string(b))
}

func TestApplySameValueIsIdentity(t *testing.T) {
	_, b, err := Apply([]byte(scenarioBytes), &Override{Path: "memo", Value: "test"})
	require.NoError(t, err)
	require.Equal(t, scenarioBytes, string(b))
}

func TestApplyNestedFields(t *testing.T) {
	tests := []struct {
		path  string
		value interface{}
		check func(t *testing.T, tx model.Transaction)
	}{
		{"vout.0.amount", "6000", func(t *testing.T, tx model.Transaction) { require.Equal(t, uint64(6000), tx.Outputs[0].Amount) }},
		{"vout.0.address", "EDU1ATTACKER", func(t *testing.T, tx model.Transaction) { require.Equal(t, "EDU1ATTACKER", tx.Outputs[0].Address) }},
		{"vin.0.index", 7, func(t *testing.T, tx model.Transaction) { require.Equal(t, uint32(7), tx.Inputs[0].Index) }},
		{"vin.0.prev_txid", "ff", func(t *testing.T, tx model.Transaction) { require.Equal(t, "ff", tx.Inputs[0].PrevTxID) }},
		{"timestamp", "1700000001", func(t *testing.T, tx model.Transaction) { require.Equal(t, int64(1700000001), tx.Timestamp) }},
		{"version", 2, func(t *testing.T, tx model.Transaction) { require.Equal(t, int64(2), tx.Version) }},
		{"memo", "ñandú \"<>\"", func(t *testing.T, tx model.Transaction) { require.Equal(t, "ñandú \"<>\"", tx.Memo) }},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tx, b, err := Apply([]byte(scenarioBytes), &Override{Path: tt.path, Value: tt.value})
			require.NoError(t, err)
			tt.check(t, tx)
			require.NotEqual(t, scenarioBytes, string(b))

			reencoded, err := Encode(tx)
			require.NoError(t, err)
			require.Equal(t, reencoded, b)
		})
	}
}

func TestApplyRejectsBadOverrides(t *testing.T) {
	cases := map[string]Override{
		"unknown path":    {Path: "fee", Value: 1},
		"whole array":     {Path: "vout", Value: "x"},
		"missing element": {Path: "vout.3.amount", Value: 1},
		"negative amount": {Path: "vout.0.amount", Value: -1},
		"index overflow":  {Path: "vin.0.index", Value: int64(1) << 40},
		"not a number":    {Path: "timestamp", Value: "yesterday"},
		"invalid utf8":    {Path: "memo", Value: "\xff"},
		"wrapping index":  {Path: "vin.18446744073709551616.index", Value: 1},
		"leading zero":    {Path: "vin.00.index", Value: 1},
		"past the end":    {Path: "vin.1.index", Value: 1},
		"bool amount":     {Path: "vout.0.amount", Value: true},
		"number memo":     {Path: "memo", Value: json.Number("5")},
		"null memo":       {Path: "memo", Value: nil},
		"fractional":      {Path: "version", Value: 1.5},
	}
	for name, o := range cases {
		o := o
		t.Run(name, func(t *testing.T) {
			_, _, err := Apply([]byte(scenarioBytes), &o)
			require.True(t, errors.Is(err, model.ErrEncoding), "got %v", err)
		})
	}
}

func TestApplyMalformedStored(t *testing.T) {
	_, _, err := Apply([]byte(`not json`), &Override{Path: "memo", Value: "x"})
	require.True(t, errors.Is(err, model.ErrMalformedState), "got %v", err)
}

func TestApplyLeavesOtherElementsAlone(t *testing.T) {
	tx := scenarioTx()
	tx.Inputs = append(tx.Inputs, model.Input{PrevTxID: "b2", Index: 4})
	orig, err := Encode(tx)
	require.NoError(t, err)

	got, _, err := Apply(orig, &Override{Path: "vin.1.index", Value: 9})
	require.NoError(t, err)
	require.Equal(t, uint32(0), got.Inputs[0].Index)
	require.Equal(t, uint32(9), got.Inputs[1].Index)

	_, _, err = Apply(orig, &Override{Path: "vin.01.index", Value: 9})
	require.True(t, errors.Is(err, model.ErrEncoding), "got %v", err)
}

func TestApplyInvalidUTF8StoredIsMalformed(t *testing.T) {
	bad := []byte("{\"memo\":\"\xff\",\"timestamp\":0,\"version\":0,\"vin\":[],\"vout\":[]}")
	_, _, err := Apply(bad, nil)
	require.True(t, errors.Is(err, model.ErrMalformedState), "got %v", err)
}
