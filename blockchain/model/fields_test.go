package model

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestDecodeFieldsCoercesStrings(t *testing.T) {
	f, err := DecodeFields(map[string]interface{}{
		"version":   "1",
		"timestamp": "1700000000",
		"inputs": []map[string]interface{}{
			{"source_identifier": "a1", "output_index": "3"},
		},
		"outputs": []map[string]interface{}{
			{"destination_address": "EDU1DESTINOAAAA1111", "amount": "5000"},
		},
		"memo": "test",
	})
	require.NoError(t, err)

	tx, err := f.Transaction()
	require.NoError(t, err)
	require.Equal(t, int64(1), tx.Version)
	require.Equal(t, int64(1700000000), tx.Timestamp)
	require.Equal(t, []Input{{PrevTxID: "a1", Index: 3}}, tx.Inputs)
	require.Equal(t, []Output{{Address: "EDU1DESTINOAAAA1111", Amount: 5000}}, tx.Outputs)
	require.Equal(t, "test", tx.Memo)
}

func TestDecodeFieldsJSONNumbers(t *testing.T) {
	f, err := DecodeFields(map[string]interface{}{
		"version": json.Number("2"),
		"outputs": []interface{}{
			map[string]interface{}{"destination_address": "x", "amount": json.Number("7")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), f.Version)
	require.Equal(t, int64(7), f.Outputs[0].Amount)
}

func TestDecodeFieldsRejectsGarbage(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"non numeric amount":  {"outputs": []map[string]interface{}{{"amount": "lots"}}},
		"non numeric version": {"version": "one"},
		"unknown field":       {"fee": 10},
		"memo is a map":       {"memo": map[string]interface{}{"a": 1}},
		"bool version":        {"version": true},
		"number memo":         {"memo": 5},
		"json number memo":    {"memo": json.Number("5")},
		"null memo":           {"memo": nil},
		"null amount":         {"outputs": []interface{}{map[string]interface{}{"amount": nil}}},
		"fractional amount":   {"outputs": []interface{}{map[string]interface{}{"amount": 1.5}}},
		"bool address":        {"outputs": []interface{}{map[string]interface{}{"destination_address": false}}},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFields(raw)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrEncoding), "got %v", err)
		})
	}
}

func TestTransactionRangeChecks(t *testing.T) {
	_, err := Fields{Outputs: []OutputFields{{Amount: -1}}}.Transaction()
	require.True(t, errors.Is(err, ErrEncoding))

	_, err = Fields{Inputs: []InputFields{{OutputIndex: -5}}}.Transaction()
	require.True(t, errors.Is(err, ErrEncoding))

	_, err = Fields{Inputs: []InputFields{{OutputIndex: 1 << 33}}}.Transaction()
	require.True(t, errors.Is(err, ErrEncoding))
}

func TestDecodeFieldsDecimalOnly(t *testing.T) {
	f, err := DecodeFields(map[string]interface{}{
		"timestamp": " 010 ",
		"outputs":   []map[string]interface{}{{"amount": ""}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), f.Timestamp)
	require.Equal(t, int64(0), f.Outputs[0].Amount)

	_, err = DecodeFields(map[string]interface{}{"version": "0x10"})
	require.True(t, errors.Is(err, ErrEncoding))
}

func TestCoerceStrict(t *testing.T) {
	var n int64
	require.NoError(t, Coerce(json.Number("42"), &n))
	require.Equal(t, int64(42), n)
	require.NoError(t, Coerce(float64(7), &n))
	require.Equal(t, int64(7), n)

	var s string
	for _, v := range []interface{}{nil, true, 5, json.Number("5")} {
		require.True(t, errors.Is(Coerce(v, &s), ErrEncoding), "%#v", v)
	}
	for _, v := range []interface{}{nil, true, "1e3", uint64(1) << 63} {
		require.True(t, errors.Is(Coerce(v, &n), ErrEncoding), "%#v", v)
	}
}
