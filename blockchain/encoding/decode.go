package encoding

import (
	"strconv"
	"unicode/utf8"

	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

var topLevelKeys = map[string]gjson.Type{
	"memo":      gjson.String,
	"timestamp": gjson.Number,
	"version":   gjson.Number,
	"vin":       gjson.JSON,
	"vout":      gjson.JSON,
}

var inputKeys = map[string]gjson.Type{
	"index":     gjson.Number,
	"prev_txid": gjson.String,
}

var outputKeys = map[string]gjson.Type{
	"address": gjson.String,
	"amount":  gjson.Number,
}

// Decode parses bytes previously produced by Encode back into a Transaction.
// Anything that doesn't look like a canonical transaction is ErrMalformedState.
func Decode(data []byte) (model.Transaction, error) {
	if !utf8.Valid(data) {
		return model.Transaction{}, errors.Wrap(model.ErrMalformedState, "stored serialization is not valid UTF-8")
	}
	if !gjson.ValidBytes(data) {
		return model.Transaction{}, errors.Wrap(model.ErrMalformedState, "stored serialization is not valid json")
	}
	root := gjson.ParseBytes(data)
	if err := checkObject(root, topLevelKeys, "stored serialization"); err != nil {
		return model.Transaction{}, err
	}

	var err error
	tx := model.Transaction{Memo: root.Get("memo").String()}
	if tx.Version, err = intField(root, "version"); err != nil {
		return model.Transaction{}, err
	}
	if tx.Timestamp, err = intField(root, "timestamp"); err != nil {
		return model.Transaction{}, err
	}

	vin := root.Get("vin")
	if !vin.IsArray() {
		return model.Transaction{}, errors.Wrap(model.ErrMalformedState, "vin is not an array")
	}
	for n, in := range vin.Array() {
		if err := checkObject(in, inputKeys, "vin "+strconv.Itoa(n)); err != nil {
			return model.Transaction{}, err
		}
		prev := in.Get("prev_txid")
		index, err := uintField(in, "index", 32)
		if err != nil {
			return model.Transaction{}, err
		}
		tx.Inputs = append(tx.Inputs, model.Input{PrevTxID: prev.String(), Index: uint32(index)})
	}

	vout := root.Get("vout")
	if !vout.IsArray() {
		return model.Transaction{}, errors.Wrap(model.ErrMalformedState, "vout is not an array")
	}
	for n, out := range vout.Array() {
		if err := checkObject(out, outputKeys, "vout "+strconv.Itoa(n)); err != nil {
			return model.Transaction{}, err
		}
		addr := out.Get("address")
		amount, err := uintField(out, "amount", 64)
		if err != nil {
			return model.Transaction{}, err
		}
		tx.Outputs = append(tx.Outputs, model.Output{Address: addr.String(), Amount: amount})
	}

	return tx, nil
}

// checkObject requires obj to hold exactly the given keys, once each, with the given
// json types. gjson lookups would silently take the first of duplicated keys.
func checkObject(obj gjson.Result, keys map[string]gjson.Type, what string) error {
	if !obj.IsObject() {
		return errors.Wrapf(model.ErrMalformedState, "%s is not an object", what)
	}
	seen := make(map[string]bool, len(keys))
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		want, ok := keys[name]
		switch {
		case !ok:
			err = errors.Wrapf(model.ErrMalformedState, "%s: unexpected key %q", what, name)
		case seen[name]:
			err = errors.Wrapf(model.ErrMalformedState, "%s: duplicate key %q", what, name)
		case value.Type != want:
			err = errors.Wrapf(model.ErrMalformedState, "%s: key %q has the wrong type", what, name)
		}
		seen[name] = true
		return err == nil
	})
	if err != nil {
		return err
	}
	for key := range keys {
		if !seen[key] {
			return errors.Wrapf(model.ErrMalformedState, "%s: missing key %q", what, key)
		}
	}
	return nil
}

// intField reads an integer from its raw text; Result.Int goes through float64 and
// would silently round large values.
func intField(obj gjson.Result, key string) (int64, error) {
	r := obj.Get(key)
	if r.Type != gjson.Number {
		return 0, errors.Wrapf(model.ErrMalformedState, "%s is not a number", key)
	}
	v, err := strconv.ParseInt(r.Raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(model.ErrMalformedState, "%s is not an integer: %s", key, r.Raw)
	}
	return v, nil
}

func uintField(obj gjson.Result, key string, bits int) (uint64, error) {
	r := obj.Get(key)
	if r.Type != gjson.Number {
		return 0, errors.Wrapf(model.ErrMalformedState, "%s is not a number", key)
	}
	v, err := strconv.ParseUint(r.Raw, 10, bits)
	if err != nil {
		return 0, errors.Wrapf(model.ErrMalformedState, "%s is not a non-negative integer: %s", key, r.Raw)
	}
	return v, nil
}
