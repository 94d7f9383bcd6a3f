package encoding

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/sjson"
)

// Override substitutes a single field of a serialized transaction.
// Path uses the serialized key names: memo, version, timestamp, vin.<n>.prev_txid,
// vin.<n>.index, vout.<n>.address or vout.<n>.amount.
type Override struct {
	Path  string
	Value interface{}
}

var overridePath = regexp.MustCompile(`^(memo|version|timestamp|(vin)\.(0|[1-9]\d*)\.(prev_txid|index)|(vout)\.(0|[1-9]\d*)\.(address|amount))$`)

// Apply builds a new canonical serialization from data with o substituted.
// data itself is left untouched. A nil override re-encodes data as is.
func Apply(data []byte, o *Override) (model.Transaction, []byte, error) {
	stored, err := Decode(data)
	if err != nil {
		return model.Transaction{}, nil, err
	}

	altered := data
	if o != nil {
		if err := checkElement(stored, o.Path); err != nil {
			return model.Transaction{}, nil, err
		}

		value, err := coerceOverride(o)
		if err != nil {
			return model.Transaction{}, nil, err
		}

		altered, err = sjson.SetBytes(append([]byte(nil), data...), o.Path, value)
		if err != nil {
			return model.Transaction{}, nil, errors.WithStack(err)
		}
	}

	tx, err := Decode(altered)
	if err != nil {
		return model.Transaction{}, nil, err
	}
	out, err := Encode(tx)
	if err != nil {
		return model.Transaction{}, nil, err
	}
	return tx, out, nil
}

// checkElement validates path and makes sure any element it names is in tx, so
// sjson never gets to append to or reinterpret an array index.
func checkElement(tx model.Transaction, path string) error {
	m := overridePath.FindStringSubmatch(path)
	if m == nil {
		return errors.Wrapf(model.ErrEncoding, "cannot override %q", path)
	}

	var list, index string
	var size int
	switch {
	case m[2] != "":
		list, index, size = m[2], m[3], len(tx.Inputs)
	case m[5] != "":
		list, index, size = m[5], m[6], len(tx.Outputs)
	default:
		return nil
	}
	n, err := strconv.ParseUint(index, 10, 64)
	if err != nil || n >= uint64(size) {
		return errors.Wrapf(model.ErrEncoding, "%s has no element %s in the signed record", list, index)
	}
	return nil
}

func coerceOverride(o *Override) (interface{}, error) {
	field := o.Path[strings.LastIndexByte(o.Path, '.')+1:]
	switch field {
	case "memo", "prev_txid", "address":
		var s string
		if err := model.Coerce(o.Value, &s); err != nil {
			return nil, errors.Wrapf(err, "%s", o.Path)
		}
		if !utf8.ValidString(s) {
			return nil, errors.Wrapf(model.ErrEncoding, "%s is not valid UTF-8", o.Path)
		}
		return s, nil
	}

	var n int64
	if err := model.Coerce(o.Value, &n); err != nil {
		return nil, errors.Wrapf(err, "%s", o.Path)
	}
	switch {
	case field == "index" && (n < 0 || n > math.MaxUint32):
		return nil, errors.Wrapf(model.ErrEncoding, "%s: %d out of range", o.Path, n)
	case field == "amount" && n < 0:
		return nil, errors.Wrapf(model.ErrEncoding, "%s: negative amount %d", o.Path, n)
	}
	return n, nil
}
