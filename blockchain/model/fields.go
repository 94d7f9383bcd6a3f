package model

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// Fields holds the values a caller gathered for a transaction, before range checks.
type Fields struct {
	Version   int64          `mapstructure:"version"`
	Timestamp int64          `mapstructure:"timestamp"`
	Inputs    []InputFields  `mapstructure:"inputs"`
	Outputs   []OutputFields `mapstructure:"outputs"`
	Memo      string         `mapstructure:"memo"`
}

type InputFields struct {
	SourceIdentifier string `mapstructure:"source_identifier"`
	OutputIndex      int64  `mapstructure:"output_index"`
}

type OutputFields struct {
	DestinationAddress string `mapstructure:"destination_address"`
	Amount             int64  `mapstructure:"amount"`
}

// DecodeFields coerces loosely typed values (form strings, json numbers) into Fields.
// "5000" becomes 5000; anything else that isn't already the right kind, null
// included, is an encoding error.
func DecodeFields(raw map[string]interface{}) (Fields, error) {
	if err := rejectNulls("", raw); err != nil {
		return Fields{}, err
	}
	var f Fields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  decimalHook,
		ErrorUnused: true,
		Result:      &f,
	})
	if err != nil {
		return Fields{}, errors.WithStack(err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Fields{}, errors.Wrapf(ErrEncoding, "%v", err)
	}
	return f, nil
}

// Transaction range-checks the fields and builds a fresh Transaction from them.
func (f Fields) Transaction() (Transaction, error) {
	tx := Transaction{
		Version:   f.Version,
		Timestamp: f.Timestamp,
		Memo:      f.Memo,
	}

	for n, in := range f.Inputs {
		if in.OutputIndex < 0 || in.OutputIndex > math.MaxUint32 {
			return Transaction{}, errors.Wrapf(ErrEncoding, "input %d: output index %d out of range", n, in.OutputIndex)
		}
		tx.Inputs = append(tx.Inputs, Input{PrevTxID: in.SourceIdentifier, Index: uint32(in.OutputIndex)})
	}

	for n, out := range f.Outputs {
		if out.Amount < 0 {
			return Transaction{}, errors.Wrapf(ErrEncoding, "output %d: negative amount %d", n, out.Amount)
		}
		tx.Outputs = append(tx.Outputs, Output{Address: out.DestinationAddress, Amount: uint64(out.Amount)})
	}

	return tx, nil
}

// decimalHook is the only coercion allowed between kinds: decimal text and json
// numbers into integer fields. mapstructure's weak mode would also turn booleans
// into 1 and numbers into text, and parses "010" as octal.
func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Int64:
		switch v := data.(type) {
		case json.Number:
			return parseDecimal(string(v))
		case string:
			if strings.TrimSpace(v) == "" {
				return int64(0), nil
			}
			return parseDecimal(v)
		case float32:
			return wholeNumber(float64(v))
		case float64:
			return wholeNumber(v)
		}
		switch from.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if n := reflect.ValueOf(data).Uint(); n > math.MaxInt64 {
				return nil, errors.Newf("%d out of range", n)
			}
		}
	case reflect.String:
		if _, ok := data.(json.Number); ok {
			return nil, errors.Newf("expected text, got number %s", data)
		}
	}
	return data, nil
}

func parseDecimal(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Newf("%q is not a whole number", s)
	}
	return n, nil
}

func wholeNumber(f float64) (int64, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errors.Newf("%v is not a whole number", f)
	}
	return int64(f), nil
}

// rejectNulls walks the raw values; mapstructure leaves a field at its zero value
// when given nil instead of reporting it.
func rejectNulls(path string, value interface{}) error {
	switch v := value.(type) {
	case nil:
		return errors.Wrapf(ErrEncoding, "%s is null", path)
	case map[string]interface{}:
		for k, e := range v {
			if err := rejectNulls(strings.TrimPrefix(path+"."+k, "."), e); err != nil {
				return err
			}
		}
	case []interface{}:
		for n, e := range v {
			if err := rejectNulls(path+"."+strconv.Itoa(n), e); err != nil {
				return err
			}
		}
	case []map[string]interface{}:
		for n, e := range v {
			if err := rejectNulls(path+"."+strconv.Itoa(n), e); err != nil {
				return err
			}
		}
	}
	return nil
}

// Coerce decodes one loosely typed value into target using the same rules as DecodeFields.
func Coerce(value interface{}, target interface{}) error {
	if value == nil {
		return errors.Wrap(ErrEncoding, "value is null")
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: decimalHook,
		Result:     target,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := decoder.Decode(value); err != nil {
		return errors.Wrapf(ErrEncoding, "%v", err)
	}
	return nil
}
