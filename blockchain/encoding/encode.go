// Package encoding turns transactions into their canonical byte form and back.
//
// The canonical form is compact JSON with the keys memo, timestamp, version, vin
// and vout. Keys are sorted at every level, there is no whitespace, and string
// content is written as UTF-8 without escaping non-ASCII characters. Only '"',
// '\\' and control characters below 0x20 are escaped. Two transactions with equal
// field values always encode to identical bytes.
package encoding

import (
	"strconv"
	"unicode/utf8"

	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// Encode returns the canonical bytes of tx.
func Encode(tx model.Transaction) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	// keys in lexicographic order: memo, timestamp, version, vin, vout
	buf.WriteString(`{"memo":`)
	if err := writeString(buf, "memo", tx.Memo); err != nil {
		return nil, err
	}
	buf.WriteString(`,"timestamp":`)
	writeInt(buf, tx.Timestamp)
	buf.WriteString(`,"version":`)
	writeInt(buf, tx.Version)

	buf.WriteString(`,"vin":[`)
	for n, in := range tx.Inputs {
		if n > 0 {
			buf.WriteByte(',')
		}
		// index, prev_txid
		buf.WriteString(`{"index":`)
		writeUint(buf, uint64(in.Index))
		buf.WriteString(`,"prev_txid":`)
		if err := writeString(buf, "vin."+strconv.Itoa(n)+".prev_txid", in.PrevTxID); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
	}

	buf.WriteString(`],"vout":[`)
	for n, out := range tx.Outputs {
		if n > 0 {
			buf.WriteByte(',')
		}
		// address, amount
		buf.WriteString(`{"address":`)
		if err := writeString(buf, "vout."+strconv.Itoa(n)+".address", out.Address); err != nil {
			return nil, err
		}
		buf.WriteString(`,"amount":`)
		writeUint(buf, out.Amount)
		buf.WriteByte('}')
	}
	buf.WriteString(`]}`)

	// buf goes back to the pool, so hand out a copy
	return append([]byte(nil), buf.B...), nil
}

func writeInt(buf *bytebufferpool.ByteBuffer, v int64) {
	buf.B = strconv.AppendInt(buf.B, v, 10)
}

func writeUint(buf *bytebufferpool.ByteBuffer, v uint64) {
	buf.B = strconv.AppendUint(buf.B, v, 10)
}

const hexDigits = "0123456789abcdef"

// writeString writes s as a JSON string literal. s must be valid UTF-8, otherwise there
// is no text to bind a signature to.
func writeString(buf *bytebufferpool.ByteBuffer, field, s string) error {
	if !utf8.ValidString(s) {
		return errors.Wrapf(model.ErrEncoding, "%s is not valid UTF-8", field)
	}

	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		buf.WriteString(s[start:i])
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		}
		start = i + 1
	}
	buf.WriteString(s[start:])
	buf.WriteByte('"')
	return nil
}
