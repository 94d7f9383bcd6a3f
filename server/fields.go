package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/OdyseeTeam/fast-tx/blockchain/encoding"
	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
)

const (
	defaultPrevTxID = "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"
	defaultAddress1 = "EDU1DESTINOAAAA1111"
	defaultAmount1  = "5000"
	defaultAddress2 = "EDU1DESTINOBBBB2222"
	defaultAmount2  = "1500"
	defaultMemo     = "Compra de materiales para el laboratorio"
	defaultVersion  = "1"
)

// formValues are the raw strings shown in, and posted back from, the HTML form.
type formValues struct {
	PrevTxID   string
	Index      string
	Address1   string
	Amount1    string
	Address2   string
	Amount2    string
	Memo       string
	AlterPath  string
	AlterValue string
}

func defaultForm() formValues {
	return formValues{
		PrevTxID:   defaultPrevTxID,
		Index:      "0",
		Address1:   defaultAddress1,
		Amount1:    defaultAmount1,
		Address2:   defaultAddress2,
		Amount2:    defaultAmount2,
		Memo:       defaultMemo,
		AlterPath:  "memo",
		AlterValue: defaultMemo,
	}
}

func postedForm(r *http.Request) formValues {
	f := defaultForm()
	set := func(dst *string, key string) {
		if _, ok := r.PostForm[key]; ok {
			*dst = r.PostForm.Get(key)
		}
	}
	set(&f.PrevTxID, "prev_txid")
	set(&f.Index, "index")
	set(&f.Address1, "address_1")
	set(&f.Amount1, "amount_1")
	set(&f.Address2, "address_2")
	set(&f.Amount2, "amount_2")
	set(&f.Memo, "memo")
	f.AlterValue = f.Memo
	set(&f.AlterPath, "path")
	set(&f.AlterValue, "value")
	return f
}

// fields turns the form into transaction fields. The second output is optional and
// only counts when it has an address and a positive amount.
func (f formValues) fields(timestamp int64) (model.Fields, error) {
	fields, err := model.DecodeFields(map[string]interface{}{
		"version":   defaultVersion,
		"timestamp": timestamp,
		"inputs": []map[string]interface{}{
			{"source_identifier": f.PrevTxID, "output_index": f.Index},
		},
		"outputs": []map[string]interface{}{
			{"destination_address": f.Address1, "amount": f.Amount1},
			{"destination_address": f.Address2, "amount": f.Amount2},
		},
		"memo": f.Memo,
	})
	if err != nil {
		return model.Fields{}, err
	}
	if second := fields.Outputs[1]; second.DestinationAddress == "" || second.Amount <= 0 {
		fields.Outputs = fields.Outputs[:1]
	}
	return fields, nil
}

func (f formValues) override() *encoding.Override {
	path := strings.TrimSpace(f.AlterPath)
	if path == "" {
		path = "memo"
	}
	return &encoding.Override{Path: path, Value: f.AlterValue}
}

// jsonFields reads transaction fields from a JSON body. A missing timestamp means now.
func jsonFields(r *http.Request, now int64) (model.Fields, error) {
	raw := map[string]interface{}{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return model.Fields{}, errors.Wrapf(model.ErrEncoding, "request body: %v", err)
	}
	if _, ok := raw["timestamp"]; !ok {
		raw["timestamp"] = strconv.FormatInt(now, 10)
	}
	return model.DecodeFields(raw)
}

type overrideRequest struct {
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// jsonOverride reads {"path": ..., "value": ...}. An empty body or path verifies the record unchanged.
func jsonOverride(r *http.Request) (*encoding.Override, error) {
	var req overrideRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(model.ErrEncoding, "request body: %v", err)
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, nil
	}
	return &encoding.Override{Path: strings.TrimSpace(req.Path), Value: req.Value}, nil
}
