package main

import (
	"io"
	"strings"

	"github.com/OdyseeTeam/fast-tx/blockchain/encoding"
	"github.com/OdyseeTeam/fast-tx/blockchain/model"
	"github.com/OdyseeTeam/fast-tx/blockchain/workflow"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

var walkthroughFields = model.Fields{
	Version:   1,
	Timestamp: 1700000000,
	Inputs:    []model.InputFields{{SourceIdentifier: strings.Repeat("a1", 32), OutputIndex: 0}},
	Outputs:   []model.OutputFields{{DestinationAddress: "EDU1DESTINOAAAA1111", Amount: 5000}},
	Memo:      "test",
}

// Walkthrough runs build, sign, tamper, verify on the console. Keys come from random,
// or crypto/rand when it is nil.
func Walkthrough(random io.Reader) error {
	sess, err := workflow.Session{}.WithNewKey(random)
	if err != nil {
		return err
	}
	logrus.Infof("generated key, fingerprint %s", sess.Fingerprint())

	sess, signed, err := sess.Sign(walkthroughFields)
	if err != nil {
		return err
	}
	logrus.Infof("serialized: %s", signed.Serialized)
	logrus.Infof("txid (double-SHA256): %s", signed.Identifier)
	logrus.Infof("signature (HMAC-SHA256): %s", signed.Signature)

	steps := []struct {
		memo string
		want bool
	}{
		{walkthroughFields.Memo, true},
		{"tampered", false},
	}
	for _, step := range steps {
		v, err := sess.Verify(&encoding.Override{Path: "memo", Value: step.memo})
		if err != nil {
			return err
		}
		outcome := "FAILED"
		if v.Matches {
			outcome = "OK"
		}
		logrus.Infof("memo %q: txid %s, verification %s", step.memo, v.Identifier, outcome)
		if v.Matches != step.want {
			return errors.Newf("memo %q: expected match=%t, got %t", step.memo, step.want, v.Matches)
		}
	}
	return nil
}
