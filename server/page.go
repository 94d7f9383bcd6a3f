package server

import (
	"encoding/hex"
	"html/template"
	"net/http"

	"github.com/OdyseeTeam/fast-tx/blockchain/integrity"
	"github.com/OdyseeTeam/fast-tx/blockchain/workflow"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/pretty"
)

type recordView struct {
	Pretty     string
	Serialized string
	Identifier string
	Signature  string
}

type verifyView struct {
	recordView
	Matches bool
}

type pageView struct {
	State       string
	KeyHex      string
	Fingerprint string
	CanSign     bool
	CanVerify   bool
	Form        formValues
	Signed      *recordView
	Verified    *verifyView
	Error       string
}

func prettyJSON(b []byte) string {
	return string(pretty.PrettyOptions(b, &pretty.Options{Width: 80, Indent: "  "}))
}

func (s *Server) view(sess workflow.Session, form formValues) pageView {
	v := pageView{
		State:       sess.State().String(),
		Fingerprint: sess.Fingerprint(),
		CanSign:     sess.State() != workflow.StateNoKey,
		CanVerify:   sess.State() == workflow.StateSigned,
		Form:        form,
	}
	if len(sess.Key) > 0 {
		v.KeyHex = hex.EncodeToString(sess.Key)
	}
	return v
}

func (s *Server) render(w http.ResponseWriter, status int, v pageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, v); err != nil {
		logrus.Errorf("render page: %+v", err)
	}
}

func (s *Server) page() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		id := s.sessionID(w, r)
		sess, err := s.load(id)
		if err != nil {
			logFailure("load", id, err)
			http.Error(w, userMessage(err), statusFor(err))
			return
		}

		form := defaultForm()
		v := s.view(sess, form)
		if orig, err := sess.Original(); err == nil {
			v.Form.AlterValue = orig.Memo
			v.Signed = &recordView{
				Pretty:     prettyJSON(sess.Serialized),
				Serialized: string(sess.Serialized),
				Identifier: integrity.Identifier(sess.Serialized),
				Signature:  sess.Signature,
			}
		}
		s.render(w, http.StatusOK, v)
	})
}

func (s *Server) pageKey(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	_ = r.ParseForm()
	form := postedForm(r)

	sess, err := s.action(id, func(sess workflow.Session) (workflow.Session, error) {
		return sess.WithNewKey(s.random)
	})
	v := s.view(sess, form)
	if err != nil {
		logFailure("generate key", id, err)
		v.Error = userMessage(err)
		s.render(w, statusFor(err), v)
		return
	}
	logrus.Debugf("session %s: new key %s", id, sess.Fingerprint())
	s.render(w, http.StatusOK, v)
}

func (s *Server) pageSign(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	_ = r.ParseForm()
	form := postedForm(r)

	var signed workflow.Signed
	sess, err := s.action(id, func(sess workflow.Session) (workflow.Session, error) {
		fields, err := form.fields(s.now().Unix())
		if err != nil {
			return sess, err
		}
		next, sig, err := sess.Sign(fields)
		signed = sig
		return next, err
	})
	v := s.view(sess, form)
	if err != nil {
		logFailure("sign", id, err)
		v.Error = userMessage(err)
		s.render(w, statusFor(err), v)
		return
	}
	logrus.Debugf("session %s: signed %s", id, signed.Identifier)
	v.Form.AlterValue = signed.Transaction.Memo
	v.Signed = &recordView{
		Pretty:     prettyJSON(signed.Serialized),
		Serialized: string(signed.Serialized),
		Identifier: signed.Identifier,
		Signature:  signed.Signature,
	}
	s.render(w, http.StatusOK, v)
}

func (s *Server) pageVerify(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	_ = r.ParseForm()
	form := postedForm(r)

	sess, err := s.load(id)
	if err != nil {
		logFailure("verify", id, err)
		http.Error(w, userMessage(err), statusFor(err))
		return
	}
	v := s.view(sess, form)

	result, err := sess.Verify(form.override())
	if err != nil {
		logFailure("verify", id, err)
		v.Error = userMessage(err)
		s.render(w, statusFor(err), v)
		return
	}
	logrus.Debugf("session %s: verify %s matches=%t", id, result.Identifier, result.Matches)
	v.Verified = &verifyView{
		recordView: recordView{
			Pretty:     prettyJSON(result.Serialized),
			Serialized: string(result.Serialized),
			Identifier: result.Identifier,
		},
		Matches: result.Matches,
	}
	s.render(w, http.StatusOK, v)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Transaction simulation</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; }
pre { background: #f4f4f4; padding: .5rem; overflow-x: auto; }
.ok { color: #1a7f37; } .fail { color: #cf222e; } .err { background: #ffebe9; padding: .5rem; }
fieldset { margin-bottom: 1rem; }
.steps { display: flex; flex-direction: column; } .key { order: -1; }
</style>
</head>
<body>
<h1>Transaction simulation</h1>
<p><small>Double SHA-256 identifier, HMAC-SHA256 "signature" and verification. For teaching only.</small></p>

{{with .Error}}<p class="err">{{.}}</p>{{end}}

{{/* sign stays the default submit button; css moves the key fieldset up */}}
<form method="post" action="/sign" class="steps">
<fieldset>
<legend>Build the transaction</legend>
<p><label>Previous tx (prev_txid) <input name="prev_txid" size="70" value="{{.Form.PrevTxID}}"></label></p>
<p><label>Previous output index <input name="index" type="number" min="0" value="{{.Form.Index}}"></label></p>
<p><label>Destination #1 <input name="address_1" value="{{.Form.Address1}}"></label>
<label>Amount #1 <input name="amount_1" type="number" min="0" step="100" value="{{.Form.Amount1}}"></label></p>
<p><label>Destination #2 (optional) <input name="address_2" value="{{.Form.Address2}}"></label>
<label>Amount #2 <input name="amount_2" type="number" min="0" step="100" value="{{.Form.Amount2}}"></label></p>
<p><label>Memo <input name="memo" size="60" value="{{.Form.Memo}}"></label></p>
<button type="submit" {{if not .CanSign}}disabled{{end}}>Build &amp; sign (HMAC)</button>
{{with .Signed}}
<p class="ok">Transaction built and signed.</p>
<pre>{{.Pretty}}</pre>
<p>Serialized bytes:</p><pre>{{.Serialized}}</pre>
<pre>TXID (double-SHA256): {{.Identifier}}</pre>
<pre>HMAC-SHA256 signature: {{.Signature}}</pre>
{{end}}
</fieldset>
<fieldset class="key">
<legend>Key</legend>
<button type="submit" formaction="/key">Generate teaching key</button>
{{if .KeyHex}}<pre>{{.KeyHex}}</pre><p>Fingerprint: <code>{{.Fingerprint}}</code></p>
{{else}}<p>Generate a key to begin.</p>{{end}}
</fieldset>
</form>

<fieldset>
<legend>Tamper and verify</legend>
{{if .CanVerify}}
<form method="post" action="/verify">
{{with .Form}}<input type="hidden" name="prev_txid" value="{{.PrevTxID}}">
<input type="hidden" name="index" value="{{.Index}}">
<input type="hidden" name="address_1" value="{{.Address1}}">
<input type="hidden" name="amount_1" value="{{.Amount1}}">
<input type="hidden" name="address_2" value="{{.Address2}}">
<input type="hidden" name="amount_2" value="{{.Amount2}}">
<input type="hidden" name="memo" value="{{.Memo}}">{{end}}
<p><label>Field <select name="path">
<option value="memo" {{if eq .Form.AlterPath "memo"}}selected{{end}}>memo</option>
<option value="vout.0.address" {{if eq .Form.AlterPath "vout.0.address"}}selected{{end}}>destination #1</option>
<option value="vout.0.amount" {{if eq .Form.AlterPath "vout.0.amount"}}selected{{end}}>amount #1</option>
<option value="vin.0.prev_txid" {{if eq .Form.AlterPath "vin.0.prev_txid"}}selected{{end}}>prev_txid</option>
<option value="vin.0.index" {{if eq .Form.AlterPath "vin.0.index"}}selected{{end}}>index</option>
<option value="timestamp" {{if eq .Form.AlterPath "timestamp"}}selected{{end}}>timestamp</option>
</select></label>
<label>New value <input name="value" size="50" value="{{.Form.AlterValue}}"></label></p>
<button type="submit">Verify with original signature</button>
</form>
{{else}}<p>Build and sign a transaction first.</p>{{end}}
{{with .Verified}}
<pre>{{.Pretty}}</pre>
<pre>New TXID: {{.Identifier}}</pre>
{{if .Matches}}<p class="ok">Verification with original signature: OK</p>
{{else}}<p class="fail">Verification with original signature: FAILED</p>
<p><small>Changing any field changes the hash and the "signature" no longer validates.</small></p>{{end}}
{{end}}
</fieldset>
</body>
</html>
`))
