package server

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/OdyseeTeam/fast-tx/blockchain/integrity"
	"github.com/OdyseeTeam/fast-tx/blockchain/workflow"

	"github.com/sirupsen/logrus"
)

type sessionResponse struct {
	State       string `json:"state"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Key         string `json:"key,omitempty"`
}

type signResponse struct {
	Transaction json.RawMessage `json:"transaction"`
	Serialized  string          `json:"serialized"`
	Identifier  string          `json:"identifier"`
	Signature   string          `json:"signature"`
}

type verifyResponse struct {
	Transaction json.RawMessage `json:"transaction"`
	Serialized  string          `json:"serialized"`
	Identifier  string          `json:"identifier"`
	Matches     bool            `json:"matches"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logrus.Errorf("write response: %+v", err)
	}
}

func writeError(w http.ResponseWriter, action, id string, err error) {
	logFailure(action, id, err)
	writeJSON(w, statusFor(err), errorResponse{Error: userMessage(err)})
}

func describe(sess workflow.Session) sessionResponse {
	resp := sessionResponse{State: sess.State().String(), Fingerprint: sess.Fingerprint()}
	if len(sess.Key) > 0 {
		resp.Key = hex.EncodeToString(sess.Key)
	}
	return resp
}

func (s *Server) apiSession() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(w, r)
		sess, err := s.load(id)
		if err != nil {
			writeError(w, "session", id, err)
			return
		}
		writeJSON(w, http.StatusOK, describe(sess))
	})
}

func (s *Server) apiKey(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	sess, err := s.action(id, func(sess workflow.Session) (workflow.Session, error) {
		return sess.WithNewKey(s.random)
	})
	if err != nil {
		writeError(w, "generate key", id, err)
		return
	}
	logrus.Debugf("session %s: new key %s", id, sess.Fingerprint())
	writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) apiSign(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	fields, err := jsonFields(r, s.now().Unix())
	if err != nil {
		writeError(w, "sign", id, err)
		return
	}

	var signed workflow.Signed
	_, err = s.action(id, func(sess workflow.Session) (workflow.Session, error) {
		next, sig, err := sess.Sign(fields)
		signed = sig
		return next, err
	})
	if err != nil {
		writeError(w, "sign", id, err)
		return
	}
	logrus.Debugf("session %s: signed %s", id, signed.Identifier)
	writeJSON(w, http.StatusOK, signResponse{
		Transaction: signed.Serialized,
		Serialized:  string(signed.Serialized),
		Identifier:  signed.Identifier,
		Signature:   signed.Signature,
	})
}

func (s *Server) apiVerify(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	override, err := jsonOverride(r)
	if err != nil {
		writeError(w, "verify", id, err)
		return
	}
	sess, err := s.load(id)
	if err != nil {
		writeError(w, "verify", id, err)
		return
	}
	result, err := sess.Verify(override)
	if err != nil {
		writeError(w, "verify", id, err)
		return
	}
	logrus.Debugf("session %s: verify %s matches=%t key=%s", id, result.Identifier, result.Matches, integrity.Fingerprint(sess.Key))
	writeJSON(w, http.StatusOK, verifyResponse{
		Transaction: result.Serialized,
		Serialized:  string(result.Serialized),
		Identifier:  result.Identifier,
		Matches:     result.Matches,
	})
}
