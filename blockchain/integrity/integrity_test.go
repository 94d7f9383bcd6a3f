package integrity

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

const scenarioBytes = `{"memo":"test","timestamp":1700000000,"version":1,"vin":[{"index":0,"prev_txid":"a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"}],"vout":[{"address":"EDU1DESTINOAAAA1111","amount":5000}]}`

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456"},
		{scenarioBytes, "c8f180057f6fe6d0aaed1d5ccb272b33646a53f99dc63a54a0af00e73186bf31"},
		{strings.Replace(scenarioBytes, `"test"`, `"tampered"`, 1), "b31f4e9ebc7b9387769efc415bc0e9d39886f50d33785bc769fe7bddaded483c"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Identifier([]byte(tt.in)))
	}
}

func TestSignKnownAnswer(t *testing.T) {
	sig, err := Sign(testKey(), []byte(scenarioBytes))
	require.NoError(t, err)
	require.Equal(t, "8fcd3e07d652e44d71d575224550bfc0be2d7218420c641327e0f1dd00f7019c", hex.EncodeToString(sig))

	sig, err = Sign(testKey(), nil)
	require.NoError(t, err)
	require.Equal(t, "d38b42096d80f45f826b44a9d5607de72496a415d3f4a1a8c88e3bb9da8dc1cb", hex.EncodeToString(sig))
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for i := 0; i < 20; i++ {
		key, err := GenerateKey(nil)
		require.NoError(t, err)
		msg := []byte(fmt.Sprintf("message %d", i))

		sig, err := Sign(key, msg)
		require.NoError(t, err)

		ok, err := Verify(key, msg, sig)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	key := testKey()
	sig, err := Sign(key, []byte(scenarioBytes))
	require.NoError(t, err)

	tampered := strings.Replace(scenarioBytes, `"test"`, `"tampered"`, 1)
	ok, err := Verify(key, []byte(tampered), sig)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Verify(key, []byte(scenarioBytes), sig[:16])
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeyIsolation(t *testing.T) {
	key1 := testKey()
	key2 := bytes.Repeat([]byte{0xee}, KeySize)

	sig1, err := Sign(key1, []byte(scenarioBytes))
	require.NoError(t, err)
	sig2, err := Sign(key2, []byte(scenarioBytes))
	require.NoError(t, err)
	require.NotEqual(t, sig1, sig2)

	ok, err := Verify(key2, []byte(scenarioBytes), sig1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInvalidKey(t *testing.T) {
	for _, key := range [][]byte{nil, {}, make([]byte, 16), make([]byte, 33)} {
		_, err := Sign(key, []byte("x"))
		require.True(t, errors.Is(err, model.ErrInvalidKey), "len %d: %v", len(key), err)

		_, err = Verify(key, []byte("x"), nil)
		require.True(t, errors.Is(err, model.ErrInvalidKey))
	}
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey(bytes.NewReader(testKey()))
	require.NoError(t, err)
	require.Equal(t, testKey(), key)

	_, err = GenerateKey(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)

	a, err := GenerateKey(nil)
	require.NoError(t, err)
	b, err := GenerateKey(nil)
	require.NoError(t, err)
	require.Len(t, a, KeySize)
	require.NotEqual(t, a, b)
}

func TestFingerprint(t *testing.T) {
	require.Equal(t, "ea4beb47def8492389a1e16634795441e1b87245", Fingerprint(testKey()))
	require.NotEqual(t, Fingerprint(testKey()), Fingerprint(make([]byte, KeySize)))
}
