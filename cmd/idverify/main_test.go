package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keksclan/goIDVerify/idverify"
	"github.com/keksclan/goIDVerify/internal/fixtures"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	err = cli.Run(context.Background(), logger, streams{in: strings.NewReader(stdin), out: &out})
	return out.String(), err
}

func TestRunVerifiesToken(t *testing.T) {
	keys := writeFile(t, "certs.json", fixtures.GoogleJWKS)

	out, err := run(t, "",
		"--client-id", fixtures.GoogleAudience,
		"--jwks-file", keys,
		"--unsafe-ignore-expiration",
		fixtures.GoogleToken,
	)
	require.NoError(t, err)

	var got result
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "fuchsnj@gmail.com", got.Profile.Email)
	assert.Equal(t, "accounts.google.com", got.Claims.Issuer)
	assert.Equal(t, uint64(fixtures.GoogleExpiresAt), got.Claims.ExpiresAt)
}

func TestRunReadsStdin(t *testing.T) {
	keys := writeFile(t, "certs.json", fixtures.GoogleJWKS)

	out, err := run(t, fixtures.GoogleToken+"\n",
		"--client-id", fixtures.GoogleAudience,
		"--jwks-file", keys,
		"--unsafe-ignore-expiration",
	)
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "fuchsnj@gmail.com"`)
}

func TestRunConfigFile(t *testing.T) {
	keys := writeFile(t, "certs.json", fixtures.GoogleJWKS)
	cfg := writeFile(t, "idverify.lua", `return {
  client_id = "`+fixtures.GoogleAudience+`",
  jwks = { file = "`+keys+`" },
  unsafe_ignore_expiration = true,
}`)

	_, err := run(t, "", "--config", cfg, fixtures.GoogleToken)
	require.NoError(t, err)
}

func TestRunRejects(t *testing.T) {
	keys := writeFile(t, "certs.json", fixtures.GoogleJWKS)

	_, err := run(t, "", "--client-id", fixtures.GoogleAudience, "--jwks-file", keys, fixtures.GoogleToken)
	assert.ErrorIs(t, err, idverify.ErrExpired)

	_, err = run(t, "", "--client-id", "other", "--jwks-file", keys, "--unsafe-ignore-expiration", fixtures.GoogleToken)
	assert.ErrorIs(t, err, idverify.ErrInvalidToken)

	_, err = run(t, "", "--client-id", fixtures.GoogleAudience, "--jwks-file", keys)
	assert.ErrorContains(t, err, "no token given")

	_, err = run(t, "", "--jwks-file", keys, fixtures.GoogleToken)
	assert.ErrorIs(t, err, idverify.ErrMissingClientID)

	_, err = run(t, "", "--config", writeFile(t, "idverify.yaml", "client_id: x"), fixtures.GoogleToken)
	assert.ErrorContains(t, err, "unsupported config file")
}
