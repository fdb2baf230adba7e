package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/keksclan/goIDVerify/idverify"
	"github.com/keksclan/goIDVerify/idverifyconfig"
)

type CLI struct {
	Config           string   `type:"existingfile" help:"Path to a .json or .lua config file"`
	ClientID         string   `name:"client-id" env:"IDVERIFY_CLIENT_ID" help:"OAuth client id the token must be issued for"`
	Issuers          []string `help:"Accepted iss values (defaults to Google's issuers)"`
	JWKSURL          string   `name:"jwks-url" help:"Key set URL (defaults to Google's certs endpoint)"`
	JWKSFile         string   `name:"jwks-file" type:"existingfile" help:"Pinned key set file; disables network access"`
	Fetcher          string   `help:"HTTP stack used to download keys (nethttp or fasthttp)"`
	IgnoreExpiration bool     `name:"unsafe-ignore-expiration" help:"Accept expired tokens"`
	LogLevel         string   `enum:"debug,info,warn,error" default:"warn" help:"Log level"`
	Token            string   `arg:"" optional:"" help:"ID token to verify; read from stdin when omitted or '-'"`
}

type streams struct {
	in  io.Reader
	out io.Writer
}

type result struct {
	Claims  idverify.RequiredClaims `json:"claims"`
	Profile idverify.IDPayload      `json:"profile"`
}

func (cli *CLI) Run(ctx context.Context, logger *logrus.Logger, s streams) error {
	level, err := logrus.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	cfg, err := cli.config(ctx)
	if err != nil {
		return err
	}
	client, err := idverify.New(*cfg, idverify.WithLogger(idverify.NewLogrusLogger(logger)))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	raw, err := cli.token(s.in)
	if err != nil {
		return err
	}
	tok, err := client.VerifyIDToken(ctx, raw)
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(result{Claims: tok.Claims(), Profile: tok.Payload()})
}

// config loads the config file, if any, and lets flags override it.
func (cli *CLI) config(ctx context.Context) (*idverify.Config, error) {
	cfg := &idverify.Config{}
	if cli.Config != "" {
		var loader idverifyconfig.Loader
		switch strings.ToLower(filepath.Ext(cli.Config)) {
		case ".json":
			loader = idverifyconfig.FromJSONFile(cli.Config)
		case ".lua":
			loader = idverifyconfig.FromLuaFile(cli.Config)
		default:
			return nil, fmt.Errorf("unsupported config file %q", cli.Config)
		}
		loaded, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cli.ClientID != "" {
		cfg.ClientID = cli.ClientID
	}
	if len(cli.Issuers) > 0 {
		cfg.Issuers = cli.Issuers
	}
	if cli.JWKSURL != "" {
		cfg.JWKSURL = cli.JWKSURL
	}
	if cli.JWKSFile != "" {
		cfg.JWKSFile = cli.JWKSFile
	}
	if cli.Fetcher != "" {
		cfg.Fetcher = idverify.FetcherKind(cli.Fetcher)
	}
	if cli.IgnoreExpiration {
		cfg.UnsafeIgnoreExpiration = true
	}
	return cfg, nil
}

func (cli *CLI) token(in io.Reader) (string, error) {
	if cli.Token != "" && cli.Token != "-" {
		return cli.Token, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no token given")
	}
	return line, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	cliCtx := kong.Parse(&cli, kong.Description("Verify a Google ID token and print its claims."))

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	cliCtx.BindTo(ctx, (*context.Context)(nil))
	cliCtx.Bind(logger)
	cliCtx.Bind(streams{in: os.Stdin, out: os.Stdout})

	if err := cliCtx.Run(); err != nil {
		logger.WithError(err).Error("verification failed")
		os.Exit(1)
	}
}
