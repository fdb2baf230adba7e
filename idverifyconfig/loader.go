// Package idverifyconfig loads idverify.Config from Go values, JSON files
// or sandboxed Lua scripts.
package idverifyconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/keksclan/goIDVerify/idverify"
)

// Loader loads an idverify.Config from a source.
type Loader interface {
	Load(ctx context.Context) (*idverify.Config, error)
}

type goLoader struct {
	cfg idverify.Config
}

// FromGo creates a Loader that returns the provided config directly.
func FromGo(cfg idverify.Config) Loader {
	return &goLoader{cfg: cfg}
}

func (l *goLoader) Load(_ context.Context) (*idverify.Config, error) {
	cfg := l.cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

type jsonLoader struct {
	path string
}

// FromJSONFile creates a Loader that reads config from a JSON file.
func FromJSONFile(path string) Loader {
	return &jsonLoader{path: path}
}

type jsonConfig struct {
	ClientID               string    `json:"client_id"`
	Issuers                []string  `json:"issuers"`
	JWKS                   jsonJWKS  `json:"jwks"`
	Cache                  jsonCache `json:"cache"`
	UnsafeIgnoreExpiration bool      `json:"unsafe_ignore_expiration"`
}

type jsonJWKS struct {
	URL     string `json:"url"`
	File    string `json:"file"`
	Fetcher string `json:"fetcher"`
}

type jsonCache struct {
	Backend   string    `json:"backend"`
	KeyPrefix string    `json:"key_prefix"`
	Redis     jsonRedis `json:"redis"`
}

type jsonRedis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (l *jsonLoader) Load(_ context.Context) (*idverify.Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read json config: %w", err)
	}
	return LoadJSON(data)
}

// LoadJSON parses a JSON config document.
func LoadJSON(data []byte) (*idverify.Config, error) {
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return nil, fmt.Errorf("parse json config: %w", err)
	}
	cfg := jsonToConfig(jc)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func jsonToConfig(jc jsonConfig) idverify.Config {
	return idverify.Config{
		ClientID: jc.ClientID,
		Issuers:  jc.Issuers,
		JWKSURL:  jc.JWKS.URL,
		JWKSFile: jc.JWKS.File,
		Fetcher:  idverify.FetcherKind(jc.JWKS.Fetcher),
		Cache: idverify.CacheConfig{
			Backend:   idverify.CacheBackend(jc.Cache.Backend),
			KeyPrefix: jc.Cache.KeyPrefix,
			Redis: idverify.RedisConfig{
				Addr:     jc.Cache.Redis.Addr,
				Password: jc.Cache.Redis.Password,
				DB:       jc.Cache.Redis.DB,
			},
		},
		UnsafeIgnoreExpiration: jc.UnsafeIgnoreExpiration,
	}
}

type luaLoader struct {
	path string
}

// FromLuaFile creates a Loader that reads config from a Lua file.
// The script must return a table shaped like the JSON document.
func FromLuaFile(path string) Loader {
	return &luaLoader{path: path}
}

func (l *luaLoader) Load(_ context.Context) (*idverify.Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read lua config file: %w", err)
	}
	return LoadLuaString(string(data))
}

// LoadLuaString runs a Lua config script and maps the returned table.
func LoadLuaString(script string) (*idverify.Config, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, pair := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(pair.fn))
		L.Push(lua.LString(pair.name))
		L.Call(1, 0)
	}
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)

	if err := L.DoString(script); err != nil {
		return nil, fmt.Errorf("lua config execution: %w", err)
	}

	ret := L.Get(-1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua config must return a table, got %s", ret.Type().String())
	}

	cfg := luaTableToConfig(tbl)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func luaTableToConfig(tbl *lua.LTable) *idverify.Config {
	cfg := &idverify.Config{
		ClientID:               getStringField(tbl, "client_id"),
		Issuers:                getStringSliceField(tbl, "issuers"),
		UnsafeIgnoreExpiration: getBoolField(tbl, "unsafe_ignore_expiration"),
	}

	if jwksTbl := getTableField(tbl, "jwks"); jwksTbl != nil {
		cfg.JWKSURL = getStringField(jwksTbl, "url")
		cfg.JWKSFile = getStringField(jwksTbl, "file")
		cfg.Fetcher = idverify.FetcherKind(getStringField(jwksTbl, "fetcher"))
	}

	if cacheTbl := getTableField(tbl, "cache"); cacheTbl != nil {
		cfg.Cache.Backend = idverify.CacheBackend(getStringField(cacheTbl, "backend"))
		cfg.Cache.KeyPrefix = getStringField(cacheTbl, "key_prefix")
		if redisTbl := getTableField(cacheTbl, "redis"); redisTbl != nil {
			cfg.Cache.Redis.Addr = getStringField(redisTbl, "addr")
			cfg.Cache.Redis.Password = getStringField(redisTbl, "password")
			cfg.Cache.Redis.DB = int(getNumberField(redisTbl, "db"))
		}
	}
	return cfg
}

func getStringField(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func getNumberField(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

func getBoolField(tbl *lua.LTable, key string) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return false
}

func getTableField(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStringSliceField reads the array part in index order.
func getStringSliceField(tbl *lua.LTable, key string) []string {
	t := getTableField(tbl, key)
	if t == nil {
		return nil
	}
	var result []string
	for i := 1; i <= t.Len(); i++ {
		if s, ok := t.RawGetInt(i).(lua.LString); ok {
			result = append(result, string(s))
		}
	}
	return result
}
