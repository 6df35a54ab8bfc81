package config

import (
	"fmt"
	"time"
)

// BaseConfig is the application configuration tree. Values load from
// config/app.json with env var overrides, via go-config.
type BaseConfig struct {
	App         App         `json:"app" koanf:"app"`
	Auth        Auth        `json:"auth" koanf:"auth"`
	Persistence Persistence `json:"persistence" koanf:"persistence"`
	SMTP        SMTP        `json:"smtp" koanf:"smtp"`
}

func (a BaseConfig) Validate() error {
	return nil
}

func (a *BaseConfig) GetApp() *App {
	return &a.App
}

func (a *BaseConfig) GetAuth() *Auth {
	return &a.Auth
}

func (a *BaseConfig) GetPersistence() *Persistence {
	return &a.Persistence
}

func (a *BaseConfig) GetSMTP() *SMTP {
	return &a.SMTP
}

type App struct {
	Address string `json:"address" koanf:"address"`
	Debug   bool   `json:"debug" koanf:"debug"`
}

func (a App) GetAddress() string {
	if a.Address == "" {
		return ":8572"
	}
	return a.Address
}

func (a App) GetDebug() bool {
	return a.Debug
}

// Auth holds the session policy knobs.
type Auth struct {
	IdleTimeoutExpression   string `json:"idle_timeout" koanf:"idle_timeout"`
	SweepIntervalExpression string `json:"sweep_interval" koanf:"sweep_interval"`
	HashCost                int    `json:"hash_cost" koanf:"hash_cost"`
	ContextKey              string `json:"context_key" koanf:"context_key"`
	TokenLookup             string `json:"token_lookup" koanf:"token_lookup"`
	AuthScheme              string `json:"auth_scheme" koanf:"auth_scheme"`
	AllowInit               bool   `json:"allow_init" koanf:"allow_init"`
}

func (a Auth) GetIdleTimeout() time.Duration {
	if a.IdleTimeoutExpression == "" {
		return 30 * time.Minute
	}
	dur, err := time.ParseDuration(a.IdleTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", a.IdleTimeoutExpression),
		)
	}
	return dur
}

func (a Auth) GetSweepInterval() time.Duration {
	if a.SweepIntervalExpression == "" {
		return 0
	}
	dur, err := time.ParseDuration(a.SweepIntervalExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", a.SweepIntervalExpression),
		)
	}
	return dur
}

func (a Auth) GetHashCost() int {
	return a.HashCost
}

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "principal"
	}
	return a.ContextKey
}

func (a Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "header:Authorization,cookie:principal"
	}
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a Auth) GetAllowInit() bool {
	return a.AllowInit
}

type Persistence struct {
	Debug                 bool   `json:"debug" koanf:"debug"`
	Driver                string `json:"driver" koanf:"driver"`
	DSN                   string `json:"dsn" koanf:"dsn"`
	PingTimeoutExpression string `json:"ping_timeout" koanf:"ping_timeout"`
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file::memory:?cache=shared"
	}
	return p.DSN
}

func (p Persistence) GetServer() string {
	return p.GetDSN()
}

func (p Persistence) GetOtelIdentifier() string {
	return ""
}

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

type SMTP struct {
	Addr     string `json:"addr" koanf:"addr"`
	From     string `json:"from" koanf:"from"`
	Username string `json:"username" koanf:"username"`
	Password string `json:"password" koanf:"password"`
}

func (s SMTP) GetSMTPAddr() string {
	if s.Addr == "" {
		return "localhost:25"
	}
	return s.Addr
}

func (s SMTP) GetSMTPFrom() string {
	if s.From == "" {
		return "no-reply@proveeduria.local"
	}
	return s.From
}

func (s SMTP) GetSMTPUsername() string {
	return s.Username
}

func (s SMTP) GetSMTPPassword() string {
	return s.Password
}
