package auth

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options. Secrets and cookie settings are injected
// through this interface, never read from globals.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetCookieName() string
	GetTokenTTL() time.Duration
	GetRotationThreshold() time.Duration
	GetResetTokenTTL() time.Duration
	GetMailSender() string
	GetMailAPIKey() string
	GetResetLinkBase() string
	GetSuccessRedirect() string
	GetFailureRedirect() string
}

// SimpleConfig is a plain-struct Config implementation
type SimpleConfig struct {
	SigningKey        string
	Issuer            string
	CookieName        string
	TokenTTL          time.Duration
	RotationThreshold time.Duration
	ResetTokenTTL     time.Duration
	MailSender        string
	MailAPIKey        string
	ResetLinkBase     string
	SuccessRedirect   string
	FailureRedirect   string
}

// NewConfig returns a SimpleConfig with the default lifetimes applied:
// 15 day tokens, 6 hour rotation threshold, 30 minute reset tokens.
func NewConfig(signingKey, cookieName string) *SimpleConfig {
	return &SimpleConfig{
		SigningKey:        signingKey,
		CookieName:        cookieName,
		TokenTTL:          15 * 24 * time.Hour,
		RotationThreshold: 6 * time.Hour,
		ResetTokenTTL:     30 * time.Minute,
	}
}

func (c *SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c *SimpleConfig) GetIssuer() string { return c.Issuer }

func (c *SimpleConfig) GetCookieName() string { return c.CookieName }

func (c *SimpleConfig) GetTokenTTL() time.Duration {
	if c.TokenTTL <= 0 {
		return 15 * 24 * time.Hour
	}
	return c.TokenTTL
}

func (c *SimpleConfig) GetRotationThreshold() time.Duration {
	if c.RotationThreshold <= 0 {
		return 6 * time.Hour
	}
	return c.RotationThreshold
}

func (c *SimpleConfig) GetResetTokenTTL() time.Duration {
	if c.ResetTokenTTL <= 0 {
		return 30 * time.Minute
	}
	return c.ResetTokenTTL
}

func (c *SimpleConfig) GetMailSender() string { return c.MailSender }

func (c *SimpleConfig) GetMailAPIKey() string { return c.MailAPIKey }

func (c *SimpleConfig) GetResetLinkBase() string { return c.ResetLinkBase }

func (c *SimpleConfig) GetSuccessRedirect() string { return c.SuccessRedirect }

func (c *SimpleConfig) GetFailureRedirect() string { return c.FailureRedirect }

var _ Config = (*SimpleConfig)(nil)

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
