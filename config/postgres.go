package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// PostgresConfig defines the optional snapshot table mirror database.
type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	CreateDatabase bool   `mapstructure:"create_database"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	TimeZone       string `mapstructure:"timezone"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	SSM SSMParameters `mapstructure:"ssm"`
}

// SSMParameters names the Parameter Store entries holding credentials in prod.
type SSMParameters struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// ParameterGetter is the subset of the SSM client used to resolve credentials.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// DSN renders the connection string for the configured database.
func (cfg *PostgresConfig) DSN() string {
	return cfg.dsn(cfg.Host, cfg.User, cfg.Password, cfg.DBName)
}

// MaintenanceDSN points at the default "postgres" database, used to create
// the configured one.
func (cfg *PostgresConfig) MaintenanceDSN() string {
	return cfg.dsn(cfg.Host, cfg.User, cfg.Password, "postgres")
}

func (cfg *PostgresConfig) dsn(host, user, password, dbname string) string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.Port, user, password, dbname, cfg.SSLMode,
	)

	if cfg.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", cfg.TimeZone)
	}

	return dsn
}

// ResolveCredentials replaces host, user and password with the values kept in
// SSM Parameter Store when running in prod. Empty parameter names keep the
// configured value. In any other environment it is a no-op.
func (cfg *PostgresConfig) ResolveCredentials(ctx context.Context, env string, getter ParameterGetter) error {
	if env != "prod" {
		return nil
	}

	if getter == nil {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		awsCfg, err := config.LoadDefaultConfig(ctxWithTimeout)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		getter = ssm.NewFromConfig(awsCfg)
	}

	targets := []struct {
		name string
		dst  *string
	}{
		{cfg.SSM.Host, &cfg.Host},
		{cfg.SSM.User, &cfg.User},
		{cfg.SSM.Password, &cfg.Password},
	}
	for _, t := range targets {
		if t.name == "" {
			continue
		}
		value, err := getParameterStoreValue(ctx, getter, t.name, true)
		if err != nil {
			return err
		}
		*t.dst = value
	}
	return nil
}

func getParameterStoreValue(ctx context.Context, getter ParameterGetter, parameterName string, decrypt bool) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	input := &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	}

	result, err := getter.GetParameter(ctxWithTimeout, input)
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", parameterName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", parameterName)
	}

	return *result.Parameter.Value, nil
}
