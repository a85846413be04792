package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsGetter is the slice of the Secrets Manager client used here.
type SecretsGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// databaseSecret is the JSON shape RDS stores for generated credentials.
type databaseSecret struct {
	Host     string      `json:"host"`
	Port     json.Number `json:"port"`
	DBName   string      `json:"dbname"`
	Username string      `json:"username"`
	Password string      `json:"password"`
}

// NewAWSConfig loads the default credential chain for the configured region.
func NewAWSConfig(ctx context.Context, cfg AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// ApplyDatabaseSecret overwrites the connection fields of db with the secret
// at db.SecretARN. Fields missing from the secret keep their configured value.
func ApplyDatabaseSecret(ctx context.Context, db *DatabaseConfig, client SecretsGetter) error {
	if db.SecretARN == "" {
		return nil
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(db.SecretARN),
	})
	if err != nil {
		return fmt.Errorf("get database secret: %w", err)
	}

	var secret databaseSecret
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &secret); err != nil {
		return fmt.Errorf("decode database secret: %w", err)
	}

	if secret.Host != "" {
		db.Host = secret.Host
	}
	if secret.Port != "" {
		db.Port = secret.Port.String()
	}
	if secret.DBName != "" {
		db.DBName = secret.DBName
	}
	if secret.Username != "" {
		db.User = secret.Username
	}
	if secret.Password != "" {
		db.Password = secret.Password
	}
	return nil
}

// ResolveDatabase applies the Secrets Manager payload when DB_SECRET_ARN is set.
func ResolveDatabase(ctx context.Context, cfg *Config) error {
	if cfg.Database.SecretARN == "" {
		return nil
	}
	awsCfg, err := NewAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return err
	}
	return ApplyDatabaseSecret(ctx, &cfg.Database, secretsmanager.NewFromConfig(awsCfg))
}
