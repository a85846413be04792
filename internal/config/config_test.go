package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	secret string
	err    error
	asked  string
}

func (f *fakeSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.asked = aws.ToString(params.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.secret)}, nil
}

func TestApplyDatabaseSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   DatabaseConfig
	}{
		{
			name:   "numeric port",
			secret: `{"host":"db.internal","port":5433,"dbname":"inventario","username":"app","password":"s3cret"}`,
			want:   DatabaseConfig{Host: "db.internal", Port: "5433", DBName: "inventario", User: "app", Password: "s3cret"},
		},
		{
			name:   "partial secret keeps configured values",
			secret: `{"username":"app","password":"s3cret"}`,
			want:   DatabaseConfig{Host: "localhost", Port: "5432", DBName: "inventory_db", User: "app", Password: "s3cret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := DatabaseConfig{Host: "localhost", Port: "5432", DBName: "inventory_db", User: "postgres", Password: "postgres", SecretARN: "arn:db"}
			client := &fakeSecrets{secret: tt.secret}

			require.NoError(t, ApplyDatabaseSecret(context.Background(), &db, client))
			assert.Equal(t, "arn:db", client.asked)

			tt.want.SecretARN = "arn:db"
			assert.Equal(t, tt.want, db)
		})
	}
}

func TestApplyDatabaseSecretErrors(t *testing.T) {
	db := DatabaseConfig{SecretARN: "arn:db"}
	assert.ErrorContains(t, ApplyDatabaseSecret(context.Background(), &db, &fakeSecrets{err: errors.New("denied")}), "denied")
	assert.ErrorContains(t, ApplyDatabaseSecret(context.Background(), &db, &fakeSecrets{secret: "{"}), "decode")

	untouched := DatabaseConfig{Host: "h"}
	require.NoError(t, ApplyDatabaseSecret(context.Background(), &untouched, nil))
	assert.Equal(t, "h", untouched.Host)
}

func TestParseCutoffs(t *testing.T) {
	assert.Equal(t, []float64{0.8, 0.95}, parseCutoffs("0.80, 0.95"))
	assert.Equal(t, []float64{0.7}, parseCutoffs("0.7,abc,"))
	assert.Empty(t, parseCutoffs(""))
}

func TestParseBrandOverrides(t *testing.T) {
	overrides := parseBrandOverrides(`{"ACME":{"safety_factor":1.5},"GEN":{"safety_days":10}}`)
	require.Len(t, overrides, 2)
	require.NotNil(t, overrides["ACME"].SafetyFactor)
	assert.Equal(t, 1.5, *overrides["ACME"].SafetyFactor)
	assert.Nil(t, overrides["ACME"].SafetyDays)
	assert.Equal(t, 10.0, *overrides["GEN"].SafetyDays)

	assert.Empty(t, parseBrandOverrides("not json"))
	assert.Empty(t, parseBrandOverrides(" "))
}
