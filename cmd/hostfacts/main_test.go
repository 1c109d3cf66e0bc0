package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offEC2Env configures an env-backed secrets store with metadata disabled so
// commands run without AWS access.
func offEC2Env(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	for _, key := range []string{"AWS_PROFILE", "AWS_ENDPOINT_URL", "EC2_METADATA_ENDPOINT", "EC2_METADATA_TIMEOUT", "SERVER_ADDR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("SECRETS_BACKEND", "env")
	t.Setenv("SECRETS_BREAKER_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("STAGING_APP_CREDS", `{"user":"svc","pass":"hunter2"}`)
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	code, _, stderr := runCmd(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "Usage:")
}

func TestRunUnknownCommand(t *testing.T) {
	offEC2Env(t)
	code, _, stderr := runCmd(t, "bogus")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, `unknown command "bogus"`)
}

func TestRunVersion(t *testing.T) {
	offEC2Env(t)
	code, stdout, _ := runCmd(t, "version")
	assert.Equal(t, exitOK, code)
	// Unset ldflags leave the linker defaults in place.
	assert.Equal(t, "hostfacts dev (commit none, built unknown)\n", stdout)
}

func TestRunInvalidConfig(t *testing.T) {
	offEC2Env(t)
	t.Setenv("SECRETS_BACKEND", "vault")
	code, _, stderr := runCmd(t, "version")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "error:")
}

func TestRunInstanceIDOffEC2(t *testing.T) {
	offEC2Env(t)
	code, stdout, _ := runCmd(t, "instance-id")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "\n", stdout)
}

func TestRunRegionOffEC2(t *testing.T) {
	offEC2Env(t)
	code, stdout, _ := runCmd(t, "region")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
}

func TestRunSecretMap(t *testing.T) {
	offEC2Env(t)
	code, stdout, _ := runCmd(t, "secret", "-folder", "app", "-name", "creds")
	require.Equal(t, exitOK, code)
	assert.JSONEq(t, `{"user":"svc","pass":"hunter2"}`, stdout)
}

func TestRunSecretKey(t *testing.T) {
	offEC2Env(t)
	code, stdout, _ := runCmd(t, "secret", "-folder=app", "-name=creds", "-key=user")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "svc\n", stdout)

	code, stdout, _ = runCmd(t, "secret", "-folder=app", "-name=creds", "-key=missing")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
}

func TestRunSecretUsesEnvironmentScope(t *testing.T) {
	offEC2Env(t)
	t.Setenv("APP_ENV", "production")
	code, stdout, _ := runCmd(t, "secret", "-folder=app", "-name=creds")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
}

func TestRunSecretRequiresFolderAndName(t *testing.T) {
	offEC2Env(t)
	code, _, stderr := runCmd(t, "secret", "-name=creds")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "-folder and -name are required")
}

type mockSTS struct {
	out *sts.GetCallerIdentityOutput
	err error
}

func (m mockSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return m.out, m.err
}

func stubSTS(t *testing.T, client stsAPI) {
	t.Helper()
	orig := newSTSClient
	newSTSClient = func(aws.Config) stsAPI { return client }
	t.Cleanup(func() { newSTSClient = orig })
}

func TestRunIdentity(t *testing.T) {
	offEC2Env(t)
	stubSTS(t, mockSTS{out: &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:role/app"),
	}})

	code, stdout, _ := runCmd(t, "identity")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "account=123456789012 arn=arn:aws:iam::123456789012:role/app region=us-west-2\n", stdout)
}

func TestRunIdentityFailure(t *testing.T) {
	offEC2Env(t)
	stubSTS(t, mockSTS{err: errors.New("ExpiredToken")})

	code, stdout, stderr := runCmd(t, "identity")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "ExpiredToken")
}

func TestRunServeStopsOnCancel(t *testing.T) {
	offEC2Env(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"serve", "-addr", "127.0.0.1:0"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
