package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clinctx/internal/match"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	v := New()

	used, err := ReadFile(v, "")
	require.NoError(t, err)
	assert.Empty(t, used)

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Rules)
	assert.Equal(t, "NORM", cfg.Attr)
	assert.Equal(t, "entity", cfg.Label)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.Terms)
	assert.Equal(t, match.AttrNorm, cfg.PhraseAttr())
}

func TestConfigFile(t *testing.T) {
	path := writeConfig(t, `
rules: /etc/clinctx/rules.yaml
attr: lower
terms:
  - koorts
  - hoest
label: symptom
format: json
`)
	v := New()
	used, err := ReadFile(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "/etc/clinctx/rules.yaml", cfg.Rules)
	assert.Equal(t, match.AttrLower, cfg.PhraseAttr())
	assert.Equal(t, []string{"koorts", "hoest"}, cfg.Terms)
	assert.Equal(t, "symptom", cfg.Label)
	assert.Equal(t, "json", cfg.Format)
}

func TestHomeConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".clinctx")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("label: finding\n"), 0o644))

	v := New()
	used, err := ReadFile(v, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), used)

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "finding", cfg.Label)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "attr: lower\nlabel: symptom\n")
	t.Setenv("CLINCTX_ATTR", "text")

	v := New()
	_, err := ReadFile(v, path)
	require.NoError(t, err)

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, match.AttrText, cfg.PhraseAttr())
	assert.Equal(t, "symptom", cfg.Label)
}

func TestExplicitFileMissing(t *testing.T) {
	v := New()
	_, err := ReadFile(v, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"unknown attr", func(c *Config) { c.Attr = "SHAPE" }, match.ErrUnknownAttr},
		{"unknown format", func(c *Config) { c.Format = "xml" }, ErrInvalidFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDecodeRejectsInvalidSetting(t *testing.T) {
	v := New()
	v.Set(KeyFormat, "xml")

	_, err := Decode(v)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
