package publishers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePublishersFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", `
publishers:
  - id: webhook
    type: http
    http:
      url: https://hooks.example.com/digest
  - id: sqs-digest
    type: queue
    enabled: false
    queue:
      provider: aws-sqs
      aws:
        uri: https://sqs.us-east-1.amazonaws.com/123/digest
        region: us-east-1
        access_key_id: AKIA123
        secret_access_key: secret
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.All(), 2)

	enabled := reg.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "webhook", enabled[0].ID)

	cfg, ok := reg.ByID("sqs-digest")
	require.True(t, ok)
	assert.False(t, cfg.EnabledValue())
}

func TestLoadRegistryExpandsEnv(t *testing.T) {
	t.Setenv("PUBLISHERS_TEST_URL", "https://env.example.com/hook")
	path := writePublishersFile(t, "publishers.yaml", `
publishers:
  - id: webhook
    type: http
    http:
      url: ${PUBLISHERS_TEST_URL}
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	cfg, ok := reg.ByID("webhook")
	require.True(t, ok)
	assert.Equal(t, "https://env.example.com/hook", cfg.HTTP.URL)
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", `
publishers:
  - id: same
    type: http
    http:
      url: https://a.example.com
  - id: same
    type: http
    http:
      url: https://b.example.com
`)

	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate publisher id")
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"missing id": `
publishers:
  - type: http
    http:
      url: https://a.example.com
`,
		"missing type": `
publishers:
  - id: x
`,
		"unknown type": `
publishers:
  - id: x
    type: carrier-pigeon
`,
		"http without url": `
publishers:
  - id: x
    type: http
    http:
      method: POST
`,
		"queue without provider config": `
publishers:
  - id: x
    type: queue
    queue:
      provider: aws-sqs
`,
		"unknown queue provider": `
publishers:
  - id: x
    type: queue
    queue:
      provider: rabbitmq
`,
		"gcp missing topic": `
publishers:
  - id: x
    type: queue
    queue:
      provider: gcp
      gcp:
        project_id: my-project
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writePublishersFile(t, "publishers.yaml", content)
			_, err := LoadRegistry(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistryInvalidJSONKeepsCause(t *testing.T) {
	path := writePublishersFile(t, "publishers.json", `{"publishers": [`)

	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json publishers file")
	assert.NotContains(t, err.Error(), "not recognized")
}

func TestLoadRegistryEmptyFile(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", `publishers: []`)
	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestSanitizeDefaultsHTTPFields(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", `
publishers:
  - id: webhook
    type: http
    http:
      url: "  https://hooks.example.com/digest  "
      method: post
      headers:
        "": dropped
        Authorization: "  Bearer token  "
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	cfg, ok := reg.ByID("webhook")
	require.True(t, ok)
	assert.Equal(t, "https://hooks.example.com/digest", cfg.HTTP.URL)
	assert.Equal(t, "POST", cfg.HTTP.Method)
	assert.Equal(t, httpDefaultTimeoutSeconds, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, map[string]string{"Authorization": "Bearer token"}, cfg.HTTP.Headers)
}
