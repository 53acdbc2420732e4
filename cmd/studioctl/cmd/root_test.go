package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		slugOffline, slugCandidate, migrateList = false, "", false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSlugPreview_Offline(t *testing.T) {
	out, err := run(t, "slug", "preview", "--offline", "Café", "Müller")
	require.NoError(t, err)
	assert.Equal(t, "cafe-muller\n", out)
}

func TestSlugPreview_OfflineCandidate(t *testing.T) {
	out, err := run(t, "slug", "preview", "--offline", "--slug", "Sky Garden II", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "sky-garden-ii\n", out)
}

func TestSlugPreview_OfflineEmpty(t *testing.T) {
	_, err := run(t, "slug", "preview", "--offline", "***")
	assert.Error(t, err)
}

func TestMigrateList(t *testing.T) {
	out, err := run(t, "migrate", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "0001_create_projects\n")
	assert.Contains(t, out, "0003_create_contact_enquiries\n")
}
