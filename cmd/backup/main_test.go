package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRequiresInput(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"import"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "input" not set`)
}

func TestImportMissingFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"import", "--input", filepath.Join(t.TempDir(), "nope.json")})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"yes\n", true},
		{"  yes  \n", true},
		{"y\n", false},
		{"", false},
	}

	for _, tt := range tests {
		cmd := &cobra.Command{}
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetIn(strings.NewReader(tt.answer))

		assert.Equal(t, tt.want, confirm(cmd, "sure? "), "answer %q", tt.answer)
		assert.Equal(t, "sure? ", out.String())
	}
}
