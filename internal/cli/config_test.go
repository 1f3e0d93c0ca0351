package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/corestab/pkg/config"
)

func TestConfigValidateFile(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name     string
		content  string
		wantErr  bool
		contains []string
	}{
		{
			name:     "valid",
			content:  "format: yaml\nmax_boots: 3\n",
			contains: []string{"configuration is valid"},
		},
		{
			name:    "invalid",
			content: "format: yaml\noutput: faults.json\nboots: yesterday\n",
			wantErr: true,
			contains: []string{
				"output: faults.json is a json file but format is yaml",
				"try: corestab boots",
				"Suggestions:",
				"output: use --format json or an output ending in .yaml",
				"boots: list boot offsets as printed by journalctl --list-boots",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "corestab.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			var buf bytes.Buffer
			configValidateCmd.SetOut(&buf)
			defer configValidateCmd.SetOut(nil)

			err := configValidateCmd.RunE(configValidateCmd, []string{path})
			if tt.wantErr {
				var verrs config.ValidationErrors
				require.True(t, errors.As(err, &verrs))
				assert.Len(t, verrs.Errors, 2)
			} else {
				require.NoError(t, err)
			}

			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
