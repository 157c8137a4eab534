package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvander/tidyflow/internal/model"
)

func validRule() model.Rule {
	return model.Rule{
		ID:           1,
		Title:        "Scripts",
		MatchKind:    model.MatchExtensionSet,
		MatchValue:   ".ps1,.bat",
		TargetFolder: "Scripts",
		Priority:     model.PriorityMedium,
		Enabled:      true,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Rule)
		wantErr string
	}{
		{
			name:   "valid extension set rule",
			mutate: func(*model.Rule) {},
		},
		{
			name: "valid filename pattern rule",
			mutate: func(r *model.Rule) {
				r.MatchKind = model.MatchFilenamePattern
				r.MatchValue = "(backup|bak)"
			},
		},
		{
			name: "valid folder contains rule",
			mutate: func(r *model.Rule) {
				r.MatchKind = model.MatchFolderContains
				r.MatchValue = "Downloads"
			},
		},
		{
			name:    "missing title",
			mutate:  func(r *model.Rule) { r.Title = "" },
			wantErr: "title",
		},
		{
			name:    "missing target folder",
			mutate:  func(r *model.Rule) { r.TargetFolder = "" },
			wantErr: "target_folder",
		},
		{
			name:    "unknown match kind",
			mutate:  func(r *model.Rule) { r.MatchKind = "glob" },
			wantErr: "match_kind",
		},
		{
			name:    "unknown priority",
			mutate:  func(r *model.Rule) { r.Priority = "urgent" },
			wantErr: "priority",
		},
		{
			name: "pattern does not compile",
			mutate: func(r *model.Rule) {
				r.MatchKind = model.MatchFilenamePattern
				r.MatchValue = "([unclosed"
			},
			wantErr: "does not compile",
		},
		{
			name: "extension set with no extensions",
			mutate: func(r *model.Rule) {
				r.MatchValue = " , ,"
			},
			wantErr: "no extensions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.mutate(&rule)

			err := Validate(&rule)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NilRule(t *testing.T) {
	assert.Error(t, Validate(nil))
}
