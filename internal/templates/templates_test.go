package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AppliesColumnDefaults(t *testing.T) {
	t.Parallel()

	tpl, err := Parse([]byte(`
name: acme-bank
anchors: ["Acme Bank", "Member FDIC"]
`))
	require.NoError(t, err)

	assert.Equal(t, "acme-bank", tpl.Name)
	assert.Equal(t, ColumnRange{0, 120}, tpl.Columns.Date)
	assert.Equal(t, ColumnRange{120, 380}, tpl.Columns.Description)
	assert.Equal(t, ColumnRange{380, 9999}, tpl.Columns.Amount)
}

func TestParse_KeepsExplicitColumns(t *testing.T) {
	t.Parallel()

	tpl, err := Parse([]byte(`
name: wide-bank
anchors: ["Wide Bank"]
columns:
  date: [10, 90]
  description: [90, 300]
  amount: [300, 500]
date_format: "01/02/2006"
`))
	require.NoError(t, err)

	assert.Equal(t, ColumnRange{10, 90}, tpl.Columns.Date)
	assert.Equal(t, ColumnRange{300, 500}, tpl.Columns.Amount)
	assert.Equal(t, "01/02/2006", tpl.DateFormat)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tpl     Template
		wantErr string
	}{
		{
			name:    "missing name",
			tpl:     Template{Anchors: []string{"x"}},
			wantErr: "no name",
		},
		{
			name:    "missing anchors",
			tpl:     Template{Name: "t"},
			wantErr: "anchor",
		},
		{
			name:    "blank anchor",
			tpl:     Template{Name: "t", Anchors: []string{"  "}},
			wantErr: "blank anchor",
		},
		{
			name: "inverted range",
			tpl: Template{
				Name:    "t",
				Anchors: []string{"x"},
				Columns: Columns{Amount: ColumnRange{500, 300}},
			},
			wantErr: "inverted",
		},
		{
			name: "valid",
			tpl: Template{
				Name:    "t",
				Anchors: []string{"x"},
				Columns: Columns{Date: ColumnRange{0, 100}},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.tpl.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	tpl := Template{Name: "t", Anchors: []string{"Acme Bank", "Statement of Account"}}

	assert.True(t, tpl.Matches("ACME BANK\nstatement of account\nperiod..."))
	assert.False(t, tpl.Matches("Acme Bank only"))
	assert.False(t, Template{Name: "empty"}.Matches("anything"))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	write("20-second.yaml", "name: second\nanchors: [\"Second Bank\"]\n")
	write("10-first.yaml", "name: first\nanchors: [\"First Bank\"]\n")
	write("30-broken.yaml", "name: [unclosed\n")
	write("40-invalid.yml", "name: no-anchors\n")
	write("notes.txt", "not a template")

	set, err := Load(dir)
	require.NoError(t, err)

	// Broken and invalid files are skipped, not fatal.
	require.Equal(t, 2, set.Len())

	all := set.All()
	assert.Equal(t, "first", all[0].Name)
	assert.Equal(t, "second", all[1].Name)
}

func TestLoad_MissingDir(t *testing.T) {
	t.Parallel()

	set, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, set.Len())

	set, err = Load("")
	require.NoError(t, err)
	assert.Zero(t, set.Len())
}

func TestSet_Match(t *testing.T) {
	t.Parallel()

	set := NewSet(
		Template{Name: "a", Anchors: []string{"Alpha Bank"}},
		Template{Name: "b", Anchors: []string{"Beta Bank"}},
	)

	got := set.Match("welcome to beta bank")
	require.NotNil(t, got)
	assert.Equal(t, "b", got.Name)
	// Defaults are applied by NewSet.
	assert.Equal(t, ColumnRange{380, 9999}, got.Columns.Amount)

	assert.Nil(t, set.Match("gamma credit union"))

	var empty *Set
	assert.Nil(t, empty.Match("anything"))
}
