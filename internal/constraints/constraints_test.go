package constraints

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

func TestParseBCPackage(t *testing.T) {
	tests := []struct {
		in        string
		wantPkg   pkgver.Package
		wantBound string
	}{
		{"cleff", "cleff", ""},
		{"gitlab-haskell < 0", "gitlab-haskell", "< 0"},
		{"alex < 3.2.7 || > 3.2.7", "alex", "< 3.2.7 || > 3.2.7"},
		{"aeson   ", "aeson", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBCPackage(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPkg, got.Package)
			assert.Equal(t, tt.wantBound, got.Bound)
		})
	}

	_, err := ParseBCPackage("-leading-dash")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestGithubUsers(t *testing.T) {
	assert.Equal(t, []string{"@bergmark"}, Maintainer("Adam Bergmark <adam@bergmark.nl> @bergmark").GithubUsers())
	assert.Equal(t, []string{"@a", "@b"}, Maintainer("Two People @a  @b").GithubUsers())
	assert.Empty(t, Maintainer("Ketil Malde").GithubUsers())
}

func TestMaintenanceOrdering(t *testing.T) {
	assert.True(t, NewMaintenance("Zed").Less(NewMaintenance("Abandoned packages")))
	assert.False(t, NewMaintenance("Abandoned packages").Less(NewMaintenance("Zed")))
	assert.True(t, NewMaintenance("Abandoned packages").Less(NewMaintenance("Removed packages")))
	assert.True(t, NewMaintenance("Adam").Less(NewMaintenance("Bob")))

	_, ok := NewMaintenance("Stackage upper bounds").Maintainer()
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "build-constraints.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "9.2.4", doc.GHCVersion)

	var names []string
	for _, s := range doc.Sections {
		names = append(names, s.Maintenance.Name)
	}
	assert.Equal(t, []string{
		"Adam Bergmark <adam@bergmark.nl> @bergmark",
		"Ketil Malde",
		"Sven Heyll <svh@posteo.de> @sheyll",
		"Abandoned packages",
		"Grandfathered dependencies",
		"Library and exe bounds failures",
		"Stackage upper bounds",
	}, names)

	assert.Equal(t, []Maintainer{
		"Adam Bergmark <adam@bergmark.nl> @bergmark",
		"Ketil Malde",
		"Sven Heyll <svh@posteo.de> @sheyll",
	}, doc.Maintainers())
}

func TestByPackage(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "build-constraints.yaml"))
	require.NoError(t, err)
	bp := doc.ByPackage()

	fay := bp["fay"]
	require.NotNil(t, fay)
	assert.Equal(t, []string{"< 0"}, fay.Bounds)
	assert.Equal(t, []pkgver.Version{pkgver.MustParseVersion("0.24.2.0")}, fay.Versions)

	blast := bp["BlastHTTP"]
	require.NotNil(t, blast)
	assert.Empty(t, blast.Bounds)
	assert.Equal(t, []pkgver.Version{pkgver.MustParseVersion("1.4.2")}, blast.Versions)

	b9 := bp["b9"]
	require.NotNil(t, b9)
	assert.Empty(t, b9.Versions, "a prose comment is not a noted version")

	nineP := bp["Network-NineP"]
	require.NotNil(t, nineP)
	assert.Empty(t, nineP.Versions)
	assert.Equal(t, []Maintenance{{Name: "Library and exe bounds failures", Other: true}}, nineP.Maintainers)

	aeson := bp["aeson"]
	require.NotNil(t, aeson)
	assert.Equal(t, []string{"< 2.1"}, aeson.Bounds)
	assert.Len(t, aeson.Maintainers, 2)

	assert.Equal(t, []pkgver.Package{"aeson"}, bp.Multiple())
	assert.Nil(t, bp["cassava"], "skipped-tests entries are not packages")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no ghc-version", "packages:\n  a:\n    - foo\n"},
		{"no packages", "ghc-version: \"9.2.4\"\n"},
		{"section not a list", "ghc-version: \"9.2.4\"\npackages:\n  a: foo\n"},
		{"entry not a string", "ghc-version: \"9.2.4\"\npackages:\n  a:\n    - {x: 1}\n"},
		{"top level list", "- a\n"},
		{"broken yaml", "packages: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestParse_EmptyLibRegion(t *testing.T) {
	doc, err := Parse([]byte("ghc-version: \"9.2.4\"\npackages:\n    \"Library and exe bounds failures\":\n        []\n    # End of Library and exe bounds failures\n"))
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Empty(t, doc.Sections[0].Packages)
}
