package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/commenter/internal/diagnostic"
	"github.com/blackwell-systems/commenter/internal/pkgver"
)

func TestLine_MissingHeaderLib(t *testing.T) {
	h := diagnostic.NewMissingHeader("mstate")
	d := diagnostic.Detail{
		Package:   "Network-NineP",
		Version:   pkgver.MustParseVersion("0.4.7.1"),
		Bound:     "-any",
		Component: "library",
	}

	got := Line(libIndent, true, h, d)
	assert.Equal(t,
		"        - Network-NineP < 0 # tried Network-NineP-0.4.7.1, but its *library* requires the disabled package: mstate",
		got)
}

func TestLine_VersionedHeaderTest(t *testing.T) {
	h := diagnostic.NewVersionedHeader(pkgver.VersionedPackage{Package: "aeson", Version: pkgver.MustParseVersion("2.0.3.0")})
	d := diagnostic.Detail{
		Package:   "foo",
		Version:   pkgver.MustParseVersion("1.0"),
		Bound:     ">=1.5 && <1.6",
		Component: "test-suite",
	}

	got := Line(testIndent, false, h, d)
	assert.Equal(t,
		"    - foo # tried foo-1.0, but its *test-suite* requires aeson >=1.5 && <1.6, but the snapshot contains aeson-2.0.3.0",
		got)
}

func TestRender_SortsEachBucket(t *testing.T) {
	input := `curator: Snapshot dependency graph contains errors:
zlib-0.7 (...) is out of bounds for:
- [ ] zeta-1.0 (<0.7). Used by: library
- [ ] alpha-2.0 (<0.7). Used by: library
- [ ] gamma-1 (<0.7). Used by: benchmark

base64 (...) depended on by:
- [ ] beta-0.1 (-any). Used by: executable
- [ ] omega-0.1 (-any). Used by: test-suite
- [ ] delta-0.1 (-any). Used by: test-suite
`
	res, err := diagnostic.NewParser().Parse(strings.Split(input, "\n"))
	require.NoError(t, err)

	lines := Render(res)

	require.Len(t, lines.Lib, 3)
	assert.True(t, strings.HasPrefix(lines.Lib[0], "        - alpha < 0 # tried alpha-2.0"))
	assert.True(t, strings.HasPrefix(lines.Lib[1], "        - beta < 0 # tried beta-0.1, but its *executable*"))
	assert.True(t, strings.HasPrefix(lines.Lib[2], "        - zeta < 0"))

	require.Len(t, lines.Test, 2)
	assert.True(t, strings.HasPrefix(lines.Test[0], "    - delta # tried"))
	assert.True(t, strings.HasPrefix(lines.Test[1], "    - omega # tried"))

	assert.Equal(t, []string{
		"    - gamma # tried gamma-1, but its *benchmarks* requires zlib <0.7, but the snapshot contains zlib-0.7",
	}, lines.Bench)
}

func TestRender_Empty(t *testing.T) {
	lines := Render(&diagnostic.Result{})
	assert.Empty(t, lines.Lib)
	assert.Empty(t, lines.Test)
	assert.Empty(t, lines.Bench)
}
