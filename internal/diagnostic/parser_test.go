package diagnostic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

func TestParseHeader_Versioned(t *testing.T) {
	p := NewParser()
	line := "aeson-2.0.3.0 ([changelog](http://hackage.haskell.org/package/aeson-2.0.3.0/changelog)) (Adam Bergmark <adam@bergmark.nl> @bergmark, Stackage upper bounds) is out of bounds for:"

	h, ok, err := p.ParseHeader(line)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Versioned, h.Kind)
	assert.Equal(t, pkgver.Package("aeson"), h.Package)
	assert.Equal(t, pkgver.Version{2, 0, 3, 0}, h.Version)

	h, ok, err = p.ParseHeader("captcha-2captcha-0.1.0.0 ([changelog](x)) (Someone @x) is out of bounds for:")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pkgver.Package("captcha-2captcha"), h.Package)
	assert.Equal(t, pkgver.Version{0, 1, 0, 0}, h.Version)
}

func TestParseHeader_Missing(t *testing.T) {
	p := NewParser()
	line := "n2o-protocols (Compilation failures, Marat Khafizov <xafizoff@gmail.com> @xafizoff) (not present) depended on by:"

	h, ok, err := p.ParseHeader(line)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NewMissingHeader("n2o-protocols"), h)
}

func TestParseHeader_ShortExamples(t *testing.T) {
	p := NewParser()

	h, ok, err := p.ParseHeader("aeson-2.0.3.0 (...) is out of bounds for:")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NewVersionedHeader(pkgver.VersionedPackage{Package: "aeson", Version: pkgver.Version{2, 0, 3, 0}}), h)

	h, ok, err = p.ParseHeader("n2o-protocols (...) depended on by:")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NewMissingHeader("n2o-protocols"), h)

	_, ok, err = p.ParseHeader("something else entirely")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Detail
	}{
		{
			name: "package name containing a digit segment",
			line: "- [ ] captcha-2captcha-0.1.0.0 (==0.1.*). Edward Yang <qwbarch@gmail.com> @qwbarch. @qwbarch. Used by: library",
			want: Detail{Package: "captcha-2captcha", Version: pkgver.Version{0, 1, 0, 0}, Bound: "==0.1.*", Component: "library"},
		},
		{
			name: "short name",
			line: "- [ ] b9-3.2.0 (==1.4.*). Sven Heyll <svh@posteo.de> @sheyll. @sheyll. Used by: library",
			want: Detail{Package: "b9", Version: pkgver.Version{3, 2, 0}, Bound: "==1.4.*", Component: "library"},
		},
		{
			name: "mixed case",
			line: "- [ ] BlastHTTP-1.4.2 (==0.3.3.*). Ketil Malde @ketil-malde. Used by: library",
			want: Detail{Package: "BlastHTTP", Version: pkgver.Version{1, 4, 2}, Bound: "==0.3.3.*", Component: "library"},
		},
		{
			name: "test suite",
			line: "- [ ] hspec-core-2.10.0 (>=2.7 && <2.10). Simon Hengel @sol. Used by: test-suite",
			want: Detail{Package: "hspec-core", Version: pkgver.Version{2, 10, 0}, Bound: ">=2.7 && <2.10", Component: "test-suite"},
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := p.ParseDetail(tt.line)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_BucketsByComponent(t *testing.T) {
	input := `Downloading package index
some more prologue text that would not parse
curator: Snapshot dependency graph contains errors:

aeson-2.0.3.0 (...) is out of bounds for:
- [ ] foo-1.0 (<2). Used by: library
- [ ] bar-0.2.1 (>=1.5 && <1.6). Used by: executable
- [ ] foo-1.0 (<2). Used by: test-suite

n2o-protocols (...) depended on by:
- [ ] n2o-nitro-0.11.2 (-any). Used by: library
- [ ] baz-3 (-any). Used by: benchmark
`
	p := NewParser()
	var prologue []string
	p.Prologue = func(line string) { prologue = append(prologue, line) }

	res, err := p.Parse(strings.Split(input, "\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Downloading package index", "some more prologue text that would not parse"}, prologue)

	require.Len(t, res.Lib.Groups, 2)
	assert.Equal(t, "aeson-2.0.3.0", res.Lib.Groups[0].Header.String())
	assert.Len(t, res.Lib.Groups[0].Details, 2)
	assert.Equal(t, NewMissingHeader("n2o-protocols"), res.Lib.Groups[1].Header)
	assert.Equal(t, 3, res.Lib.Len())

	require.Len(t, res.Test.Groups, 1)
	assert.Equal(t, "test-suite", res.Test.Groups[0].Details[0].Component)

	require.Len(t, res.Bench.Groups, 1)
	assert.Equal(t, "benchmarks", res.Bench.Groups[0].Details[0].Component)
	assert.Equal(t, pkgver.Package("baz"), res.Bench.Groups[0].Details[0].Package)
}

func TestParse_NothingBeforeBanner(t *testing.T) {
	res, err := NewParser().Parse([]string{"- [ ] foo-1.0 (<2). Used by: library", "garbage"})
	require.NoError(t, err)
	assert.Zero(t, res.Lib.Len())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		wantErr error
		wantAt  int
	}{
		{
			name:    "detail before header",
			lines:   []string{Banner, "- [ ] foo-1.0 (<2). Used by: library"},
			wantErr: ErrNoHeader,
			wantAt:  2,
		},
		{
			name:    "unknown component",
			lines:   []string{Banner, "bar (...) depended on by:", "- [ ] foo-1.0 (<2). Used by: foreign-library"},
			wantErr: ErrUnknownComponent,
			wantAt:  3,
		},
		{
			name:    "unknown line",
			lines:   []string{Banner, "bar (...) depended on by:", "  this is not a diagnostic"},
			wantErr: ErrUnknownLine,
			wantAt:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(tt.lines)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var lineErr *LineError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, tt.wantAt, lineErr.Line)
		})
	}
}
