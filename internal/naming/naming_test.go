package naming

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 7, 14, 5, 0, 0, time.Local)

func TestRenderPattern_VersionPadding(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		version int
		seq     string
		want    string
	}{
		{"single V", "{SEQ}_V{V}", 3, "Edit", "Edit_V3"},
		{"double V", "{SEQ}_V{VV}", 3, "Edit", "Edit_V03"},
		{"triple V", "{SEQ}_V{VVV}", 3, "Edit", "Edit_V003"},
		{"padding never truncates", "{V}", 100, "X", "100"},
		{"lowercase token", "{SEQ}_v{vv}", 7, "Cut", "Cut_v07"},
		{"multiple version tokens", "{V}-{VVV}", 12, "X", "12-012"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderPattern(tt.pattern, tt.version, tt.seq, fixedNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderPattern_DateAndTime(t *testing.T) {
	got := RenderPattern("{SEQ}_{DATE}_{TIME}_V{VV}", 4, "Promo", fixedNow)
	assert.Equal(t, "Promo_2025-03-07_14-05_V04", got)

	// Token names are case-insensitive.
	got = RenderPattern("{date} {time}", 1, "", fixedNow)
	assert.Equal(t, "2025-03-07 14-05", got)
}

func TestRenderPattern_UnrecognizedTokensVerbatim(t *testing.T) {
	got := RenderPattern("{SEQ}_{CAMERA}_V{V}", 2, "Edit", fixedNow)
	assert.Equal(t, "Edit_{CAMERA}_V2", got)
}

func TestRenderPattern_Idempotent(t *testing.T) {
	first := RenderPattern("{SEQ}_{DATE}_{TIME}_V{VV}", 9, "Edit", fixedNow)
	second := RenderPattern("{SEQ}_{DATE}_{TIME}_V{VV}", 9, "Edit", fixedNow)
	assert.Equal(t, first, second)
}

func TestRenderPattern_SequenceNameWithDollarSigns(t *testing.T) {
	// Regex replacement must treat the name literally.
	got := RenderPattern("{SEQ}_V{V}", 1, "Cut$1", fixedNow)
	assert.Equal(t, "Cut$1_V1", got)
}

func TestCleanSequenceName(t *testing.T) {
	assert.Equal(t, "My_Seq_Test", CleanSequenceName("My:Seq/Test"))
	assert.Equal(t, "a_b_c_d_e_f_g_h_i", CleanSequenceName(`a<b>c:d"e/f\g|h?i`))
	assert.Equal(t, "Plain Name 01", CleanSequenceName("Plain Name 01"))
}

func TestResolveNextVersion_EmptyFolder(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/exports", 0o755))

	v, err := ResolveNextVersion(fs, "/exports", "Edit")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestResolveNextVersion_MissingFolder(t *testing.T) {
	fs := afero.NewMemMapFs()

	v, err := ResolveNextVersion(fs, "/does/not/exist", "Edit")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestResolveNextVersion_NumericMax(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{
		"Base_V1.mp4",
		"Base_V2.mp4",
		"Base_V10.mp4",
		"Other_V99.mp4",
	} {
		require.NoError(t, afero.WriteFile(fs, "/exports/"+name, []byte("x"), 0o644))
	}

	v, err := ResolveNextVersion(fs, "/exports", "Base")
	require.NoError(t, err)
	// 11, not 3: numeric max, not lexicographic, and Other_V99 is filtered
	// out by the base-name prefix.
	assert.Equal(t, 11, v)
}

func TestResolveNextVersion_CaseInsensitive(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/exports/base_v5.MP4", []byte("x"), 0o644))

	v, err := ResolveNextVersion(fs, "/exports", "Base")
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestResolveNextVersion_MarkerAnywhereAfterBase(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/exports/Edit_V3_final.mov", []byte("x"), 0o644))

	v, err := ResolveNextVersion(fs, "/exports", "Edit")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestResolveNextVersion_IgnoresDirectoriesAndUnversioned(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/exports/Edit_V9", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/exports/Edit final.mov", []byte("x"), 0o644))

	v, err := ResolveNextVersion(fs, "/exports", "Edit")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestResolveNextVersion_ListError(t *testing.T) {
	fs := &failingFs{Fs: afero.NewMemMapFs()}
	require.NoError(t, fs.Fs.MkdirAll("/exports", 0o755))

	_, err := ResolveNextVersion(fs, "/exports", "Edit")
	require.Error(t, err)
}

func TestResolve_RendersFilenameAndPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/exports/Edit_V2.mp4", []byte("x"), 0o644))

	res, err := Resolve(fs, "/exports", "Edit", "mp4", "{SEQ}_V{VV}", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Version)
	assert.Equal(t, "Edit_V03.mp4", res.Filename)
	assert.Equal(t, "/exports/Edit_V03.mp4", res.FullPath)
}

// failingFs makes directory listings fail while leaving stat alone.
type failingFs struct {
	afero.Fs
}

func (f *failingFs) Open(name string) (afero.File, error) {
	return nil, os.ErrPermission
}
