package colors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContrastRatio(t *testing.T) {
	tests := []struct {
		name  string
		fg    string
		bg    string
		want  float64
		delta float64
	}{
		{"black on white (max contrast)", "#000000", "#ffffff", 21.0, 0.1},
		{"white on black (max contrast)", "#ffffff", "#000000", 21.0, 0.1},
		{"same color (no contrast)", "#808080", "#808080", 1.0, 0.1},
		{"black on mid gray", "#000000", "#808080", 5.3, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, ContrastRatio(MustHex(tt.fg), MustHex(tt.bg)), tt.delta)
		})
	}
}

func TestEnsureContrast(t *testing.T) {
	for _, pair := range [][2]string{
		{"#ffffff", "#000000"},
		{"#808080", "#666666"},
		{"#333333", "#222222"},
	} {
		fg, bg := MustHex(pair[0]), MustHex(pair[1])
		got := EnsureContrast(fg, bg, MinContrast)
		require.GreaterOrEqual(t, ContrastRatio(got, bg), MinContrast, "fg %s on %s", got.Hex(), pair[1])
	}

	// already legible colors come back unchanged
	fg := MustHex("#e0def4")
	require.Equal(t, fg, EnsureContrast(fg, MustHex("#191724"), MinContrast))
}

func TestLuminance(t *testing.T) {
	require.InDelta(t, 0, MustHex("#000000").Luminance(), 1e-9)
	require.InDelta(t, 1, MustHex("#ffffff").Luminance(), 1e-9)
	require.True(t, MustHex("#f0f0d0").IsLight())
	require.False(t, MustHex("#191724").IsLight())
	require.False(t, EightBit(16).IsLight())
	require.True(t, EightBit(231).IsLight())
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#0a0b0c")
	require.NoError(t, err)
	require.Equal(t, RGB(10, 11, 12), c)
	require.Equal(t, "#0a0b0c", c.Hex())

	c, err = ParseHex("ffffff")
	require.NoError(t, err)
	require.Equal(t, RGB(255, 255, 255), c)

	_, err = ParseHex("#fff")
	require.Error(t, err)
}

func TestPaletteColorSequence(t *testing.T) {
	require.Equal(t, "48;2;10;11;12", RGB(10, 11, 12).Sequence(true))
	require.Equal(t, "38;2;10;11;12", RGB(10, 11, 12).Sequence(false))
	require.Equal(t, "48;5;238", EightBit(238).Sequence(true))
	require.Equal(t, "38;5;16", EightBit(16).Sequence(false))
}

func TestPaletteColorLipgloss(t *testing.T) {
	require.Equal(t, "#191724", MustHex("#191724").Lipgloss())
	require.Equal(t, "154", EightBit(154).Lipgloss())
}

func TestPaletteFor(t *testing.T) {
	p, ok := PaletteFor("Rose-Pine", HueLight)
	require.True(t, ok)
	require.Equal(t, HueDark, p.Hue, "named palettes carry their own hue")

	p, ok = PaletteFor("", HueLight)
	require.True(t, ok)
	require.Equal(t, DefaultPalette(HueLight), p)

	p, ok = PaletteFor("no-such-theme", HueDark)
	require.False(t, ok)
	require.Equal(t, DefaultPalette(HueDark), p)

	require.Contains(t, PaletteNames(), "default")
	require.Contains(t, PaletteNames(), "dracula")
}

func TestPaletteHueConventions(t *testing.T) {
	dark := DefaultPalette(HueDark)
	require.Equal(t, dark.Black, dark.LineBackground())
	require.Equal(t, dark.Black, dark.Text())
	require.Equal(t, dark.White, dark.Contrast())
	require.Equal(t, dark.White, dark.Alternate())

	light := DefaultPalette(HueLight)
	require.Equal(t, light.White, light.LineBackground())
	require.Equal(t, light.White, light.Text())
	require.Equal(t, light.Black, light.Contrast())
}

func TestLegible(t *testing.T) {
	bg := MustHex("#222222")
	got := Legible(MustHex("#333333"), bg)
	require.GreaterOrEqual(t, ContrastRatio(got, bg), MinContrast)

	// 8-bit colors are left alone
	require.Equal(t, EightBit(16), Legible(EightBit(16), EightBit(17)))
}

func TestBuiltinPalettesAreRGB(t *testing.T) {
	for name, p := range Palettes {
		for _, c := range []PaletteColor{p.Fg, p.Bg, p.Black, p.White, p.Red, p.Green, p.Cyan, p.Orange} {
			require.True(t, c.RGB, "palette %s", name)
		}
	}
}

func TestParseThemeMode(t *testing.T) {
	m, ok := ParseThemeMode("Dark")
	require.True(t, ok)
	require.Equal(t, ThemeModeDark, m)

	m, ok = ParseThemeMode("")
	require.True(t, ok)
	require.Equal(t, ThemeModeAuto, m)

	_, ok = ParseThemeMode("sepia")
	require.False(t, ok)

	require.Equal(t, HueLight, NewBackgroundDetector(ThemeModeLight).Hue())
	require.Equal(t, HueDark, NewBackgroundDetector(ThemeModeDark).Hue())
}

func TestDetectorAutoUsesColorFGBG(t *testing.T) {
	t.Setenv("COLORFGBG", "15;0")
	require.Equal(t, HueDark, NewBackgroundDetector(ThemeModeAuto).Hue())

	t.Setenv("COLORFGBG", "0;default;15")
	require.Equal(t, HueLight, NewBackgroundDetector(ThemeModeAuto).Hue())
}

func TestDetectorProbeOrder(t *testing.T) {
	d := NewBackgroundDetector(ThemeModeAuto)
	d.probes = []probe{
		func() (bool, string, bool) { return false, "", false },
		func() (bool, string, bool) { return false, "#fafafa", true },
		func() (bool, string, bool) { return true, "#000000", true },
	}
	require.Equal(t, HueLight, d.Hue())
	require.Equal(t, "#fafafa", d.GetDetectedColor())

	d.probes = nil
	require.Equal(t, HueLight, d.Hue(), "result is cached")

	none := NewBackgroundDetector(ThemeModeAuto)
	none.probes = nil
	require.Equal(t, HueDark, none.Hue())
}
