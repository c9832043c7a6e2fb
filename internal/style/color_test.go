package style

import (
	"math"
	"testing"
)

func TestValidColor(t *testing.T) {
	for _, c := range []string{"#fff", "#A0B0C0", "red", "Navy", "none", "currentColor"} {
		if !ValidColor(c) {
			t.Errorf("ValidColor(%q) = false", c)
		}
	}
	for _, c := range []string{"", "#12", "#gggggg", "rgb(1,2,3)", "reddish"} {
		if ValidColor(c) {
			t.Errorf("ValidColor(%q) = true", c)
		}
	}
}

func TestBlend(t *testing.T) {
	if got := Blend("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("t=0: %s", got)
	}
	if got := Blend("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("t=1: %s", got)
	}
	if got := Blend("nonsense", "#ffffff", 0.2); got != "nonsense" {
		t.Errorf("unparseable a: %s", got)
	}
}

func TestSkyGradient_ContinuousAndDarkening(t *testing.T) {
	prev := Luminance(SkyGradient(30).Zenith)
	prevHorizon := SkyGradient(30).Horizon

	for alt := 30.0; alt >= -25; alt -= 0.25 {
		g := SkyGradient(alt)
		l := Luminance(g.Zenith)
		if l > prev+0.005 {
			t.Errorf("zenith brightens as the Sun sinks at %.2f: %.4f > %.4f", alt, l, prev)
		}
		// Small steps in altitude give small steps in color.
		if d := math.Abs(Luminance(g.Horizon) - Luminance(prevHorizon)); d > 0.06 {
			t.Errorf("horizon jumps by %.3f at %.2f", d, alt)
		}
		prev = l
		prevHorizon = g.Horizon
	}

	if SkyGradient(-30) != SkyGradient(-18) {
		t.Error("night gradient should be constant below -18")
	}
	if SkyGradient(45) != SkyGradient(10) {
		t.Error("day gradient should be constant above 10")
	}
}

func TestPalette(t *testing.T) {
	colors := []string{"#111111", "bogus"}
	if got := Palette(colors, 0, "#fff"); got != "#111111" {
		t.Errorf("index 0: %s", got)
	}
	if got := Palette(colors, 1, "#fff"); got != "#fff" {
		t.Errorf("invalid entry: %s", got)
	}
	if got := Palette(colors, 5, "#fff"); got != "#fff" {
		t.Errorf("out of range: %s", got)
	}
}
