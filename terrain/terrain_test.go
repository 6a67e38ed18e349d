package terrain

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for i := Type(0); i < NumTypes; i++ {
		got, ok := Parse(i.String())
		if !ok || got != i {
			t.Errorf("Parse(%q) = %v, %v; want %v", i.String(), got, ok, i)
		}
	}
	if _, ok := Parse("lava"); ok {
		t.Error("Parse(lava) should fail")
	}
}

func TestGridLookup(t *testing.T) {
	g := NewGrid(4, 3, 10, Grass)
	g.SetTile(2, 1, ShallowWater)

	tests := []struct {
		x, y float32
		want Type
	}{
		{5, 5, Grass},
		{25, 15, ShallowWater},
		{29.9, 19.9, ShallowWater},
		{30, 15, Grass},
		{-0.5, 5, Mountain},
		{45, 5, Mountain},
	}
	for _, tt := range tests {
		if got := g.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	w, h := g.Bounds()
	if w != 40 || h != 30 {
		t.Errorf("Bounds() = %v,%v, want 40,30", w, h)
	}

	cx, cy := g.TileCenter(2, 1)
	if cx != 25 || cy != 15 {
		t.Errorf("TileCenter(2,1) = %v,%v, want 25,15", cx, cy)
	}

	g.SetTile(99, 99, Sand)
	if g.Counts()[Sand] != 0 {
		t.Error("off-grid SetTile should be ignored")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Cols, cfg.Rows = 48, 48

	a := Generate(cfg, 7)
	b := Generate(cfg, 7)
	for i := range a.tiles {
		if a.tiles[i] != b.tiles[i] {
			t.Fatalf("tile %d differs between runs with same seed", i)
		}
	}

	counts := a.Counts()
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != 48*48 {
		t.Errorf("counts sum to %d, want %d", total, 48*48)
	}
}

func TestClassifyBands(t *testing.T) {
	cfg := DefaultGenConfig()
	tests := []struct {
		elev, moist float64
		want        Type
	}{
		{0.1, 0.5, DeepWater},
		{0.25, 0.5, ShallowWater},
		{0.32, 0.5, Sand},
		{0.5, 0.5, Grass},
		{0.5, 0.8, Forest},
		{0.5, 0.1, Dirt},
		{0.75, 0.5, Hills},
		{0.9, 0.5, Mountain},
	}
	for _, tt := range tests {
		if got := classify(tt.elev, tt.moist, cfg); got != tt.want {
			t.Errorf("classify(%v,%v) = %v, want %v", tt.elev, tt.moist, got, tt.want)
		}
	}
}
