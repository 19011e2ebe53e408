package i18n

import "testing"

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		preference string
		want       string
	}{
		{"", "en-US"},
		{"en-US", "en-US"},
		{"pt-BR,pt;q=0.9,en;q=0.5", "pt-BR"},
		{"pt", "pt-BR"},
		{"ja-JP", "en-US"},
		{";;garbage", "en-US"},
	}
	for _, tt := range tests {
		if got := ResolveLocale(tt.preference); got != tt.want {
			t.Fatalf("ResolveLocale(%q) = %q, want %q", tt.preference, got, tt.want)
		}
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	got := GetCatalog("en-US").Format(CodeCellAlreadyTargeted, map[string]string{"Row": "3", "Col": "4"})
	if want := "Cell (3, 4) was already fired upon."; got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestFormatUsesRequestedLocale(t *testing.T) {
	c := GetCatalog("pt-BR")
	if c.Locale() != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", c.Locale())
	}
	got := c.Format(CodePlayerNotInMatch, map[string]string{"PlayerID": "p9"})
	if want := "O jogador p9 não está em uma partida."; got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestFormatFallsBackToCode(t *testing.T) {
	if got := GetCatalog("").Format("NO_SUCH_CODE", nil); got != "NO_SUCH_CODE" {
		t.Fatalf("Format = %q, want code fallback", got)
	}
}

func TestCatalogsCoverSameCodes(t *testing.T) {
	for code := range enUS {
		if _, ok := ptBR[code]; !ok {
			t.Fatalf("pt-BR catalog missing %s", code)
		}
	}
	if len(enUS) != len(ptBR) {
		t.Fatalf("catalog sizes differ: en-US=%d pt-BR=%d", len(enUS), len(ptBR))
	}
}
