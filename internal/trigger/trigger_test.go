package trigger

import "testing"

func testConfig() Config {
	return Config{
		CheckboxPrefix: "- [ ]",
		Reference: PhraseSet{
			Enabled: true,
			Phrases: []string{"Ref:", "save reference"},
		},
		Followup: PhraseSet{
			Enabled: true,
			Phrases: []string{"follow up", "follow up on", "fu"},
		},
		Research: PhraseSet{
			Enabled: true,
			Phrases: []string{"research"},
		},
	}
}

func TestDetect_Followup(t *testing.T) {
	m := Detect("follow up: call Dana tomorrow", testConfig())
	if m == nil || m.Kind != KindFollowup {
		t.Fatalf("match = %+v, want followup", m)
	}
	if m.Rest != "call Dana tomorrow" {
		t.Errorf("rest = %q, want colon and whitespace stripped", m.Rest)
	}
}

func TestDetect_LongestPhraseWins(t *testing.T) {
	m := Detect("follow up on the contract", testConfig())
	if m == nil || m.Kind != KindFollowup {
		t.Fatalf("match = %+v", m)
	}
	if m.Rest != "the contract" {
		t.Errorf("rest = %q, want %q ('follow up on' must not be shadowed)", m.Rest, "the contract")
	}
}

func TestDetect_WordBoundary(t *testing.T) {
	// "fu" ends alphanumeric, so it must not match inside "future".
	if m := Detect("future plans for the team", testConfig()); m != nil {
		t.Errorf("expected no trigger, got %+v", m)
	}
	// "Ref:" ends in punctuation, so no boundary is required after it.
	if m := Detect("Ref:https://example.com", testConfig()); m == nil || m.Kind != KindReference {
		t.Errorf("expected reference trigger, got %+v", m)
	}
}

func TestDetect_NormalizationBeforeMatching(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"timestamp prefix", "09:36 - follow up with Dana"},
		{"bullet prefix", "- follow up with Dana"},
		{"checkbox prefix", "- [ ] follow up with Dana"},
		{"checkbox then timestamp", "- [ ] 09:36 - follow up with Dana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Detect(tt.content, testConfig())
			if m == nil || m.Kind != KindFollowup {
				t.Fatalf("match = %+v, want followup", m)
			}
			if m.Rest != "with Dana" {
				t.Errorf("rest = %q", m.Rest)
			}
		})
	}
}

func TestDetect_CaseInsensitive(t *testing.T) {
	m := Detect("FOLLOW UP: ping legal", testConfig())
	if m == nil || m.Kind != KindFollowup || m.Rest != "ping legal" {
		t.Errorf("match = %+v", m)
	}
}

func TestDetect_PriorityReferenceFirst(t *testing.T) {
	cfg := testConfig()
	// A reference phrase that could also read as research must resolve to
	// reference: priority is reference > followup > research.
	cfg.Reference.Phrases = []string{"research"}
	m := Detect("research https://example.com", cfg)
	if m == nil || m.Kind != KindReference {
		t.Fatalf("match = %+v, want reference by priority", m)
	}
	if m.URL != "https://example.com" {
		t.Errorf("url = %q", m.URL)
	}
}

func TestDetect_DisabledKindSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.Followup.Enabled = false
	if m := Detect("follow up: x", cfg); m != nil {
		t.Errorf("disabled trigger fired: %+v", m)
	}
}

func TestDetect_MidContentPhraseIgnored(t *testing.T) {
	if m := Detect("we should follow up eventually", testConfig()); m != nil {
		t.Errorf("phrase not at start must not fire: %+v", m)
	}
}

func TestDetect_Research(t *testing.T) {
	m := Detect("research Acme Corp", testConfig())
	if m == nil || m.Kind != KindResearch || m.Rest != "Acme Corp" {
		t.Errorf("match = %+v", m)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"- [ ] buy milk", "buy milk"},
		{"* bullet item", "bullet item"},
		{"09:36 - spoken line", "spoken line"},
		{"9:05 no dash", "no dash"},
		{"  plain  ", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in, "- [ ]"); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
