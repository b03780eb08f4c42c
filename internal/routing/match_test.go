package routing

import "testing"

func TestMatchesPrefix(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"/api/arrivals", "/api", true},
		{"/api/arrivals", "/api/arrivals", true},
		{"/api/", "/api/", true},
		{"/api/heatmap", "/api/", true},
		{"/api.evil.com/steal", "/api", false},
		{"/api-extended", "/api", false},
		{"/apiary", "/api", false},
		{"/api/routes-old", "/api/routes", false},
		{"/other", "/api", false},
		{"/anything", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path+"_vs_"+tt.prefix, func(t *testing.T) {
			got := MatchesPrefix(tt.path, tt.prefix)
			if got != tt.want {
				t.Errorf("MatchesPrefix(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestLongest(t *testing.T) {
	prefixes := []string{"/", "/api", "/api/road-closure-impact"}

	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/api/road-closure-impact", "/api/road-closure-impact", true},
		{"/api/heatmap", "/api", true},
		{"/health", "/", true},
	}
	for _, tt := range tests {
		got, ok := Longest(tt.path, prefixes)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Longest(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}

	if _, ok := Longest("/health", []string{"/api"}); ok {
		t.Error("expected no match")
	}
}

func TestEndpointSet_Label(t *testing.T) {
	s := NewEndpointSet("/", "/health", "/api/arrivals")

	tests := map[string]string{
		"/":                 "/",
		"/health":           "/health",
		"/api/arrivals":     "/api/arrivals",
		"/api/arrivals/x":   Unmatched,
		"/wp-admin/install": Unmatched,
	}
	for path, want := range tests {
		if got := s.Label(path); got != want {
			t.Errorf("Label(%q) = %q, want %q", path, got, want)
		}
	}
}
