package runtime

import (
	"sync"
	"testing"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr bool
	}{
		{"hello", false},
		{"^[a-z]+$", false},
		{"(foo|bar)+", false},
		{".*\\.txt$", false},
		{"[invalid", true},
		{"(unclosed", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := Compile(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("Compile(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}

func TestMatchString(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"hello", "hello world", true},
		{"hello", "goodbye world", false},
		{"^hello", "say hello", false},
		{"world$", "hello world", true},
		{"[0-9]+", "abc123def", true},
		{"[0-9]+", "abcdef", false},
		{"^$", "", true},
		{"^$", "x", false},
		{"foo|bar", "bar", true},
		{"a.b", "a\nb", true}, // dot matches newline
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.input, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if err != nil {
				t.Fatal(err)
			}
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegexCache(t *testing.T) {
	cache := NewRegexCache(3)

	if cache.Len() != 0 {
		t.Errorf("new cache Len() = %d, want 0", cache.Len())
	}

	re1, err := cache.Get("hello")
	if err != nil {
		t.Fatalf("Get(hello): %v", err)
	}
	re2, err := cache.Get("hello")
	if err != nil {
		t.Fatalf("Get(hello) again: %v", err)
	}
	if re1 != re2 {
		t.Error("expected same Regex instance from cache")
	}

	cache.Get("world")
	cache.Get("foo")
	if cache.Len() != 3 {
		t.Errorf("after 3 patterns, Len() = %d, want 3", cache.Len())
	}

	// Adding a 4th evicts the oldest (hello)
	cache.Get("bar")
	if cache.Len() != 3 {
		t.Errorf("after eviction, Len() = %d, want 3", cache.Len())
	}
	re3, _ := cache.Get("hello")
	if re3 == re1 {
		t.Error("expected hello to have been evicted and recompiled")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear(), Len() = %d, want 0", cache.Len())
	}
}

func TestRegexCacheMatch(t *testing.T) {
	cache := NewRegexCache(10)

	ok, err := cache.Match("^ab+c$", "abbbc")
	if err != nil || !ok {
		t.Errorf("Match = %v, %v; want true, nil", ok, err)
	}
	ok, err = cache.Match("^ab+c$", "ac")
	if err != nil || ok {
		t.Errorf("Match = %v, %v; want false, nil", ok, err)
	}
	if _, err := cache.Match("(", "x"); err == nil {
		t.Error("expected compile error for invalid pattern")
	}
}

func TestRegexCacheConcurrency(t *testing.T) {
	cache := NewRegexCache(100)
	patterns := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

	var wg sync.WaitGroup
	for i := range patterns {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := cache.Match(patterns[idx], "abcdefghij"); err != nil {
					t.Errorf("concurrent Match error: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
}

func BenchmarkRegexCacheMatch(b *testing.B) {
	cache := NewRegexCache(10)
	for i := 0; i < b.N; i++ {
		cache.Match("[0-9]+", "abc123def")
	}
}
