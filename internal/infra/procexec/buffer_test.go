package procexec

import "testing"

func TestTailBuffer(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		writes []string
		want   string
	}{
		{"fits", 8, []string{"abc", "de"}, "abcde"},
		{"exact", 5, []string{"abcde"}, "abcde"},
		{"overflow across writes", 5, []string{"abcd", "efg"}, "[... 2 bytes truncated ...]\ncdefg"},
		{"single large write", 4, []string{"ab", "cdefghij"}, "[... 6 bytes truncated ...]\nghij"},
		{"zero limit drops all", 0, []string{"abc"}, "[... 3 bytes truncated ...]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTailBuffer(tt.limit)
			for _, w := range tt.writes {
				n, err := b.Write([]byte(w))
				if err != nil || n != len(w) {
					t.Fatalf("Write(%q) = %d, %v", w, n, err)
				}
			}
			if got := b.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
