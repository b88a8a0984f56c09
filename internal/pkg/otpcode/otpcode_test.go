package otpcode

import (
	"strings"
	"testing"
)

func TestGenerateLengthAndCharset(t *testing.T) {
	gen := NewNumeric()

	for _, digits := range []int{MinDigits, DefaultDigits, MaxDigits} {
		code, err := gen.Generate(digits)
		if err != nil {
			t.Fatalf("Generate(%d): %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("Generate(%d) returned %q with length %d", digits, code, len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("Generate(%d) returned non-digit %q in %q", digits, c, code)
			}
		}
	}
}

func TestGenerateRejectsBadLengths(t *testing.T) {
	gen := NewNumeric()

	for _, digits := range []int{-1, 0, MinDigits - 1, MaxDigits + 1} {
		if _, err := gen.Generate(digits); err == nil {
			t.Fatalf("Generate(%d) should fail", digits)
		}
	}
}

func TestGenerateOutputsVary(t *testing.T) {
	gen := NewNumeric()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := gen.Generate(DefaultDigits)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatal("50 generated codes were all identical; random source is broken")
	}
}

func TestGenerateCoversAllDigits(t *testing.T) {
	gen := NewNumeric()

	var all strings.Builder
	for i := 0; i < 2000; i++ {
		code, err := gen.Generate(DefaultDigits)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		all.WriteString(code)
	}

	// 12000 samples: any digit absent would mean a skewed draw.
	for d := '0'; d <= '9'; d++ {
		if !strings.ContainsRune(all.String(), d) {
			t.Fatalf("digit %q never appeared across 2000 codes", d)
		}
	}
}

func TestGenerateKeepsLeadingZeros(t *testing.T) {
	gen := NewNumeric()

	// With 4-digit codes a leading zero shows up in ~10% of draws;
	// 500 draws without one means padding is broken.
	for i := 0; i < 500; i++ {
		code, err := gen.Generate(MinDigits)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if code[0] == '0' {
			return
		}
	}
	t.Fatal("no leading-zero code in 500 draws; zero padding looks broken")
}
