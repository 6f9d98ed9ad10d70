package utils

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Belokurikha Resort & Spa": "belokurikha-resort-spa",
		"  Matsesta  ":             "matsesta",
		"Health---Guide 2025":      "health-guide-2025",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	for _, ok := range []string{"info@example.com", "a.b+c@mail.example.ru"} {
		if !IsValidEmail(ok) {
			t.Fatalf("%q should be valid", ok)
		}
	}
	for _, bad := range []string{"", "nope", "a@b", "a b@example.com"} {
		if IsValidEmail(bad) {
			t.Fatalf("%q should be invalid", bad)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	if !reflect.DeepEqual(got, []int{3, 1, 2}) {
		t.Fatalf("got %v", got)
	}
}
