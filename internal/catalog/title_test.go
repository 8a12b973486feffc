package catalog

import "testing"

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/m/movie.2015.mkv", "Movie 2015"},
		{"/m/the_big_lebowski.avi", "The Big Lebowski"},
		{"/m/The.Matrix.1999.1080p.mkv", "The Matrix 1999 1080P"},
		{`C:\Films\heat..1995.mp4`, "Heat 1995"},
		{"/m/movie2015part.mp4", "Movie2015Part"},
		{"/m/o'brien.mkv", "O'Brien"},
		{"/m/ДОБРО.пожаловать.mkv", "Добро Пожаловать"},
		{"/m/noext", "Noext"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DeriveTitle(tt.path); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		title string
		want  Year
	}{
		{"Movie 2015", "2015"},
		{"Blade Runner 2049 1982", "2049"},
		{"12345", "1234"},
		{"Up", YearUnknown},
		{"Room 101", YearUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := ExtractYear(tt.title); got != tt.want {
				t.Errorf("ExtractYear(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
