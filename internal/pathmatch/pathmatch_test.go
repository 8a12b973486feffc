package pathmatch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKeyNormalizesSegments(t *testing.T) {
	pol := Policy{FoldCase: false}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean absolute", in: "/movies/a.mkv", want: "/movies/a.mkv"},
		{name: "trailing separator", in: "/movies/dir/", want: "/movies/dir"},
		{name: "repeated separators", in: "/movies//sub///a.mkv", want: "/movies/sub/a.mkv"},
		{name: "dot segments", in: "/movies/./sub/../a.mkv", want: "/movies/a.mkv"},
		{name: "dotdot above root", in: "/../movies/a.mkv", want: "/movies/a.mkv"},
		{name: "backslash is a file name character", in: `/movies/a\b.mkv`, want: `/movies/a\b.mkv`},
		{name: "case preserved", in: "/Movies/Alien.MKV", want: "/Movies/Alien.MKV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pol.Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyWindowsSeparatorsAndDrives(t *testing.T) {
	pol := Policy{Windows: true}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "backslashes", in: `\movies\sub\a.mkv`, want: "/movies/sub/a.mkv"},
		{name: "mixed separators", in: `/movies\sub/a.mkv`, want: "/movies/sub/a.mkv"},
		{name: "drive letter lower", in: `c:\Movies\a.mkv`, want: "C:/Movies/a.mkv"},
		{name: "drive letter upper", in: `C:/Movies/a.mkv`, want: "C:/Movies/a.mkv"},
		{name: "drive relative", in: `d:Movies\a.mkv`, want: "D:/Movies/a.mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pol.Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyBackslashDistinctOutsideWindows(t *testing.T) {
	pol := Policy{}
	if pol.Equal(`/srv/movies/a\b.mkv`, "/srv/movies/a/b.mkv") {
		t.Error(`"a\b.mkv" and "a/b.mkv" are different files outside Windows`)
	}
	if !(Policy{Windows: true}).Equal(`/srv/movies/a\b.mkv`, "/srv/movies/a/b.mkv") {
		t.Error("backslash must separate under Windows")
	}
}

func TestKeyFoldCase(t *testing.T) {
	pol := Policy{FoldCase: true, Windows: true}

	tests := []struct {
		a, b string
	}{
		{"/Movies/Alien.MKV", "/movies/alien.mkv"},
		{`C:\Movies\Alien.mkv`, "c:/movies/alien.mkv/"},
		{"/Filme/STRASSE.mkv", "/filme/strasse.mkv"},
	}

	for _, tt := range tests {
		if !pol.Equal(tt.a, tt.b) {
			t.Errorf("Equal(%q, %q) = false, want true (keys %q, %q)", tt.a, tt.b, pol.Key(tt.a), pol.Key(tt.b))
		}
	}
}

func TestKeyCaseSensitiveDistinguishesCase(t *testing.T) {
	pol := Policy{FoldCase: false}
	if pol.Equal("/movies/Alien.mkv", "/movies/alien.mkv") {
		t.Error("Equal() = true for paths differing in case under a case-sensitive policy")
	}
	if !(Policy{Windows: true}).Equal(`c:\x\a.mkv`, `C:\x\a.mkv`) {
		t.Error("drive letter case must never matter")
	}
}

func TestKeyResolvesRelativePaths(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}

	pol := Policy{Windows: HostPolicy().Windows}
	abs := filepath.Join(wd, "sub", "a.mkv")

	if got, want := pol.Key("sub/a.mkv"), pol.Key(abs); got != want {
		t.Errorf("Key(relative) = %q, want %q", got, want)
	}
	if got, want := pol.Key("./sub/../sub/a.mkv"), pol.Key(abs); got != want {
		t.Errorf("Key(dotted relative) = %q, want %q", got, want)
	}
	if strings.Contains(pol.Key("sub/a.mkv"), "..") {
		t.Error("Key() left a parent segment in the key")
	}
}

func TestParsePolicy(t *testing.T) {
	host := HostPolicy()
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "auto", want: HostPolicy()},
		{in: "", want: HostPolicy()},
		{in: "true", want: Policy{FoldCase: true, Windows: host.Windows}},
		{in: "FALSE", want: Policy{FoldCase: false, Windows: host.Windows}},
		{in: "on", want: Policy{FoldCase: true, Windows: host.Windows}},
		{in: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePolicy(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
