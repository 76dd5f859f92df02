package version

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrdering(t *testing.T) {
	chain := []Version{
		New(1, 2, 3, 4),
		New(1, 2, 3, 5),
		New(1, 2, 4, 0),
		New(1, 3, 0, 0),
		New(2, 0, 0, 0),
	}

	for i := 0; i < len(chain)-1; i++ {
		if !chain[i].Less(chain[i+1]) {
			t.Errorf("Expected %s < %s", chain[i], chain[i+1])
		}
		if chain[i+1].Less(chain[i]) {
			t.Errorf("Expected !(%s < %s)", chain[i+1], chain[i])
		}
	}
	if chain[0].Less(chain[0]) || chain[0].Compare(New(1, 2, 3, 4)) != 0 {
		t.Error("Equal versions should compare equal")
	}
}

func TestBumps(t *testing.T) {
	v := New(1, 2, 3, 4)

	tests := []struct {
		name string
		got  Version
		want Version
	}{
		{"Revision", v.BumpRevision(), New(1, 2, 3, 5)},
		{"Build", v.BumpBuild(), New(1, 2, 4, 0)},
		{"Minor", v.BumpMinor(), New(1, 3, 0, 0)},
		{"Major", v.BumpMajor(), New(2, 0, 0, 0)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, tt.got)
		}
	}
}

func TestFileName(t *testing.T) {
	if name := New(1, 0, 0, 12).FileName(); name != "1_0_0_12.RTP" {
		t.Errorf("Unexpected file name %q", name)
	}
}

func TestParse(t *testing.T) {
	v, err := Parse(" 1.2.3.4 ")
	if err != nil {
		t.Fatal(err)
	}
	if v != New(1, 2, 3, 4) {
		t.Errorf("Unexpected version %s", v)
	}

	v, err = Parse("3.1")
	if err != nil || v != New(3, 1, 0, 0) {
		t.Errorf("Expected 3.1.0.0, got %s (%v)", v, err)
	}

	for _, bad := range []string{"", "1", "1.2.3.4.5", "1.x.3.4", "-1.0.0.0"} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("Parse(%q): expected ErrInvalidVersion, got %v", bad, err)
		}
	}
}

func TestReadINI(t *testing.T) {
	v, err := ReadINI("[Client]\nver=1.0.0.42\n\n[Download]\naddress=http://example.com/\n")
	if err != nil {
		t.Fatal(err)
	}
	if v != New(1, 0, 0, 42) {
		t.Errorf("Unexpected version %s", v)
	}

	if _, err := ReadINI("[Other]\nver=1.0.0.0\n"); err == nil {
		t.Error("Expected error for missing section")
	}
}

func TestWriteClient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ClientFile)
	if err := os.WriteFile(path, []byte("[Client]\nver=1.0.0.1\nlang=jp\n[Extra]\nver=keep\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := WriteClient(dir, New(1, 0, 0, 2)); err != nil {
		t.Fatal(err)
	}

	v, err := ReadClient(dir)
	if err != nil {
		t.Fatal(err)
	}
	if v != New(1, 0, 0, 2) {
		t.Errorf("Expected 1.0.0.2, got %s", v)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "lang=jp") || !strings.Contains(string(data), "[Extra]\nver=keep") {
		t.Errorf("Other keys should be kept: %q", data)
	}
}

func TestWriteClientCreates(t *testing.T) {
	dir := t.TempDir()

	if err := WriteClient(dir, New(2, 1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	v, err := ReadClient(dir)
	if err != nil || v != New(2, 1, 0, 0) {
		t.Errorf("Expected 2.1.0.0, got %s (%v)", v, err)
	}
}

func TestSetINIValueAddsKey(t *testing.T) {
	got := setINIValue("[Client]\nlang=jp\n[Other]\nx=1\n", Section, Key, "1.0.0.0")
	want := "[Client]\nlang=jp\nver=1.0.0.0\n[Other]\nx=1\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReadINIByteOrderMark(t *testing.T) {
	v, err := ReadINI("\ufeff[Client]\r\nver = 1.0.0.7 \r\n")
	if err != nil {
		t.Fatalf("ReadINI failed: %v", err)
	}
	if v != New(1, 0, 0, 7) {
		t.Errorf("Expected 1.0.0.7, got %s", v)
	}
}

func TestSetINIValueKeepsCRLF(t *testing.T) {
	got := setINIValue("; client\r\n[Client]\r\nver=1.0.0.1\r\nlang=jp\r\n", Section, Key, "1.0.0.2")
	want := "; client\r\n[Client]\r\nver=1.0.0.2\r\nlang=jp\r\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got = setINIValue("[Other]\r\nx=1", Section, Key, "1.0.0.2")
	want = "[Other]\r\nx=1\r\n[Client]\r\nver=1.0.0.2\r\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
