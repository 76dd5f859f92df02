package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func buildZip(t *testing.T, files map[string]string, password string) []byte {
	t.Helper()
	z := NewZip()
	for _, name := range []string{"data/a.res", "data/b.res", "readme.txt"} {
		if content, ok := files[name]; ok {
			if err := z.Replace(name, []byte(content), password); err != nil {
				t.Fatal(err)
			}
		}
	}
	var buf bytes.Buffer
	if err := z.Save(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestZipReplaceAndSave(t *testing.T) {
	data := buildZip(t, map[string]string{"data/a.res": "alpha", "data/b.res": "beta"}, "")

	z, err := OpenZip(data, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(z.Names(), []string{"data/a.res", "data/b.res"}) {
		t.Errorf("Unexpected names %v", z.Names())
	}

	// backslash names address the same entry
	if err := z.Replace(`data\a.res`, []byte("ALPHA"), ""); err != nil {
		t.Fatal(err)
	}
	if err := z.Replace("data/c.res", []byte("gamma"), ""); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := z.Save(&buf); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenZip(buf.Bytes(), "")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"data/a.res": "ALPHA", "data/b.res": "beta", "data/c.res": "gamma"}
	for name, content := range want {
		got, err := reopened.Extract(name, "")
		if err != nil {
			t.Fatalf("Extract %s: %v", name, err)
		}
		if string(got) != content {
			t.Errorf("%s: expected %q, got %q", name, content, got)
		}
	}
}

func TestZipExtractMissing(t *testing.T) {
	z := NewZip()
	if _, err := z.Extract("nope", ""); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}
}

func TestZipEncrypted(t *testing.T) {
	data := buildZip(t, map[string]string{"data/a.res": "secret", "data/b.res": "hidden"}, "pw")

	z, err := OpenZip(data, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := z.Extract("data/a.res", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("Expected ErrPasswordRequired, got %v", err)
	}

	got, err := z.Extract("data/a.res", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "secret" {
		t.Errorf("Expected secret, got %q", got)
	}

	// untouched encrypted entry is copied with the archive password
	z, _ = OpenZip(data, "pw")
	if err := z.Replace("data/a.res", []byte("changed"), "pw"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := z.Save(&buf); err != nil {
		t.Fatal(err)
	}
	reopened, err := OpenZip(buf.Bytes(), "pw")
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{"data/a.res": "changed", "data/b.res": "hidden"} {
		got, err := reopened.Extract(name, "")
		if err != nil {
			t.Fatalf("Extract %s: %v", name, err)
		}
		if string(got) != content {
			t.Errorf("%s: expected %q, got %q", name, content, got)
		}
	}
}

func TestStoreLoadObfuscated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datas", "data12.v")

	z := NewZip()
	z.Replace("readme.txt", []byte("hello"), "")
	if err := Store(path, z); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// a plain zip starts with "PK"; the obfuscated one must not
	if raw[0] != 'P'^SecretByte || raw[1] != 'K'^SecretByte {
		t.Errorf("Archive not obfuscated: % x", raw[:2])
	}

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := loaded.Extract("readme.txt", "")
	if err != nil || string(got) != "hello" {
		t.Errorf("Expected hello, got %q (%v)", got, err)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("Temp files left behind: %v", matches)
	}
}

func TestXOR(t *testing.T) {
	buf := []byte{0x00, 0x55, 0xFF}
	XOR(buf, SecretByte)
	if !bytes.Equal(buf, []byte{0x55, 0x00, 0xAA}) {
		t.Errorf("Unexpected XOR result % x", buf)
	}
}

func TestEmbed(t *testing.T) {
	inner := buildZip(t, map[string]string{"data/a.res": "one", "readme.txt": "two"}, "")

	outer := NewZip()
	if err := Embed(outer, `ui\fonts`, inner, ""); err != nil {
		t.Fatal(err)
	}

	got, err := outer.Extract("ui/fonts/data/a.res", "")
	if err != nil || string(got) != "one" {
		t.Errorf("Expected one, got %q (%v)", got, err)
	}
	got, err = outer.Extract("ui/fonts/readme.txt", "")
	if err != nil || string(got) != "two" {
		t.Errorf("Expected two, got %q (%v)", got, err)
	}
}

func TestPasswords(t *testing.T) {
	p, err := ParsePasswords("[ZipPassword]\ndata12=abc\ndata14=xyz\n")
	if err != nil {
		t.Fatal(err)
	}

	pw, err := p.For("datas/data12.v")
	if err != nil || pw != "abc" {
		t.Errorf("Expected abc, got %q (%v)", pw, err)
	}
	pw, err = p.For(`datas\DATA14.v`)
	if err != nil || pw != "xyz" {
		t.Errorf("Expected xyz, got %q (%v)", pw, err)
	}

	if _, err := p.For("datas/data99.v"); !errors.Is(err, ErrPasswordMissing) {
		t.Errorf("Expected ErrPasswordMissing, got %v", err)
	}
}

func TestPasswordsByteOrderMark(t *testing.T) {
	p, err := ParsePasswords("\ufeff[ZipPassword]\r\ndata12 = xyz \r\n")
	if err != nil {
		t.Fatalf("ParsePasswords failed: %v", err)
	}

	pw, err := p.For("data12.v")
	if err != nil || pw != "xyz" {
		t.Errorf("Expected xyz, got %q (%v)", pw, err)
	}
}
