package identity

import (
	"errors"
	"testing"
)

func TestResolveAliases(t *testing.T) {
	tests := []struct {
		argv0 string
		want  Identity
	}{
		{"mvn", Maven},
		{"/usr/local/bin/mvnw", Maven},
		{"gradle", Gradle},
		{"./gradlew", Gradle},
		{"/home/u/bin/javabox", Admin},
	}
	for _, tt := range tests {
		got, err := resolve(tt.argv0, false)
		if err != nil {
			t.Fatalf("resolve(%q): %v", tt.argv0, err)
		}
		if got != tt.want {
			t.Errorf("resolve(%q) = %v, want %v", tt.argv0, got, tt.want)
		}
	}
}

func TestResolveWindowsSuffix(t *testing.T) {
	got, err := resolve(`C:\tools\bin\MVN.EXE`, true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != Maven {
		t.Fatalf("got %v, want maven", got)
	}

	if _, err := resolve("mvn.exe", false); err == nil {
		t.Fatal("expected .exe suffix to be rejected outside windows")
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := resolve("/usr/bin/ant", false)
	if !errors.Is(err, ErrUnknownAlias) {
		t.Fatalf("expected ErrUnknownAlias, got %v", err)
	}
}

func TestLauncherAliasesExcludeAdmin(t *testing.T) {
	for _, name := range LauncherAliases() {
		if name == "javabox" {
			t.Fatal("javabox must not be a launcher alias")
		}
	}
	if len(LauncherAliases()) != len(Aliases())-1 {
		t.Fatalf("unexpected launcher aliases: %v", LauncherAliases())
	}
}
