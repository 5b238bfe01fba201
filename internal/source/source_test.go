package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yanizio/confstack/internal/value"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestJSONSourceParsesMapping(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"db":{"host":"h1","port":1}}`)
	s := NewJSONSource(path)

	if !s.IsAvailable(context.Background()) {
		t.Fatal("expected available")
	}
	m := s.Load(context.Background())
	if got := value.Get(m, "db.host", value.Null()).Str; got != "h1" {
		t.Fatalf("db.host = %q, want h1", got)
	}
	if s.Metadata().Snapshot().Successes != 1 {
		t.Fatalf("expected one recorded success")
	}
}

func TestJSONSourceNonMappingRootYieldsEmpty(t *testing.T) {
	path := writeTemp(t, "cfg.json", `[1,2,3]`)
	s := NewJSONSource(path)
	m := s.Load(context.Background())
	if len(m) != 0 {
		t.Fatalf("expected empty mapping for array root, got %v", m)
	}
	if s.Metadata().Snapshot().Failures != 1 {
		t.Fatal("expected one recorded failure")
	}
}

func TestJSONSourceEmptyFileYieldsEmptyNoError(t *testing.T) {
	path := writeTemp(t, "cfg.json", "")
	s := NewJSONSource(path)
	m := s.Load(context.Background())
	if len(m) != 0 {
		t.Fatalf("expected empty mapping, got %v", m)
	}
	if s.Metadata().Snapshot().Failures != 0 {
		t.Fatal("empty file must not count as a failure")
	}
}

func TestYAMLSourceSequenceValue(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", "features:\n  - a\n  - b\n")
	s := NewYAMLSource(path)
	m := s.Load(context.Background())
	got := value.GetList(m, "features", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("features = %v", got)
	}
}

func TestTOMLSourceArrayOfTables(t *testing.T) {
	path := writeTemp(t, "cfg.toml", "[[servers]]\nhost = \"a\"\n[[servers]]\nhost = \"b\"\n")
	s := NewTOMLSource(path)
	m := s.Load(context.Background())
	servers := value.Get(m, "servers", value.Null())
	if servers.Kind != value.KindSequence || len(servers.Seq) != 2 {
		t.Fatalf("servers = %+v, want 2-element sequence", servers)
	}
}

func TestINISourceSectionsAndDefaults(t *testing.T) {
	path := writeTemp(t, "cfg.ini", "[DEFAULT]\ntimeout = 30\n\n[web]\nlisten = 1\n\n[db]\nhost = localhost\n")
	s := NewINISource(path, "")
	m := s.Load(context.Background())
	if got := value.GetInt(m, "web.timeout", 0); got != 30 {
		t.Fatalf("web.timeout = %d, want inherited 30", got)
	}
	if got := value.GetBool(m, "web.listen", false); got != true {
		t.Fatalf("web.listen = %v, want true (1 coerces to bool)", got)
	}
}

func TestINISourceSectionFilter(t *testing.T) {
	path := writeTemp(t, "cfg.ini", "[DEFAULT]\ntimeout = 30\n\n[db]\nhost = localhost\n")
	s := NewINISource(path, "db")
	m := s.Load(context.Background())
	if got := value.Get(m, "host", value.Null()).Str; got != "localhost" {
		t.Fatalf("host = %q", got)
	}
	if got := value.GetInt(m, "timeout", 0); got != 30 {
		t.Fatalf("timeout = %d, want inherited default 30", got)
	}
}

func TestEnvironmentSourceNestedAndCoercion(t *testing.T) {
	t.Setenv("APP_DB_HOST", "h2")
	t.Setenv("APP_DEBUG", "true")
	s := NewEnvironmentSource(EnvironmentOptions{
		Prefixes:    []string{"APP_"},
		Separator:   "_",
		FoldCase:    true,
		ParseValues: true,
	})
	m := s.Load(context.Background())
	if got := value.Get(m, "db.host", value.Null()).Str; got != "h2" {
		t.Fatalf("db.host = %q, want h2", got)
	}
	if got := value.GetBool(m, "debug", false); !got {
		t.Fatalf("debug = %v, want true", got)
	}
}

func TestEnvironmentSourceEmptyPrefixMatchesAll(t *testing.T) {
	t.Setenv("SOME_RANDOM_VAR", "x")
	s := NewEnvironmentSource(EnvironmentOptions{FoldCase: true})
	m := s.Load(context.Background())
	if got := value.Get(m, "some.random.var", value.Null()).Str; got != "x" {
		t.Fatalf("expected empty prefix to match every variable, got %v", m)
	}
}
