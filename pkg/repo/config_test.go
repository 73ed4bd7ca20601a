package repo

import (
	"bytes"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/odvcencio/tinygit/pkg/object"
)

func TestReadConfigMissingReturnsDefaults(t *testing.T) {
	r := newTestRepo(t)

	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
	if got := cfg.Identity(); got != "unknown <>" {
		t.Errorf("Identity() = %q", got)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	r := newTestRepo(t)

	want := DefaultConfig()
	want.User.Name = "Alice"
	want.User.Email = "alice@example.com"
	want.Core.Compression = 9
	want.Signing.Key = "~/.ssh/id_ed25519"
	if err := r.WriteConfig(want); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
	if r.Config.Identity() != "Alice <alice@example.com>" {
		t.Errorf("Identity() = %q", r.Config.Identity())
	}
}

func TestReadConfigPartialKeepsDefaults(t *testing.T) {
	r := newTestRepo(t)
	if err := os.WriteFile(r.configPath(), []byte("[user]\nname = \"Bob\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.User.Name != "Bob" {
		t.Errorf("User.Name = %q", cfg.User.Name)
	}
	if cfg.Core.Compression != -1 || cfg.Core.IgnoreFile != ".gitignore" {
		t.Errorf("core defaults lost: %+v", cfg.Core)
	}
}

func TestReadConfigRejectsBadCompression(t *testing.T) {
	r := newTestRepo(t)
	if err := os.WriteFile(r.configPath(), []byte("[core]\ncompression = 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadConfig(); err == nil {
		t.Fatal("expected error for out-of-range compression")
	}
	if _, err := Open(r.RootDir); err == nil {
		t.Fatal("Open should surface config errors")
	}
}

func TestReadConfigMalformed(t *testing.T) {
	r := newTestRepo(t)
	if err := os.WriteFile(r.configPath(), []byte("[user\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadConfig(); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}

func TestReadConfigWarnsOnUnknownKeys(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := newTestRepo(t, WithLogger(zap.New(core)))
	if err := os.WriteFile(r.configPath(), []byte("[core]\nfrobnicate = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := r.ReadConfig(); err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if n := logs.FilterMessage("ignoring unknown config keys").Len(); n != 1 {
		t.Errorf("unknown-key warnings = %d, want 1", n)
	}
}

func TestConfigCompressionAppliesOnOpen(t *testing.T) {
	r := newTestRepo(t)
	cfg := DefaultConfig()
	cfg.Core.Compression = 0
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	reopened, err := Open(r.RootDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	h, err := reopened.HashObjectBytes([]byte("hi\n"), true)
	if err != nil {
		t.Fatalf("HashObjectBytes: %v", err)
	}
	want, _ := object.ParseHash("45b983be36b73c0788dc9cbcb76cbb80fc7bb057")
	if h != want {
		t.Errorf("hash = %s, want %s", h, want)
	}

	// Level 0 stores deflate blocks uncompressed, so the file cannot shrink.
	data := bytes.Repeat([]byte("compressible "), 2000)
	big, err := reopened.HashObjectBytes(data, true)
	if err != nil {
		t.Fatalf("HashObjectBytes: %v", err)
	}
	info, err := os.Stat(objectFile(reopened, big))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if framed := int64(len(object.Frame(object.TypeBlob, data))); info.Size() < framed {
		t.Errorf("object file is %d bytes, smaller than framed %d: core.compression = 0 was not honored", info.Size(), framed)
	}
}
