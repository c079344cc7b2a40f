package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/formseal/formseal/internal/config"
	"github.com/formseal/formseal/internal/template"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	originalStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	oldVersion := version
	oldBuildTime := buildTime
	oldGitCommit := gitCommit

	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	defer func() {
		version = oldVersion
		buildTime = oldBuildTime
		gitCommit = oldGitCommit
		os.Stdout = originalStdout
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		printVersion()
		w.Close()
	}()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	<-done

	output := buf.String()

	expectedStrings := []string{
		"formseal",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing %q\nGot: %s", expected, output)
		}
	}
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name    string
		storage string
		wantErr bool
	}{
		{name: "memory backend", storage: "memory"},
		{name: "file backend", storage: "file"},
		{name: "sqlite backend", storage: "sqlite"},
		{name: "unknown backend", storage: "postgres", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Storage: tt.storage,
				DataDir: t.TempDir(),
			}

			store, err := openStore(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("openStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if store == nil {
				t.Fatal("openStore() returned nil store")
			}
			var _ template.Store = store
			if err := store.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func TestSetupLogging_StdioMode(t *testing.T) {
	originalOutput := log.Writer()
	originalFlags := log.Flags()
	defer func() {
		log.SetOutput(originalOutput)
		log.SetFlags(originalFlags)
	}()

	cfg := &config.Config{Mode: "stdio", LogLevel: "debug"}
	setupLogging(cfg)

	if log.Writer() != os.Stderr {
		t.Error("stdio mode with debug should log to stderr")
	}
}

func TestSetupLogging_ServerMode(t *testing.T) {
	originalOutput := log.Writer()
	originalFlags := log.Flags()
	defer func() {
		log.SetOutput(originalOutput)
		log.SetFlags(originalFlags)
	}()

	cfg := &config.Config{Mode: "server", LogLevel: "info"}
	setupLogging(cfg)

	if log.Flags() != log.LstdFlags|log.Lshortfile {
		t.Error("server mode should use detailed log flags")
	}
}

func TestVersionFlagDetection(t *testing.T) {
	versionFlags := []string{"-version", "--version", "-v"}
	otherFlags := []string{"--mode=server", "--port=8080", "-x", "version"}

	for _, flag := range versionFlags {
		matched := flag == "-version" || flag == "--version" || flag == "-v"
		if !matched {
			t.Errorf("flag %q should be detected as a version flag", flag)
		}
	}
	for _, flag := range otherFlags {
		matched := flag == "-version" || flag == "--version" || flag == "-v"
		if matched {
			t.Errorf("flag %q should not be detected as a version flag", flag)
		}
	}
}
