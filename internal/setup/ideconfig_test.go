package setup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func testEntry(t *testing.T) Entry {
	t.Helper()
	entry, err := NewEntry(ServerOptions{ProjectID: "proj", PrivateKey: "priv", BaseURL: "https://dashboard.feedbucket.app/api/v1/"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	return entry
}

func TestNewEntry(t *testing.T) {
	entry := testEntry(t)
	if entry.Command != DefaultCommand {
		t.Fatalf("unexpected command %q", entry.Command)
	}
	if _, ok := entry.Env["FEEDBUCKET_API_BASE_URL"]; ok {
		t.Fatal("default base url must not be written")
	}
	if _, ok := entry.Env["FEEDBUCKET_API_KEY"]; ok {
		t.Fatal("empty api key must not be written")
	}

	custom, err := NewEntry(ServerOptions{ProjectID: "p", PrivateKey: "k", APIKey: "pub", BaseURL: "http://localhost:8000/api/v1", Command: "/usr/local/bin/fb"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if custom.Env["FEEDBUCKET_API_BASE_URL"] != "http://localhost:8000/api/v1" || custom.Env["FEEDBUCKET_API_KEY"] != "pub" || custom.Command != "/usr/local/bin/fb" {
		t.Fatalf("unexpected entry: %+v", custom)
	}

	if _, err := NewEntry(ServerOptions{PrivateKey: "k"}); err == nil {
		t.Fatal("ожидали ошибку без project id")
	}
	if _, err := NewEntry(ServerOptions{ProjectID: "p"}); err == nil {
		t.Fatal("ожидали ошибку без private key")
	}
}

func TestDefaultCommandMatchesServerBinary(t *testing.T) {
	// go install называет бинарник по каталогу main-пакета.
	info, err := os.Stat(filepath.Join("..", "..", "cmd", DefaultCommand, "main.go"))
	if err != nil || info.IsDir() {
		t.Fatalf("ожидали cmd/%s/main.go: %v", DefaultCommand, err)
	}
}

func TestConfigPath(t *testing.T) {
	paths := Paths{ProjectDir: "/work", Home: "/home/u", AppData: `C:\AppData`, GOOS: "linux"}
	cases := []struct {
		client Client
		goos   string
		want   string
	}{
		{client: ClientClaude, goos: "linux", want: filepath.Join("/home/u", ".config", "Claude", "claude_desktop_config.json")},
		{client: ClientClaude, goos: "darwin", want: filepath.Join("/home/u", "Library", "Application Support", "Claude", "claude_desktop_config.json")},
		{client: ClientCursor, goos: "linux", want: filepath.Join("/work", ".cursor", "mcp.json")},
		{client: ClientVSCode, goos: "linux", want: filepath.Join("/work", ".vscode", "mcp.json")},
		{client: ClientContinue, goos: "linux", want: filepath.Join("/work", ".continue", "mcpServers", "feedbucket.yaml")},
	}
	for _, tc := range cases {
		t.Run(string(tc.client)+"/"+tc.goos, func(t *testing.T) {
			p := paths
			p.GOOS = tc.goos
			got, err := ConfigPath(tc.client, p)
			if err != nil || got != tc.want {
				t.Fatalf("ConfigPath() = %q, %v; want %q", got, err, tc.want)
			}
		})
	}
	if _, err := ConfigPath(ClientClaude, Paths{GOOS: "windows"}); err == nil {
		t.Fatal("ожидали ошибку без APPDATA")
	}
}

func TestParseClient(t *testing.T) {
	if c, err := ParseClient(" VSCode "); err != nil || c != ClientVSCode {
		t.Fatalf("unexpected %q, %v", c, err)
	}
	if _, err := ParseClient("emacs"); err == nil {
		t.Fatal("ожидали ошибку для неизвестного клиента")
	}
}

func TestInstallMergesJSON(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{ProjectDir: dir, Home: dir, GOOS: "linux"}
	path := filepath.Join(dir, ".cursor", "mcp.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	existing := `{"theme":"dark","mcpServers":{"other":{"command":"other-server"}}}`
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := Install(ClientCursor, testEntry(t), paths)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if written != path {
		t.Fatalf("unexpected path %q", written)
	}

	var doc map[string]any
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if doc["theme"] != "dark" {
		t.Fatal("unrelated keys must be preserved")
	}
	servers := doc["mcpServers"].(map[string]any)
	if _, ok := servers["other"]; !ok {
		t.Fatal("other servers must be preserved")
	}
	fb := servers[ServerName].(map[string]any)
	if fb["command"] != DefaultCommand || fb["env"].(map[string]any)["FEEDBUCKET_PROJECT_ID"] != "proj" {
		t.Fatalf("unexpected entry: %v", fb)
	}

	// Повторная установка перезаписывает только свою запись.
	if _, err := Install(ClientCursor, testEntry(t), paths); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
}

func TestInstallVSCodeUsesServersKey(t *testing.T) {
	dir := t.TempDir()
	path, err := Install(ClientVSCode, testEntry(t), Paths{ProjectDir: dir, Home: dir, GOOS: "linux"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	data, _ := os.ReadFile(path)
	var doc map[string]map[string]map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if doc["servers"][ServerName]["type"] != "stdio" {
		t.Fatalf("unexpected vscode config: %s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("ожидали права 0600, получили %v", info.Mode().Perm())
	}
}

func TestInstallRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".cursor", "mcp.json")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte(`{"mcpServers": [`), 0o644)
	if _, err := Install(ClientCursor, testEntry(t), Paths{ProjectDir: dir}); err == nil {
		t.Fatal("ожидали ошибку разбора")
	}
}

func TestInstallOverNullDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".cursor", "mcp.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("null\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Install(ClientCursor, testEntry(t), Paths{ProjectDir: dir}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	var doc map[string]map[string]any
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := doc["mcpServers"][ServerName]; !ok {
		t.Fatalf("ожидали запись feedbucket, получили %s", data)
	}
}

func TestInstallContinueYAML(t *testing.T) {
	dir := t.TempDir()
	path, err := Install(ClientContinue, testEntry(t), Paths{ProjectDir: dir})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	data, _ := os.ReadFile(path)
	var block struct {
		Name       string `yaml:"name"`
		MCPServers []struct {
			Name    string            `yaml:"name"`
			Command string            `yaml:"command"`
			Env     map[string]string `yaml:"env"`
		} `yaml:"mcpServers"`
	}
	if err := yaml.Unmarshal(data, &block); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if len(block.MCPServers) != 1 || block.MCPServers[0].Name != ServerName || block.MCPServers[0].Env["FEEDBUCKET_PRIVATE_KEY"] != "priv" {
		t.Fatalf("unexpected yaml: %s", data)
	}
}

func TestRender(t *testing.T) {
	data, err := Render(ClientClaude, testEntry(t))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !strings.Contains(string(data), `"mcpServers"`) || !strings.Contains(string(data), `"feedbucket"`) {
		t.Fatalf("unexpected snippet: %s", data)
	}
	if _, err := Render(Client("emacs"), testEntry(t)); err == nil {
		t.Fatal("ожидали ошибку для неизвестного клиента")
	}
}
