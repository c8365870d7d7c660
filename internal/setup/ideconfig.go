package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"feedbucket-mcp/internal/infra/config"
)

// ServerName - ключ записи сервера в конфигурации клиента.
const ServerName = "feedbucket"

// DefaultCommand - имя бинарника MCP сервера, если путь не указан явно.
const DefaultCommand = "feedbucket-mcp"

// Client - поддерживаемый MCP клиент (IDE или десктопное приложение).
type Client string

const (
	ClientClaude   Client = "claude"
	ClientCursor   Client = "cursor"
	ClientVSCode   Client = "vscode"
	ClientContinue Client = "continue"
)

// Clients перечисляет поддерживаемых клиентов.
var Clients = []Client{ClientClaude, ClientCursor, ClientVSCode, ClientContinue}

// ParseClient проверяет имя клиента.
func ParseClient(name string) (Client, error) {
	c := Client(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Clients {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown client %q: expected one of claude, cursor, vscode, continue", name)
}

// ServerOptions - параметры запуска сервера, которые попадают в конфигурацию клиента.
type ServerOptions struct {
	ProjectID  string
	PrivateKey string
	APIKey     string
	BaseURL    string
	Command    string
}

// Entry - запись stdio сервера в конфигурации клиента.
type Entry struct {
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args" yaml:"args"`
	Env     map[string]string `json:"env" yaml:"env"`
}

// NewEntry собирает запись сервера. Базовый адрес пишется, только если отличается от стандартного.
func NewEntry(opts ServerOptions) (Entry, error) {
	if strings.TrimSpace(opts.ProjectID) == "" {
		return Entry{}, fmt.Errorf("project id is required")
	}
	if strings.TrimSpace(opts.PrivateKey) == "" {
		return Entry{}, fmt.Errorf("private key is required")
	}
	command := strings.TrimSpace(opts.Command)
	if command == "" {
		command = DefaultCommand
	}
	env := map[string]string{
		"FEEDBUCKET_PROJECT_ID":  opts.ProjectID,
		"FEEDBUCKET_PRIVATE_KEY": opts.PrivateKey,
	}
	if opts.APIKey != "" {
		env["FEEDBUCKET_API_KEY"] = opts.APIKey
	}
	if opts.BaseURL != "" && strings.TrimRight(opts.BaseURL, "/") != config.DefaultBaseURL {
		env["FEEDBUCKET_API_BASE_URL"] = opts.BaseURL
	}
	return Entry{Command: command, Args: []string{}, Env: env}, nil
}

// Paths - корни, от которых строятся пути конфигураций.
type Paths struct {
	ProjectDir string
	Home       string
	AppData    string
	GOOS       string
}

// DefaultPaths берёт текущий каталог, домашний каталог и ОС процесса.
func DefaultPaths() (Paths, error) {
	dir, err := os.Getwd()
	if err != nil {
		return Paths{}, fmt.Errorf("working directory: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("home directory: %w", err)
	}
	return Paths{ProjectDir: dir, Home: home, AppData: os.Getenv("APPDATA"), GOOS: runtime.GOOS}, nil
}

// ConfigPath возвращает файл конфигурации клиента.
func ConfigPath(client Client, paths Paths) (string, error) {
	switch client {
	case ClientClaude:
		switch paths.GOOS {
		case "darwin":
			return filepath.Join(paths.Home, "Library", "Application Support", "Claude", "claude_desktop_config.json"), nil
		case "windows":
			if paths.AppData == "" {
				return "", fmt.Errorf("APPDATA is not set")
			}
			return filepath.Join(paths.AppData, "Claude", "claude_desktop_config.json"), nil
		default:
			return filepath.Join(paths.Home, ".config", "Claude", "claude_desktop_config.json"), nil
		}
	case ClientCursor:
		return filepath.Join(paths.ProjectDir, ".cursor", "mcp.json"), nil
	case ClientVSCode:
		return filepath.Join(paths.ProjectDir, ".vscode", "mcp.json"), nil
	case ClientContinue:
		return filepath.Join(paths.ProjectDir, ".continue", "mcpServers", ServerName+".yaml"), nil
	default:
		return "", fmt.Errorf("unknown client %q", client)
	}
}

// serversKey - ключ словаря серверов в JSON конфигурации клиента.
func serversKey(client Client) string {
	if client == ClientVSCode {
		return "servers"
	}
	return "mcpServers"
}

func jsonEntry(client Client, entry Entry) map[string]any {
	out := map[string]any{
		"command": entry.Command,
		"args":    entry.Args,
		"env":     entry.Env,
	}
	if client == ClientVSCode {
		out["type"] = "stdio"
	}
	return out
}

type continueBlock struct {
	Name       string          `yaml:"name"`
	Version    string          `yaml:"version"`
	Schema     string          `yaml:"schema"`
	MCPServers []continueEntry `yaml:"mcpServers"`
}

type continueEntry struct {
	Name  string `yaml:"name"`
	Entry `yaml:",inline"`
}

// Render возвращает фрагмент конфигурации клиента только с записью Feedbucket.
func Render(client Client, entry Entry) ([]byte, error) {
	if client == ClientContinue {
		return renderContinue(entry)
	}
	if _, err := ParseClient(string(client)); err != nil {
		return nil, err
	}
	doc := map[string]any{
		serversKey(client): map[string]any{ServerName: jsonEntry(client, entry)},
	}
	return marshalJSON(doc)
}

// Install добавляет запись сервера в файл конфигурации клиента и возвращает путь к файлу.
// Другие записи JSON конфигурации сохраняются.
func Install(client Client, entry Entry, paths Paths) (string, error) {
	path, err := ConfigPath(client, paths)
	if err != nil {
		return "", err
	}
	var data []byte
	if client == ClientContinue {
		data, err = renderContinue(entry)
	} else {
		data, err = mergeJSON(path, client, entry)
	}
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	// Файл содержит приватный ключ.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func mergeJSON(path string, client Client, entry Entry) ([]byte, error) {
	doc := map[string]any{}
	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	case len(strings.TrimSpace(string(existing))) > 0:
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	// Документ "null" разбирается в nil map.
	if doc == nil {
		doc = map[string]any{}
	}

	key := serversKey(client)
	servers, ok := doc[key].(map[string]any)
	if !ok {
		if _, present := doc[key]; present {
			return nil, fmt.Errorf("%s: %q is not an object", path, key)
		}
		servers = map[string]any{}
	}
	servers[ServerName] = jsonEntry(client, entry)
	doc[key] = servers
	return marshalJSON(doc)
}

func renderContinue(entry Entry) ([]byte, error) {
	block := continueBlock{
		Name:       "Feedbucket MCP",
		Version:    "0.0.1",
		Schema:     "v1",
		MCPServers: []continueEntry{{Name: ServerName, Entry: entry}},
	}
	data, err := yaml.Marshal(&block)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return data, nil
}

func marshalJSON(doc map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}
