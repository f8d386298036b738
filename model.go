package ragger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/ragger/vector"
)

var (
	ErrInvalidRecord   = errors.New("invalid record")
	ErrInvalidDocument = errors.New("invalid record document")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidResponse = errors.New("invalid response type")
	ErrMissingAPIKey   = errors.New("missing API key")
)

const (
	DefaultRecordsPath    = "employees.csv"
	DefaultCollection     = "employees"
	DefaultTopN           = 4
	DefaultEmbeddingModel = "text-embedding-ada-002"
	DefaultChatModel      = "gpt-4o"
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultAPIKeyEnv      = "OPENAI_API_KEY"
	DefaultPreamble       = "You are a helpful assistant. Your job is to answer a user's questions based on the context snippets given."
)

type Config struct {
	Records   string          `yaml:"records"`
	TopN      int             `yaml:"topN"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	History   HistoryConfig   `yaml:"history"`
	Vector    vector.Config   `yaml:"vector"`
}

type EmbeddingConfig struct {
	BaseURL     string `yaml:"baseURL"`
	APIKeyEnv   string `yaml:"apiKeyEnv"`
	Model       string `yaml:"model"`
	Concurrency int    `yaml:"concurrency"`
}

type ChatConfig struct {
	BaseURL   string   `yaml:"baseURL"`
	APIKeyEnv string   `yaml:"apiKeyEnv"`
	Model     string   `yaml:"model"`
	Preamble  string   `yaml:"preamble"`
	Timeout   Duration `yaml:"timeout"`
}

// HistoryConfig bounds the chat history. MaxTurns of zero keeps it unbounded.
type HistoryConfig struct {
	MaxTurns int `yaml:"maxTurns"`
}

func DefaultConfig() Config {
	return Config{
		Records: DefaultRecordsPath,
		TopN:    DefaultTopN,
		Embedding: EmbeddingConfig{
			BaseURL:   DefaultBaseURL,
			APIKeyEnv: DefaultAPIKeyEnv,
			Model:     DefaultEmbeddingModel,
		},
		Chat: ChatConfig{
			BaseURL:   DefaultBaseURL,
			APIKeyEnv: DefaultAPIKeyEnv,
			Model:     DefaultChatModel,
			Preamble:  DefaultPreamble,
		},
		Vector: vector.Config{
			Collection: DefaultCollection,
		},
	}
}

// ApplyDefaults fills every zero-valued field with its default.
func (cfg *Config) ApplyDefaults() {
	def := DefaultConfig()

	if cfg.Records == "" {
		cfg.Records = def.Records
	}

	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}

	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = def.Embedding.BaseURL
	}

	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = def.Embedding.APIKeyEnv
	}

	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}

	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = def.Chat.BaseURL
	}

	if cfg.Chat.APIKeyEnv == "" {
		cfg.Chat.APIKeyEnv = def.Chat.APIKeyEnv
	}

	if cfg.Chat.Model == "" {
		cfg.Chat.Model = def.Chat.Model
	}

	if cfg.Chat.Preamble == "" {
		cfg.Chat.Preamble = def.Chat.Preamble
	}

	if cfg.Vector.Collection == "" {
		cfg.Vector.Collection = def.Vector.Collection
	}

	if cfg.Vector.Concurrency <= 0 {
		cfg.Vector.Concurrency = cfg.Embedding.Concurrency
	}
}

type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	str := d.Duration().String()
	return json.Marshal(str)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration().String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

// Record is one employee row.
type Record struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Salary    uint32 `json:"salary"`
}

// ParseRecord converts the five raw fields of a row into a Record.
// The salary must be a non-negative integer.
func ParseRecord(fields []string) (Record, error) {
	if len(fields) != 5 {
		return Record{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidRecord, len(fields))
	}

	salary, err := strconv.ParseUint(strings.TrimSpace(fields[4]), 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("%w: salary: %w", ErrInvalidRecord, err)
	}

	return Record{
		FirstName: fields[0],
		LastName:  fields[1],
		Email:     fields[2],
		Role:      fields[3],
		Salary:    uint32(salary),
	}, nil
}

func (r Record) String() string {
	return fmt.Sprintf("First name: %s\nLast name: %s\nEmail: %s\nRole: %s\nSalary: %d",
		r.FirstName,
		r.LastName,
		r.Email,
		r.Role,
		r.Salary,
	)
}

var recordNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("ragger.employee"))

// ID is stable for the same record at the same position in the source file.
func (r Record) ID(position int) string {
	data := strconv.Itoa(position) + "|" + r.String()
	return "employee_" + uuid.NewSHA1(recordNamespace, []byte(data)).String()
}

func RecordToDocument(r Record, position int, embedding []float32) vector.Document {
	return vector.Document{
		ID:        r.ID(position),
		Content:   r.String(),
		Embedding: embedding,
		Metadata: map[string]string{
			"first_name": r.FirstName,
			"last_name":  r.LastName,
			"email":      r.Email,
			"role":       r.Role,
			"salary":     strconv.FormatUint(uint64(r.Salary), 10),
		},
	}
}

func DocumentToRecord(doc vector.Document) (Record, error) {
	fields := make([]string, 0, 5)
	for _, key := range []string{"first_name", "last_name", "email", "role", "salary"} {
		value, ok := doc.Metadata[key]
		if !ok {
			return Record{}, fmt.Errorf("%w: missing %s", ErrInvalidDocument, key)
		}

		fields = append(fields, value)
	}

	return ParseRecord(fields)
}

// Match is a record retrieved from the index together with its similarity.
type Match struct {
	Record     Record  `json:"record"`
	Similarity float32 `json:"similarity"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// AugmentPrompt prefixes the prompt with the rendered records.
func AugmentPrompt(prompt string, records []Record) string {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.String()
	}

	return "Relevant employees:\n" + strings.Join(texts, "\n") + "\n\n" + prompt
}
