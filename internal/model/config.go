package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the full runtime configuration, keyed by subsystem. Every field
// has a documented default applied whenever the key or the whole config file
// is absent.
type Config struct {
	PDFProcessing   PDFProcessingConfig   `mapstructure:"pdf_processing" json:"pdf_processing" yaml:"pdf_processing"`
	QuestionParsing QuestionParsingConfig `mapstructure:"question_parsing" json:"question_parsing" yaml:"question_parsing"`
	QualityControl  QualityControlConfig  `mapstructure:"quality_control" json:"quality_control" yaml:"quality_control"`
	OutputFormat    OutputFormatConfig    `mapstructure:"output_format" json:"output_format" yaml:"output_format"`
	RateLimiting    RateLimitingConfig    `mapstructure:"rate_limiting" json:"rate_limiting" yaml:"rate_limiting"`
	LLM             LLMConfig             `mapstructure:"llm" json:"llm" yaml:"llm"`
	Server          ServerConfig          `mapstructure:"server" json:"server" yaml:"server"`
}

// PDFProcessingConfig controls input discovery and boundary detection
type PDFProcessingConfig struct {
	InputGlob        string `mapstructure:"input_glob" json:"input_glob" yaml:"input_glob"`                         // Filename pattern under the input dir
	BackWindow       int    `mapstructure:"back_window" json:"back_window" yaml:"back_window"`                      // Lines of leading context per span
	ForwardWindow    int    `mapstructure:"forward_window" json:"forward_window" yaml:"forward_window"`             // Max lines collected after a marker
	MinContextLength int    `mapstructure:"min_context_length" json:"min_context_length" yaml:"min_context_length"` // Min chars for a context line to count
}

// QuestionParsingConfig controls segmentation and structural parsing
type QuestionParsingConfig struct {
	MinQuestionLength int      `mapstructure:"min_question_length" json:"min_question_length" yaml:"min_question_length"` // Description length for full score weight
	MinOptions        int      `mapstructure:"min_options" json:"min_options" yaml:"min_options"`                         // Validity gate on option count
	UsernameAllowlist []string `mapstructure:"username_allowlist" json:"username_allowlist" yaml:"username_allowlist"`    // Known commenter names, lowest-priority signal
	TopicKeywords     []string `mapstructure:"topic_keywords" json:"topic_keywords" yaml:"topic_keywords"`                // Service names tried when no "Topic N" is printed
}

// QualityControlConfig controls acceptance policy after scoring
type QualityControlConfig struct {
	MinConfidence          float64 `mapstructure:"min_confidence" json:"min_confidence" yaml:"min_confidence"`                                     // Questions below this are dropped
	DuplicateThreshold     float64 `mapstructure:"duplicate_threshold" json:"duplicate_threshold" yaml:"duplicate_threshold"`                      // Jaccard similarity above this flags a pair
	EnforceAnswerInOptions bool    `mapstructure:"enforce_answer_in_options" json:"enforce_answer_in_options" yaml:"enforce_answer_in_options"` // Clear community answers missing from options
}

// OutputFormatConfig controls the renderers
type OutputFormatConfig struct {
	Formats              []string `mapstructure:"formats" json:"formats" yaml:"formats"`                                                       // Renderers to run: csv, markdown, json, web
	OutputDir            string   `mapstructure:"output_dir" json:"output_dir" yaml:"output_dir"`                                              // Directory for rendered files
	IncludeFooter        bool     `mapstructure:"include_footer" json:"include_footer" yaml:"include_footer"`                                  // Footer on Markdown output
	MaxDescriptionLength int      `mapstructure:"max_description_length" json:"max_description_length" yaml:"max_description_length"`          // Truncation point in tabular outputs
	MaxOptionsLength     int      `mapstructure:"max_options_length" json:"max_options_length" yaml:"max_options_length"`                      // Truncation point for the joined options cell
}

// RateLimitingConfig controls the annotation stage's request budget
type RateLimitingConfig struct {
	RequestsPerMinute int     `mapstructure:"requests_per_minute" json:"requests_per_minute" yaml:"requests_per_minute"` // Shared budget across workers
	BurstSize         int     `mapstructure:"burst_size" json:"burst_size" yaml:"burst_size"`                            // Token-bucket burst
	Workers           int     `mapstructure:"workers" json:"workers" yaml:"workers"`                                     // Annotation worker count
	RetryAttempts     int     `mapstructure:"retry_attempts" json:"retry_attempts" yaml:"retry_attempts"`                // Attempts per question before giving up
	BackoffFactor     float64 `mapstructure:"backoff_factor" json:"backoff_factor" yaml:"backoff_factor"`                // Exponential backoff base
}

// LLMConfig selects and tunes the expert provider. Empty Provider disables
// annotation entirely.
type LLMConfig struct {
	Provider       string  `mapstructure:"provider" json:"provider" yaml:"provider"`                         // openai, anthropic, claude, ollama, or empty
	Model          string  `mapstructure:"model" json:"model" yaml:"model"`                                  // Provider model name, empty for provider default
	BaseURL        string  `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`                         // Override endpoint (Ollama, proxies)
	APIKey         string  `mapstructure:"api_key" json:"-" yaml:"-"`                                        // From env only, never written to disk
	MaxTokens      int     `mapstructure:"max_tokens" json:"max_tokens" yaml:"max_tokens"`                   // Response token cap
	Temperature    float64 `mapstructure:"temperature" json:"temperature" yaml:"temperature"`                // Sampling temperature
	TimeoutSeconds int     `mapstructure:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`    // Per-request timeout
	CacheEnabled   bool    `mapstructure:"cache_enabled" json:"cache_enabled" yaml:"cache_enabled"`          // Layered response cache
	CacheDir       string  `mapstructure:"cache_dir" json:"cache_dir" yaml:"cache_dir"`                      // Disk layer location
	CacheTTLHours  int     `mapstructure:"cache_ttl_hours" json:"cache_ttl_hours" yaml:"cache_ttl_hours"`    // Entry lifetime
}

// Timeout returns the per-request timeout as a duration
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the cache entry lifetime as a duration
func (c LLMConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// ServerConfig controls the review server
type ServerConfig struct {
	Addr     string `mapstructure:"addr" json:"addr" yaml:"addr"`             // Listen address
	DataFile string `mapstructure:"data_file" json:"data_file" yaml:"data_file"` // Web-export JSON backing the API
}

// DefaultConfig returns the documented defaults for every subsystem
func DefaultConfig() *Config {
	return &Config{
		PDFProcessing: PDFProcessingConfig{
			InputGlob:        "Questions_*.pdf",
			BackWindow:       20,
			ForwardWindow:    50,
			MinContextLength: 15,
		},
		QuestionParsing: QuestionParsingConfig{
			MinQuestionLength: 50,
			MinOptions:        2,
			UsernameAllowlist: DefaultUsernameAllowlist(),
			TopicKeywords:     DefaultTopicKeywords(),
		},
		QualityControl: QualityControlConfig{
			MinConfidence:          0.3,
			DuplicateThreshold:     0.8,
			EnforceAnswerInOptions: false,
		},
		OutputFormat: OutputFormatConfig{
			Formats:              []string{"csv", "markdown", "json", "web"},
			OutputDir:            "output",
			IncludeFooter:        true,
			MaxDescriptionLength: 200,
			MaxOptionsLength:     300,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerMinute: 50,
			BurstSize:         5,
			Workers:           4,
			RetryAttempts:     3,
			BackoffFactor:     2,
		},
		LLM: LLMConfig{
			Provider:       "",
			Model:          "",
			MaxTokens:      1024,
			Temperature:    0.3,
			TimeoutSeconds: 60,
			CacheEnabled:   true,
			CacheDir:       defaultCacheDir(),
			CacheTTLHours:  336,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			DataFile: "output/questions_web.json",
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".examsift-cache"
	}
	return filepath.Join(home, ".examsift", "cache")
}

// DefaultUsernameAllowlist is the closed set of recurring commenter names
// observed in the source dumps. A brittle heuristic by nature, so it is
// plain configuration data and the lowest-priority community signal.
func DefaultUsernameAllowlist() []string {
	return []string{
		"Ahmed_Safwat", "SAMBIT", "kopper2019", "ChinaSailor", "AzureDP900",
		"minmin2020", "megumin", "Mahmoud_E", "holerina", "BiddlyBdoyng",
		"nagibator163", "Ausias18", "lynx256", "practicioner", "gcparchitect007",
		"Kabiliravi", "ry9280087", "mlantonis", "roastc", "hems4all",
		"AdityaGupta", "zzaric", "Rightsaidfred", "bnlcnd", "joe2211",
		"PeppaPig", "sjmsummer", "vincy2202", "AniketD", "mifrah", "JC0926",
		"belly265",
	}
}

// DefaultTopicKeywords are the service names tried, in order, when a
// question prints no "Topic N" label.
func DefaultTopicKeywords() []string {
	return []string{
		"Compute Engine", "Cloud Storage", "BigQuery", "Cloud SQL",
		"Kubernetes", "GKE", "Cloud Functions", "App Engine", "Cloud Run",
		"Dataflow", "Pub/Sub", "Firestore",
	}
}
