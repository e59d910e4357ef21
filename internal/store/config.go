package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Instrument is one tracked market index. Name is the official display
// name used verbatim in generated text.
type Instrument struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// Credentials are read from the environment, never from the yaml file.
type Credentials struct {
	OpenAIKey    string
	AnthropicKey string
	GoogleKey    string
	NewsAPIKey   string

	SlackBotToken string
	SlackAppToken string
	SlackChannel  string

	DriveCredentialsFile string
	DriveFolderID        string
}

type Config struct {
	OutputDir string `yaml:"output_dir"`
	// Schedule is an optional cron spec for unattended runs.
	Schedule string `yaml:"schedule"`

	Instruments []Instrument `yaml:"instruments"`

	News struct {
		AllowedSources []string `yaml:"allowed_sources"`
		PageSize       int      `yaml:"page_size"`
		MaxArticles    int      `yaml:"max_articles"`
		MaxAgeHours    int      `yaml:"max_age_hours"`
		// ExcludedKeywords drop lifestyle/irrelevant titles.
		ExcludedKeywords []string `yaml:"excluded_keywords"`
		// NonDomesticKeywords and DomesticSafeKeywords are consulted by
		// the geography filter. They are deliberately two separate,
		// independently editable lists; never merge them.
		NonDomesticKeywords  []string `yaml:"non_domestic_keywords"`
		DomesticSafeKeywords []string `yaml:"domestic_safe_keywords"`
	} `yaml:"news"`

	LLM struct {
		OpenAIModel    string  `yaml:"openai_model"`
		AnthropicModel string  `yaml:"anthropic_model"`
		GeminiModel    string  `yaml:"gemini_model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
	} `yaml:"llm"`

	Keys Credentials `yaml:"-"`
}

func defaultInstruments() []Instrument {
	return []Instrument{
		{Key: "DOW", Name: "ダウ平均株価", Symbol: "^DJI"},
		{Key: "NASDAQ", Name: "ナスダック総合指数", Symbol: "^IXIC"},
		{Key: "SP500", Name: "S&P 500", Symbol: "^GSPC"},
		{Key: "NIKKEI", Name: "日経平均株価", Symbol: "^N225"},
	}
}

func defaultAllowedSources() []string {
	return []string{"reuters", "bloomberg", "the-wall-street-journal"}
}

func defaultExcludedKeywords() []string {
	return []string{
		"gift", "travel", "cruise", "review", "best of", "lifestyle",
		"sport", "entertainment", "fashion", "movie", "music",
		"recipe", "food", "drink", "vacation", "holiday", "guide",
		"deal of the day", "shopping", "workout", "health",
	}
}

func defaultNonDomesticKeywords() []string {
	return []string{
		"uk", "britain", "london", "england", "europe", "eu", "german", "france",
		"ecb", "bank of england", "brexit",
	}
}

func defaultDomesticSafeKeywords() []string {
	return []string{
		"us ", "u.s.", "fed", "federal reserve", "wall street",
		"dow", "nasdaq", "s&p", "treasury", "dollar",
	}
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if len(c.Instruments) == 0 {
		c.Instruments = defaultInstruments()
	}
	if len(c.News.AllowedSources) == 0 {
		c.News.AllowedSources = defaultAllowedSources()
	}
	if c.News.PageSize == 0 {
		c.News.PageSize = 30
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 15
	}
	if c.News.MaxAgeHours == 0 {
		c.News.MaxAgeHours = 24
	}
	if len(c.News.ExcludedKeywords) == 0 {
		c.News.ExcludedKeywords = defaultExcludedKeywords()
	}
	if len(c.News.NonDomesticKeywords) == 0 {
		c.News.NonDomesticKeywords = defaultNonDomesticKeywords()
	}
	if len(c.News.DomesticSafeKeywords) == 0 {
		c.News.DomesticSafeKeywords = defaultDomesticSafeKeywords()
	}
	if c.LLM.OpenAIModel == "" {
		c.LLM.OpenAIModel = "gpt-4o"
	}
	if c.LLM.AnthropicModel == "" {
		c.LLM.AnthropicModel = "claude-3-5-sonnet-20241022"
	}
	if c.LLM.GeminiModel == "" {
		c.LLM.GeminiModel = "gemini-1.5-pro"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4000
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
}

func (c *Config) loadCredentials() {
	c.Keys = Credentials{
		OpenAIKey:            os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:         os.Getenv("ANTHROPIC_API_KEY"),
		GoogleKey:            os.Getenv("GOOGLE_API_KEY"),
		NewsAPIKey:           os.Getenv("NEWSAPI_KEY"),
		SlackBotToken:        os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken:        os.Getenv("SLACK_APP_TOKEN"),
		SlackChannel:         os.Getenv("SLACK_CHANNEL_ID"),
		DriveCredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		DriveFolderID:        os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
	}
}

// Validate checks the invariants the pipeline cannot run without.
// Slack tokens are validated by the slackbot constructor instead, so
// the one-shot CLI can run without them.
func (c *Config) Validate() error {
	if c.Keys.OpenAIKey == "" && c.Keys.AnthropicKey == "" && c.Keys.GoogleKey == "" {
		return errors.New("no LLM API key configured: set one of OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY")
	}
	if c.Keys.NewsAPIKey == "" {
		return errors.New("NEWSAPI_KEY is not set")
	}
	if len(c.News.AllowedSources) == 0 {
		return errors.New("news.allowed_sources cannot be empty")
	}
	if len(c.Instruments) == 0 {
		return errors.New("instruments cannot be empty")
	}
	for _, inst := range c.Instruments {
		if inst.Name == "" || inst.Symbol == "" {
			return fmt.Errorf("instrument %q must have name and symbol", inst.Key)
		}
	}
	return nil
}

// LoadConfig reads the yaml file if it exists, applies defaults, and
// pulls credentials from the environment. A missing file is fine; the
// built-in defaults match the reference deployment.
func LoadConfig(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, err
	}

	c.applyDefaults()
	c.loadCredentials()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
