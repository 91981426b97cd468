package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

var (
	settingsProvider   string
	settingsModel      string
	settingsAPIKey     string
	settingsNoValidate bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, image generation and paths.

Settings are stored in ~/.tutorforge/config.toml. Environment variables
such as OPENAI_API_KEY override the file. Each subcommand asks for its
values interactively unless --provider is given.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the primary LLM",
	Long: `Configure the LLM used for rewriting and reviewing.

Pass --api-key - to type the key without echo.`,
	RunE: runSettingsLLM,
}

var settingsLocalLLMCmd = &cobra.Command{
	Use:   "local-llm",
	Short: "Configure the local LLM for simple tasks",
	Long:  `Configure a local model for cleaning and glossary extraction. Only Ollama is supported.`,
	RunE:  runSettingsLocalLLM,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Configure the embedding provider used by the knowledge base for semantic retrieval.`,
	RunE:  runSettingsEmbedding,
}

var settingsImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Configure image generation",
	Long: `Configure how image placeholders are resolved.

Providers:
  local   ComfyUI, falling back to the remote images API
  remote  remote images API only
  none    leave placeholders in place`,
	RunE: runSettingsImage,
}

func init() {
	for _, c := range []*cobra.Command{settingsLLMCmd, settingsLocalLLMCmd, settingsEmbeddingCmd, settingsImageCmd} {
		c.Flags().StringVar(&settingsProvider, "provider", "", "provider name")
	}
	for _, c := range []*cobra.Command{settingsLLMCmd, settingsLocalLLMCmd, settingsEmbeddingCmd} {
		c.Flags().StringVar(&settingsModel, "model", "", "model name (default depends on provider)")
		c.Flags().BoolVar(&settingsNoValidate, "no-validate", false, "skip contacting the provider")
	}
	for _, c := range []*cobra.Command{settingsLLMCmd, settingsEmbeddingCmd, settingsImageCmd} {
		c.Flags().StringVar(&settingsAPIKey, "api-key", "", `API key ("-" to prompt)`)
	}

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsLocalLLMCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsImageCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	printLLMSettings(cmd, "LLM", settings.LLM)
	if settings.LocalLLM.Provider != "" {
		printLLMSettings(cmd, "Local LLM", settings.LocalLLM)
	}

	cmd.Println("[Embedding]")
	if settings.Embedding.Provider == "" {
		cmd.Println("  Provider: (none, lexical retrieval only)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
		if settings.Embedding.Provider.IsLocal() {
			cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
		}
		if settings.Embedding.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key: %s\n", displayKey(settings.Embedding.APIKey))
		}
		cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	}
	cmd.Println()

	cmd.Println("[Image]")
	cmd.Printf("  Provider: %s\n", settings.Image.Provider)
	if settings.Image.Provider == domain.ImageProviderLocal {
		cmd.Printf("  ComfyUI: %s (%s)\n", settings.Image.ComfyUIURL, settings.Image.Checkpoint)
	}
	if settings.Image.Provider != domain.ImageProviderNone {
		cmd.Printf("  API Key: %s\n", displayKey(settings.Image.APIKey))
	}
	cmd.Println()

	cmd.Println("[Routing]")
	for _, category := range domain.AllTaskCategories() {
		cmd.Printf("  %s: %s\n", category, routeLabel(category, settings))
	}
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Data: %s\n", settings.Paths.DataDir)
	cmd.Printf("  Knowledge folder: %s\n", settings.Paths.RAGFolder)
	cmd.Printf("  Output: %s\n", settings.Paths.OutputDir)
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Max iterations: %d\n", settings.Pipeline.MaxIterations)
	cmd.Printf("  Chunk threshold: %d chars (chunks of %d)\n", settings.Pipeline.ChunkThreshold, settings.Pipeline.ChunkSize)
	cmd.Printf("  Call timeout: %s\n", settings.Pipeline.CallTimeout)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'tutorforge settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printLLMSettings(cmd *cobra.Command, title string, s domain.LLMSettings) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", s.Provider.Description())
	cmd.Printf("  Model: %s\n", s.Model)
	if s.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", s.BaseURL)
	}
	if s.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(s.APIKey))
	}
	if s.RequestsPerMinute > 0 {
		cmd.Printf("  Rate limit: %d/min\n", s.RequestsPerMinute)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(s.IsConfigured()))
	cmd.Println()
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	provider, model, err := chooseAIProvider(cmd, reader, "LLM", domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	apiKey, err := resolveAPIKey(cmd, reader, provider.RequiresAPIKey())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if err := validateProvider(cmd, func(s *domain.AppSettings) error {
		return configValidator.ValidateLLM(&s.LLM)
	}); err != nil {
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), modelOrDefault(model, provider, domain.DefaultLLMModels()))
	return nil
}

func runSettingsLocalLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	provider, model, err := chooseAIProvider(cmd, reader, "local LLM",
		[]domain.AIProvider{domain.AIProviderOllama}, domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLocalLLMProvider(provider, model); err != nil {
		return fmt.Errorf("failed to configure local LLM: %w", err)
	}

	if err := validateProvider(cmd, func(s *domain.AppSettings) error {
		return configValidator.ValidateLLM(&s.LocalLLM)
	}); err != nil {
		return fmt.Errorf("local LLM configuration validation failed: %w", err)
	}

	cmd.Printf("Local LLM configured: %s (%s)\n", provider.Description(), modelOrDefault(model, provider, domain.DefaultLLMModels()))
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	provider, model, err := chooseAIProvider(cmd, reader, "embedding",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	apiKey, err := resolveAPIKey(cmd, reader, provider.RequiresAPIKey())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if err := validateProvider(cmd, func(s *domain.AppSettings) error {
		return configValidator.ValidateEmbedding(&s.Embedding)
	}); err != nil {
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(),
		modelOrDefault(model, provider, domain.DefaultEmbeddingModels()))
	return nil
}

func runSettingsImage(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	provider := domain.ImageProvider(strings.ToLower(settingsProvider))
	if settingsProvider == "" {
		providers := []domain.ImageProvider{domain.ImageProviderLocal, domain.ImageProviderRemote, domain.ImageProviderNone}
		cmd.Println("Select Image Provider")
		for i, p := range providers {
			cmd.Printf("  %d. %s\n", i+1, p)
		}
		cmd.Print("\nEnter choice [1]: ")
		provider = providers[parseChoice(readLine(reader), len(providers), 1)-1]
	}

	apiKey, err := resolveAPIKey(cmd, reader, provider != domain.ImageProviderNone)
	if err != nil {
		return err
	}

	if err := settingsService.SetImageProvider(provider, apiKey); err != nil {
		return fmt.Errorf("failed to configure image provider: %w", err)
	}

	cmd.Printf("Image provider configured: %s\n", provider)
	return nil
}

// chooseAIProvider takes the provider and model from flags, or asks for
// them when --provider is not set.
func chooseAIProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	kind string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (domain.AIProvider, string, error) {
	if settingsProvider != "" {
		provider := domain.AIProvider(strings.ToLower(settingsProvider))
		for _, p := range providers {
			if p == provider {
				return provider, settingsModel, nil
			}
		}
		return "", "", fmt.Errorf("%w: %s is not a supported %s provider", domain.ErrInvalidArgument, settingsProvider, kind)
	}

	cmd.Printf("Select %s Provider\n", kind)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	model := settingsModel
	if model == "" {
		cmd.Printf("Enter model name [%s]: ", defaults[provider])
		model = readLine(reader)
	}
	return provider, model, nil
}

// resolveAPIKey returns the --api-key value, prompting when it is "-" or
// when the provider needs a key and the values come interactively.
func resolveAPIKey(cmd *cobra.Command, reader *bufio.Reader, needsKey bool) (string, error) {
	switch {
	case settingsAPIKey == "-":
		cmd.Print("Enter API key: ")
		key := readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if key == "" {
			return "", errors.New("API key is required")
		}
		return key, nil
	case settingsAPIKey != "":
		return settingsAPIKey, nil
	case needsKey && settingsProvider == "":
		cmd.Print("Enter API key (leave empty to use the environment): ")
		key := readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		return key, nil
	}
	return "", nil
}

// routeLabel names the backend a task category is sent to. Quality-critical
// tasks prefer the primary LLM; the rest prefer the local one.
func routeLabel(category domain.TaskCategory, settings *domain.AppSettings) string {
	primary, local := "", ""
	if settings.LLM.Provider != "" {
		primary = fmt.Sprintf("LLM (%s)", settings.LLM.Provider)
	}
	if settings.LocalLLM.Provider != "" {
		local = fmt.Sprintf("Local LLM (%s)", settings.LocalLLM.Provider)
	}

	first, second := primary, local
	if !category.QualityCritical() {
		first, second = local, primary
	}
	switch {
	case first != "":
		return first
	case second != "":
		return second
	default:
		return "(unavailable)"
	}
}

// validateProvider pings the configured provider unless --no-validate is set.
func validateProvider(cmd *cobra.Command, check func(*domain.AppSettings) error) error {
	if settingsNoValidate || configValidator == nil {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	cmd.Print("Validating configuration... ")
	if err := check(settings); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return err
	}
	cmd.Println("OK")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is the terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func modelOrDefault(model string, provider domain.AIProvider, defaults map[domain.AIProvider]string) string {
	if model != "" {
		return model
	}
	return defaults[provider]
}
