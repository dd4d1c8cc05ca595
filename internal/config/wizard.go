package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/netviz/internal/category"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to netviz! Let's configure your project.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Training server.
	serverPrompt := promptui.Prompt{
		Label:    "Training server URL",
		Default:  cfg.ServerURL,
		Validate: validateURL,
	}
	serverURL, err := serverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	cfg.ServerURL = strings.TrimRight(serverURL, "/")

	// 2. Categories.
	categoriesPrompt := promptui.Prompt{
		Label:    fmt.Sprintf("Categories (comma-separated, at most %d)", category.MaxCategories),
		Default:  strings.Join(cfg.Categories, ", "),
		Validate: validateCategories,
	}
	categoriesStr, err := categoriesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	cfg.Categories = splitAndTrim(categoriesStr)

	// 3. Environment.
	envPrompt := promptui.Select{
		Label: "Select environment",
		Items: []string{
			"development (readable console logs)",
			"production (JSON logs)",
		},
	}
	envIdx, _, err := envPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("environment selection: %w", err)
	}
	cfg.Environment = []string{"development", "production"}[envIdx]

	// 4. Dashboard port.
	portPrompt := promptui.Prompt{
		Label:    "Dashboard port",
		Default:  strconv.Itoa(cfg.Serve.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Serve.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http or https URL")
	}
	return nil
}

func validateCategories(s string) error {
	labels := splitAndTrim(s)
	if len(labels) > category.MaxCategories {
		return fmt.Errorf("at most %d categories", category.MaxCategories)
	}
	_, err := category.NewStore(category.FromLabels(labels))
	return err
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("enter a port between 1 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
