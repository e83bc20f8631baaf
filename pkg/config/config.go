/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

const (
	InstallerConfigKind       = "Config"
	InstallerConfigApiVersion = "hc-installer.dev/v1"

	DefaultAPIURL          = "https://api.github.com/repos/Xabaril/AspNetCore.Diagnostics.HealthChecks"
	DefaultRawURL          = "https://raw.githubusercontent.com/Xabaril/AspNetCore.Diagnostics.HealthChecks/master"
	DefaultRevision        = "31bb25e1778dd3af99501ca457d0ef653ea31618"
	DefaultDefinitionsPath = "deploy/operator"
	DefaultCRDPath         = "deploy/operator/crd/healthcheck-crd.yaml"
	DefaultUserAgent       = "Operator Installer Agent"
	DefaultKubectl         = "kubectl"
	DefaultNamespace       = "healthchecks"
	DefaultLogLevel        = "info"
)

type Config struct {
	metav1.TypeMeta `json:",inline"`

	// Source holds the location of the operator definitions.
	Source *Source `json:"source,omitempty"`

	// Kubectl is the command used to reach the cluster,
	// it may contain arguments e.g. 'kubectl --context kind-kind'.
	Kubectl string `json:"kubectl,omitempty"`

	// Namespace is where the operator deployments are listed from
	// once all definitions have been processed.
	Namespace string `json:"namespace,omitempty"`

	// LogLevel sets the diagnostics verbosity (debug, info, warn, error).
	LogLevel string `json:"logLevel,omitempty"`
}

// Source points to the repository that hosts the operator manifests.
type Source struct {
	// APIURL is the GitHub API base of the repository.
	APIURL string `json:"apiURL"`

	// RawURL is the raw content base of the repository, including the branch.
	RawURL string `json:"rawURL"`

	// Revision is the git tree SHA listing the operator definitions.
	Revision string `json:"revision"`

	// DefinitionsPath is the repository directory the tree entries are relative to.
	DefinitionsPath string `json:"definitionsPath"`

	// CRDPath is the repository path of the custom resource definition.
	CRDPath string `json:"crdPath"`

	// UserAgent is sent with every API request.
	UserAgent string `json:"userAgent"`
}

// NewConfig returns a config pinned to the upstream operator definitions.
func NewConfig() *Config {
	return &Config{
		TypeMeta: metav1.TypeMeta{
			Kind:       InstallerConfigKind,
			APIVersion: InstallerConfigApiVersion,
		},
		Source:    defaultSource(),
		Kubectl:   DefaultKubectl,
		Namespace: DefaultNamespace,
		LogLevel:  DefaultLogLevel,
	}
}

func defaultSource() *Source {
	return &Source{
		APIURL:          DefaultAPIURL,
		RawURL:          DefaultRawURL,
		Revision:        DefaultRevision,
		DefinitionsPath: DefaultDefinitionsPath,
		CRDPath:         DefaultCRDPath,
		UserAgent:       DefaultUserAgent,
	}
}

// DefaultConfigPath returns '$HOME/.hc-installer/config'
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".hc-installer/config"), nil
}

// Read loads the config from the specified path,
// if the config file is not found, a default is returned.
func Read(configPath string) (*Config, error) {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("$HOME dir can't be determined, error: %w", err)
		}
		configPath = p
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return NewConfig(), nil
	}

	cfgData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(cfgData, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source == nil {
		c.Source = defaultSource()
	}
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = DefaultUserAgent
	}
	if c.Kubectl == "" {
		c.Kubectl = DefaultKubectl
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks that the fields used to build request and manifest URLs are set.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("the namespace can't be empty")
	}

	if c.Source == nil {
		return fmt.Errorf("the source can't be empty")
	}

	required := []struct {
		name  string
		value string
	}{
		{"source.apiURL", c.Source.APIURL},
		{"source.rawURL", c.Source.RawURL},
		{"source.revision", c.Source.Revision},
		{"source.definitionsPath", c.Source.DefinitionsPath},
		{"source.crdPath", c.Source.CRDPath},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("the %s can't be empty", field.name)
		}
	}

	return nil
}

// Write saves the config at the given path, if no path is specified
// it will create or override '$HOME/.hc-installer/config'.
func (c *Config) Write(configPath string) error {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), os.FileMode(0755)); err != nil {
		return err
	}

	cfgData, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, cfgData, os.FileMode(0666)); err != nil {
		return err
	}

	return nil
}
