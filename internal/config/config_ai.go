package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetFormalizeConfig returns the oracle configuration for formalize operations
// with fallback to global config
func (c *Config) GetFormalizeConfig() OperationAIConfig {
	config := c.AI.Formalize
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.Formalize == "" {
		config.CustomPrompts.SystemPrompts.Formalize = c.AI.CustomPrompts.SystemPrompts.Formalize
	}
	if config.CustomPrompts.SystemPrompts.FormalizeFile == "" {
		config.CustomPrompts.SystemPrompts.FormalizeFile = c.AI.CustomPrompts.SystemPrompts.FormalizeFile
	}

	return config
}

// GetCoverConfig returns the oracle configuration for cover-letter operations
// with fallback to global config
func (c *Config) GetCoverConfig() OperationAIConfig {
	config := c.AI.Cover
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.Cover == "" {
		config.CustomPrompts.SystemPrompts.Cover = c.AI.CustomPrompts.SystemPrompts.Cover
	}
	if config.CustomPrompts.SystemPrompts.CoverFile == "" {
		config.CustomPrompts.SystemPrompts.CoverFile = c.AI.CustomPrompts.SystemPrompts.CoverFile
	}

	return config
}

// GetRewriteConfig returns the oracle configuration for rewrite operations
// with fallback to global config
func (c *Config) GetRewriteConfig() OperationAIConfig {
	config := c.AI.Rewrite
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.Rewrite == "" {
		config.CustomPrompts.SystemPrompts.Rewrite = c.AI.CustomPrompts.SystemPrompts.Rewrite
	}
	if config.CustomPrompts.SystemPrompts.RewriteFile == "" {
		config.CustomPrompts.SystemPrompts.RewriteFile = c.AI.CustomPrompts.SystemPrompts.RewriteFile
	}

	return config
}

// GetGenerateConfig returns the oracle configuration for full-resume
// generation with fallback to global config
func (c *Config) GetGenerateConfig() OperationAIConfig {
	config := c.AI.Generate
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.Generate == "" {
		config.CustomPrompts.SystemPrompts.Generate = c.AI.CustomPrompts.SystemPrompts.Generate
	}
	if config.CustomPrompts.SystemPrompts.GenerateFile == "" {
		config.CustomPrompts.SystemPrompts.GenerateFile = c.AI.CustomPrompts.SystemPrompts.GenerateFile
	}

	return config
}
