package ability

// ConfigBuilder provides a fluent API for building guard configurations
type ConfigBuilder struct {
	cfg *Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: &Config{
			Version:    1,
			Operations: []OperationConfig{},
			Cache: CacheConfig{
				RecordTTL:        5000,
				RecordMaxEntries: 10000,
			},
		},
	}
}

func (b *ConfigBuilder) Version(v uint16) *ConfigBuilder {
	b.cfg.Version = v
	return b
}

// Operation attaches a check list to an operation id.
func (b *ConfigBuilder) Operation(id string, checks ...CheckConfig) *ConfigBuilder {
	b.cfg.Operations = append(b.cfg.Operations, OperationConfig{ID: id, Checks: checks})
	return b
}

// Check declares a plain action/subject check.
func Check(action Action, subject SubjectType) CheckConfig {
	return CheckConfig{Action: string(action), Subject: string(subject)}
}

// RecordCheck declares a check that insists on a resolved record.
func RecordCheck(action Action, subject SubjectType) CheckConfig {
	return CheckConfig{Action: string(action), Subject: string(subject), Record: true}
}

// FieldsCheck declares a field-restricted update check.
func FieldsCheck(subject SubjectType, fields ...string) CheckConfig {
	return CheckConfig{Action: string(ActionUpdate), Subject: string(subject), Fields: fields}
}

func (b *ConfigBuilder) CacheSettings(fn func(*CacheConfig)) *ConfigBuilder {
	fn(&b.cfg.Cache)
	return b
}

func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}
