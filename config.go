package ability

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config declares which policy checks guard which operations, plus the
// record-cache settings the storage layer consumes. It is the startup-time
// replacement for decorator metadata: the routing layer loads one of these
// and applies it to a Guard before serving traffic.
type Config struct {
	Version    uint16            `json:"version" yaml:"version"`
	Operations []OperationConfig `json:"operations" yaml:"operations"`
	Cache      CacheConfig       `json:"cache" yaml:"cache"`
}

// OperationConfig attaches an ordered check list to one operation id (exact
// id or pattern, see Guard.Attach).
type OperationConfig struct {
	ID     string        `json:"id" yaml:"id"`
	Checks []CheckConfig `json:"checks" yaml:"checks"`
}

// CheckConfig is the declarative form of one policy handler.
type CheckConfig struct {
	Action  string   `json:"action" yaml:"action"`
	Subject string   `json:"subject" yaml:"subject"`
	Record  bool     `json:"record,omitempty" yaml:"record,omitempty"`
	Fields  []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// CacheConfig sizes the read-through record cache in stores.
type CacheConfig struct {
	RecordTTL        int64 `json:"record_ttl_ms" yaml:"record_ttl_ms"`
	RecordMaxEntries int64 `json:"record_max_entries" yaml:"record_max_entries"`
}

// Handler materializes the declared check into a PolicyHandler.
func (c CheckConfig) Handler() (PolicyHandler, error) {
	action, ok := ParseAction(c.Action)
	if !ok {
		return nil, fmt.Errorf("unknown action %q", c.Action)
	}
	subject, ok := ParseSubjectType(c.Subject)
	if !ok {
		return nil, fmt.Errorf("unknown subject %q", c.Subject)
	}
	if len(c.Fields) > 0 {
		if action != ActionUpdate {
			return nil, fmt.Errorf("field restriction requires update, got %q", c.Action)
		}
		return RequireUpdateFields(subject, c.Fields...), nil
	}
	if c.Record {
		return RequireRecord(action, subject), nil
	}
	return RequireCan(action, subject), nil
}

// Validate checks every declared operation without mutating anything.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Operations))
	for _, op := range c.Operations {
		if op.ID == "" {
			return fmt.Errorf("operation with empty id")
		}
		if seen[op.ID] {
			return fmt.Errorf("duplicate operation %q", op.ID)
		}
		seen[op.ID] = true
		if len(op.Checks) == 0 {
			return fmt.Errorf("operation %q declares no checks", op.ID)
		}
		for _, chk := range op.Checks {
			if _, err := chk.Handler(); err != nil {
				return fmt.Errorf("operation %q: %w", op.ID, err)
			}
		}
	}
	return nil
}

// ApplyConfig attaches every declared operation to the guard.
func (g *Guard) ApplyConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, op := range cfg.Operations {
		handlers := make([]PolicyHandler, 0, len(op.Checks))
		for _, chk := range op.Checks {
			h, _ := chk.Handler()
			handlers = append(handlers, h)
		}
		g.Detach(op.ID)
		g.Attach(op.ID, handlers...)
	}
	return nil
}

// ConfigLoader loads guard configuration from various formats
type ConfigLoader struct{}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

func (l *ConfigLoader) LoadYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *ConfigLoader) LoadJSON(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadBinary loads from the compact binary protocol
func (l *ConfigLoader) LoadBinary(data []byte) (*Config, error) {
	return decodeBinaryConfig(bytes.NewReader(data))
}

// ToYAML exports config to YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ToJSON exports config to JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ToBinary exports config to the compact binary format
func (c *Config) ToBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := encodeBinaryConfig(c, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Binary protocol encoding/decoding
const (
	binaryMagic   = 0x4142 // "AB"
	binaryVersion = 1
)

func encodeBinaryConfig(cfg *Config, w io.Writer) error {
	buf := &bytes.Buffer{}

	// Header: magic(2) + version(2) + config_version(2)
	binary.Write(buf, binary.LittleEndian, uint16(binaryMagic))
	binary.Write(buf, binary.LittleEndian, uint16(binaryVersion))
	binary.Write(buf, binary.LittleEndian, cfg.Version)

	writeSection(buf, 0x01, func(b *bytes.Buffer) { encodeOperations(b, cfg.Operations) })
	writeSection(buf, 0x02, func(b *bytes.Buffer) { encodeCacheConfig(b, &cfg.Cache) })

	_, err := w.Write(buf.Bytes())
	return err
}

func decodeBinaryConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}

	var magic, ver, cfgVer uint16
	binary.Read(r, binary.LittleEndian, &magic)
	binary.Read(r, binary.LittleEndian, &ver)
	binary.Read(r, binary.LittleEndian, &cfgVer)

	if magic != binaryMagic {
		return nil, fmt.Errorf("invalid magic: %x", magic)
	}
	if ver != binaryVersion {
		return nil, fmt.Errorf("unsupported version: %d", ver)
	}
	cfg.Version = cfgVer

	for {
		var tag uint8
		if err := binary.Read(r, binary.LittleEndian, &tag); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		var size uint32
		binary.Read(r, binary.LittleEndian, &size)
		data := make([]byte, size)
		io.ReadFull(r, data)

		switch tag {
		case 0x01:
			cfg.Operations = decodeOperations(data)
		case 0x02:
			cfg.Cache = decodeCacheConfig(data)
		}
	}

	return cfg, nil
}

func writeSection(buf *bytes.Buffer, tag uint8, fn func(*bytes.Buffer)) {
	tmp := &bytes.Buffer{}
	fn(tmp)
	binary.Write(buf, binary.LittleEndian, tag)
	binary.Write(buf, binary.LittleEndian, uint32(tmp.Len()))
	buf.Write(tmp.Bytes())
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) string {
	var l uint16
	binary.Read(r, binary.LittleEndian, &l)
	b := make([]byte, l)
	r.Read(b)
	return string(b)
}

func encodeOperations(buf *bytes.Buffer, ops []OperationConfig) {
	binary.Write(buf, binary.LittleEndian, uint16(len(ops)))
	for _, op := range ops {
		writeString(buf, op.ID)
		binary.Write(buf, binary.LittleEndian, uint16(len(op.Checks)))
		for _, chk := range op.Checks {
			writeString(buf, chk.Action)
			writeString(buf, chk.Subject)
			buf.WriteByte(map[bool]byte{true: 1, false: 0}[chk.Record])
			binary.Write(buf, binary.LittleEndian, uint16(len(chk.Fields)))
			for _, f := range chk.Fields {
				writeString(buf, f)
			}
		}
	}
}

func decodeOperations(data []byte) []OperationConfig {
	r := bytes.NewReader(data)
	var count uint16
	binary.Read(r, binary.LittleEndian, &count)
	ops := make([]OperationConfig, count)
	for i := range ops {
		ops[i].ID = readString(r)
		var chkCount uint16
		binary.Read(r, binary.LittleEndian, &chkCount)
		ops[i].Checks = make([]CheckConfig, chkCount)
		for j := range ops[i].Checks {
			chk := &ops[i].Checks[j]
			chk.Action = readString(r)
			chk.Subject = readString(r)
			rec, _ := r.ReadByte()
			chk.Record = rec == 1
			var fieldCount uint16
			binary.Read(r, binary.LittleEndian, &fieldCount)
			if fieldCount > 0 {
				chk.Fields = make([]string, fieldCount)
				for k := range chk.Fields {
					chk.Fields[k] = readString(r)
				}
			}
		}
	}
	return ops
}

func encodeCacheConfig(buf *bytes.Buffer, cfg *CacheConfig) {
	binary.Write(buf, binary.LittleEndian, cfg.RecordTTL)
	binary.Write(buf, binary.LittleEndian, cfg.RecordMaxEntries)
}

func decodeCacheConfig(data []byte) CacheConfig {
	r := bytes.NewReader(data)
	cfg := CacheConfig{}
	binary.Read(r, binary.LittleEndian, &cfg.RecordTTL)
	binary.Read(r, binary.LittleEndian, &cfg.RecordMaxEntries)
	return cfg
}
